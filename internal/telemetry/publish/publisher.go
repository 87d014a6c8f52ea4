package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/metrics"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
)

// Publisher fans decoded records out to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, p packet.Packet) error
	Close() error
}

// Message is the JSON document published for every record
type Message struct {
	Type      packet.PacketType `json:"type"`
	SessionID string            `json:"session_id"`
	FrameID   uint32            `json:"frame_id"`
	Data      packet.Packet     `json:"data"`
}

// NewMessage wraps a decoded record
func NewMessage(p packet.Packet) Message {
	h := p.PacketHeader()
	return Message{
		Type:      h.Type,
		SessionID: registry.GenerateSessionID(h.SessionUID),
		FrameID:   h.FrameID,
		Data:      p,
	}
}

// Stats counts publisher outcomes
type Stats struct {
	Published uint64 `json:"published"`
	Throttled uint64 `json:"throttled"`
	Errors    uint64 `json:"errors"`
}

// NopPublisher drops everything, used when Redis is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, packet.Packet) error { return nil }

func (NopPublisher) Close() error { return nil }

// RedisPublisher publishes every record on a per-type channel and keeps the
// latest record of each type under a key with a TTL. Types arriving faster
// than the configured interval are throttled; events never are.
type RedisPublisher struct {
	client   *redis.Client
	logger   *logger.SampledLogger
	prefix   string
	interval time.Duration
	ttl      time.Duration

	mu   sync.Mutex
	last map[packet.PacketType]time.Time
	now  func() time.Time

	published atomic.Uint64
	throttled atomic.Uint64
	errors    atomic.Uint64
}

// NewRedisPublisher creates a publisher on client
func NewRedisPublisher(client *redis.Client, cfg *config.PublishConfig, log logger.Logger) *RedisPublisher {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "pitwall"
	}
	return &RedisPublisher{
		client:   client,
		logger:   logger.NewTelemetryLogger(log.WithField("component", "publisher")),
		prefix:   prefix,
		interval: cfg.Interval,
		ttl:      cfg.TTL,
		last:     make(map[packet.PacketType]time.Time),
		now:      time.Now,
	}
}

// Channel returns the pub/sub channel of a packet type
func (r *RedisPublisher) Channel(t packet.PacketType) string {
	return fmt.Sprintf("%s:%s", r.prefix, t)
}

// LatestKey returns the key holding the newest record of a packet type
func (r *RedisPublisher) LatestKey(t packet.PacketType) string {
	return fmt.Sprintf("%s:latest:%s", r.prefix, t)
}

// allow applies the per-type throttle
func (r *RedisPublisher) allow(t packet.PacketType) bool {
	if r.interval <= 0 || t == packet.TypeEvent {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last, ok := r.last[t]; ok && now.Sub(last) < r.interval {
		return false
	}
	r.last[t] = now
	return true
}

// Publish sends p unless its type is throttled
func (r *RedisPublisher) Publish(ctx context.Context, p packet.Packet) error {
	t := packet.TypeOf(p)
	if !t.Known() {
		return fmt.Errorf("cannot publish packet type %s", t)
	}
	if !r.allow(t) {
		r.throttled.Add(1)
		return nil
	}

	data, err := json.Marshal(NewMessage(p))
	if err != nil {
		r.fail(t, err)
		return fmt.Errorf("failed to marshal %s record: %w", t, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Publish(ctx, r.Channel(t), data)
	pipe.Set(ctx, r.LatestKey(t), data, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.fail(t, err)
		return fmt.Errorf("failed to publish %s record: %w", t, err)
	}

	r.published.Add(1)
	metrics.IncrementPublished(t.String())
	return nil
}

func (r *RedisPublisher) fail(t packet.PacketType, err error) {
	r.errors.Add(1)
	metrics.IncrementPublishError(t.String())
	r.logger.WarnWithCategory(logger.CategoryPublish, "Failed to publish telemetry record",
		map[string]interface{}{
			"type":  t.String(),
			"error": err.Error(),
		})
}

// Stats returns the publisher counters
func (r *RedisPublisher) Stats() Stats {
	return Stats{
		Published: r.published.Load(),
		Throttled: r.throttled.Load(),
		Errors:    r.errors.Load(),
	}
}

// Close is a no-op; the client belongs to the caller
func (r *RedisPublisher) Close() error {
	return nil
}
