package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/metrics"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// Sink receives every decoded record, in arrival order, on the read goroutine
type Sink interface {
	HandlePacket(ctx context.Context, src *net.UDPAddr, p packet.Packet)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, src *net.UDPAddr, p packet.Packet)

func (f SinkFunc) HandlePacket(ctx context.Context, src *net.UDPAddr, p packet.Packet) {
	f(ctx, src, p)
}

// Stats is a point in time view of the listener counters
type Stats struct {
	InstanceID   string            `json:"instance_id"`
	Addr         string            `json:"addr"`
	Bound        bool              `json:"bound"`
	Received     uint64            `json:"received"`
	Bytes        uint64            `json:"bytes"`
	Decoded      uint64            `json:"decoded"`
	Ignored      uint64            `json:"ignored"`
	IgnoredBy    map[string]uint64 `json:"ignored_by_reason"`
	RateLimited  uint64            `json:"rate_limited"`
	ReadErrors   uint64            `json:"read_errors"`
	Sources      int               `json:"sources"`
	LastDatagram time.Time         `json:"last_datagram,omitempty"`
}

// Listener reads game telemetry datagrams from a UDP socket and hands the
// decoded records to a Sink. One datagram is fully handled before the next
// read.
type Listener struct {
	config     *config.ListenerConfig
	sink       Sink
	logger     logger.Logger
	sampled    *logger.SampledLogger
	limiter    *SourceLimiter
	instanceID string

	conn *net.UDPConn
	mu   sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	received     atomic.Uint64
	bytes        atomic.Uint64
	decoded      atomic.Uint64
	ignored      atomic.Uint64
	rateLimited  atomic.Uint64
	readErrors   atomic.Uint64
	lastDatagram atomic.Int64

	reasonsMu sync.Mutex
	reasons   map[string]uint64

	// Configurable for testing
	readTimeout   time.Duration
	pruneInterval time.Duration
}

// New creates a listener; nothing is bound until Start
func New(cfg *config.ListenerConfig, sink Sink, log logger.Logger) *Listener {
	instanceID := uuid.New().String()
	log = log.WithFields(map[string]interface{}{
		"component":   "telemetry_listener",
		"instance_id": instanceID,
	})

	l := &Listener{
		config:        cfg,
		sink:          sink,
		logger:        log,
		sampled:       logger.NewTelemetryLogger(log),
		instanceID:    instanceID,
		reasons:       make(map[string]uint64),
		readTimeout:   time.Second,
		pruneInterval: time.Minute,
	}

	if cfg.RateLimit.Enabled {
		l.limiter = NewSourceLimiter(cfg.RateLimit.PacketsPerSecond, cfg.RateLimit.Burst)
	}

	return l
}

// Start binds the socket and starts the read loop. The loop stops when ctx
// is cancelled or Stop is called.
func (l *Listener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", l.config.ListenAddr, l.config.Port))
	if err != nil {
		return fmt.Errorf("failed to resolve telemetry address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on telemetry port: %w", err)
	}

	if l.config.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(l.config.ReadBuffer); err != nil {
			l.logger.WithError(err).Warn("Failed to set telemetry read buffer size")
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.conn = conn
	l.cancel = cancel
	l.mu.Unlock()

	l.logger.WithFields(map[string]interface{}{
		"address":    conn.LocalAddr().String(),
		"rate_limit": l.limiter != nil,
	}).Info("Telemetry listener started")

	l.wg.Add(1)
	go l.readLoop(loopCtx, conn)

	if l.limiter != nil {
		l.wg.Add(1)
		go l.pruneLimiters(loopCtx)
	}

	return nil
}

// Stop closes the socket and waits for the read loop to exit
func (l *Listener) Stop() error {
	l.mu.Lock()
	conn := l.conn
	cancel := l.cancel
	l.conn = nil
	l.mu.Unlock()

	if conn == nil {
		return nil
	}

	l.logger.Info("Stopping telemetry listener")
	cancel()
	err := conn.Close()
	l.wg.Wait()

	l.logger.Info("Telemetry listener stopped")
	return err
}

// Addr returns the bound address, nil before Start
func (l *Listener) Addr() net.Addr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// InstanceID identifies this listener in logs and stats
func (l *Listener) InstanceID() string {
	return l.instanceID
}

// Stats returns the listener counters
func (l *Listener) Stats() Stats {
	s := Stats{
		InstanceID:  l.instanceID,
		Received:    l.received.Load(),
		Bytes:       l.bytes.Load(),
		Decoded:     l.decoded.Load(),
		Ignored:     l.ignored.Load(),
		RateLimited: l.rateLimited.Load(),
		ReadErrors:  l.readErrors.Load(),
	}

	if addr := l.Addr(); addr != nil {
		s.Bound = true
		s.Addr = addr.String()
	}
	if last := l.lastDatagram.Load(); last > 0 {
		s.LastDatagram = time.Unix(0, last)
	}
	if l.limiter != nil {
		s.Sources = l.limiter.Len()
	}

	l.reasonsMu.Lock()
	s.IgnoredBy = make(map[string]uint64, len(l.reasons))
	for reason, n := range l.reasons {
		s.IgnoredBy[reason] = n
	}
	l.reasonsMu.Unlock()

	return s
}

func (l *Listener) readLoop(ctx context.Context, conn *net.UDPConn) {
	defer l.wg.Done()

	buf := make([]byte, packet.MaxPacketSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Deadline lets the loop observe cancellation on a silent socket
		conn.SetReadDeadline(time.Now().Add(l.readTimeout))

		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.readErrors.Add(1)
			metrics.IncrementReadError()
			l.sampled.SampledLog(logrus.WarnLevel, logger.CategoryReadError, "Failed to read telemetry datagram",
				map[string]interface{}{"error": err.Error()})
			continue
		}

		l.handleDatagram(ctx, src, buf[:n])
	}
}

// handleDatagram runs one datagram through rate limiting, the decoder and
// the sink. Nothing here is fatal.
func (l *Listener) handleDatagram(ctx context.Context, src *net.UDPAddr, buf []byte) {
	l.received.Add(1)
	l.bytes.Add(uint64(len(buf)))
	l.lastDatagram.Store(time.Now().UnixNano())
	metrics.RecordDatagram(len(buf))

	if l.limiter != nil && !l.limiter.Allow(src.String()) {
		l.rateLimited.Add(1)
		metrics.IncrementRateLimited()
		l.sampled.SampledLog(logrus.WarnLevel, logger.CategoryRateLimited, "Telemetry source rate limited",
			map[string]interface{}{"source": src.String()})
		return
	}

	start := time.Now()
	res := packet.Dispatch(buf)
	metrics.ObserveDecodeDuration(time.Since(start).Seconds())

	if res.Ignored() {
		reason := packet.Reason(res.Reason)
		l.ignored.Add(1)
		l.reasonsMu.Lock()
		l.reasons[reason]++
		l.reasonsMu.Unlock()
		metrics.IncrementIgnored(reason)
		l.sampled.SampledLog(logrus.DebugLevel, logger.CategoryDatagramIgnored, "Telemetry datagram ignored",
			map[string]interface{}{
				"source": src.String(),
				"size":   len(buf),
				"reason": reason,
				"error":  res.Reason.Error(),
			})
		return
	}

	l.decoded.Add(1)
	typeName := res.Header.Type.String()
	metrics.RecordDecoded(typeName, res.Header.FrameID)
	if ev, ok := res.Packet.(*packet.EventPacket); ok {
		metrics.IncrementEvent(ev.Kind.String())
	}

	if l.sink != nil {
		l.sink.HandlePacket(ctx, src, res.Packet)
	}
}

func (l *Listener) pruneLimiters(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.limiter.Prune(l.pruneInterval); n > 0 {
				l.logger.WithField("sources", n).Debug("Pruned idle telemetry sources")
			}
		}
	}
}
