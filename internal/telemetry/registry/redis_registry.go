package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// DefaultPrefix namespaces session keys in Redis
const DefaultPrefix = "pitwall:sessions:"

const maxUpdateRetries = 5

var registerScript = redis.NewScript(`
	local key = KEYS[1]
	local active_key = KEYS[2]
	local data = ARGV[1]
	local ttl = tonumber(ARGV[2])
	local session_id = ARGV[3]
	local ok = redis.call('SET', key, data, 'PX', ttl, 'NX')
	if not ok then
		return 0
	end
	redis.call('SADD', active_key, session_id)
	return 1
`)

var listScript = redis.NewScript(`
	local active_key = KEYS[1]
	local prefix = ARGV[1]
	local active = redis.call('SMEMBERS', active_key)
	local result = {}
	local to_remove = {}

	for i, id in ipairs(active) do
		local session = redis.call('GET', prefix .. id)
		if session then
			table.insert(result, session)
		else
			table.insert(to_remove, id)
		end
	end

	-- Expired sessions leave the active set
	for i, id in ipairs(to_remove) do
		redis.call('SREM', active_key, id)
	end

	return result
`)

// RedisRegistry implements Registry using Redis as backend. Every write
// refreshes the key TTL, so sessions the game stopped sending expire on
// their own.
type RedisRegistry struct {
	client *redis.Client
	logger logger.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry creates a new Redis-backed registry
func NewRedisRegistry(client *redis.Client, log logger.Logger, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRegistry{
		client: client,
		logger: log.WithField("component", "session_registry"),
		prefix: DefaultPrefix,
		ttl:    ttl,
	}
}

func (r *RedisRegistry) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisRegistry) activeKey() string {
	return r.prefix + "active"
}

// Register adds a new session to the registry
func (r *RedisRegistry) Register(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	result, err := registerScript.Run(ctx, r.client,
		[]string{r.key(session.ID), r.activeKey()},
		data, r.ttl.Milliseconds(), session.ID).Int()
	if err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	if result == 0 {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	r.logger.WithFields(map[string]interface{}{
		"session_id":   session.ID,
		"source":       session.SourceAddr,
		"game_version": session.GameVersion,
	}).Info("Session registered")
	return nil
}

// Unregister removes a session from the registry
func (r *RedisRegistry) Unregister(ctx context.Context, sessionID string) error {
	deleted, err := r.client.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to unregister session: %w", err)
	}
	if deleted == 0 {
		return notFound(sessionID)
	}

	if err := r.client.SRem(ctx, r.activeKey(), sessionID).Err(); err != nil {
		r.logger.Warnf("Failed to remove session %s from active set: %v", sessionID, err)
	}

	r.logger.WithField("session_id", sessionID).Info("Session unregistered")
	return nil
}

// Get retrieves a session by ID
func (r *RedisRegistry) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// List returns all live sessions and drops expired ids from the active set
func (r *RedisRegistry) List(ctx context.Context) ([]*Session, error) {
	res, err := listScript.Run(ctx, r.client, []string{r.activeKey()}, r.prefix).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result type from script")
	}

	sessions := make([]*Session, 0, len(values))
	for _, val := range values {
		data, ok := val.(string)
		if !ok {
			r.logger.Warn("Invalid data type in result")
			continue
		}

		var session Session
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			r.logger.WithError(err).Warn("Failed to unmarshal session")
			continue
		}
		sessions = append(sessions, &session)
	}

	sortSessions(sessions)
	return sessions, nil
}

// Observe updates a session from a packet header
func (r *RedisRegistry) Observe(ctx context.Context, sessionID string, h packet.Header) error {
	now := time.Now()
	return r.update(ctx, sessionID, func(s *Session) {
		s.Observe(h, now)
	})
}

// UpdateStatus updates the status of a session
func (r *RedisRegistry) UpdateStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	err := r.update(ctx, sessionID, func(s *Session) {
		s.Status = status
	})
	if err != nil {
		return err
	}

	r.logger.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"status":     status,
	}).Debug("Session status updated")
	return nil
}

// update runs an optimistic read-modify-write of one session
func (r *RedisRegistry) update(ctx context.Context, sessionID string, fn func(*Session)) error {
	key := r.key(sessionID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound(sessionID)
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
		fn(&session)

		updated, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to update session %s: too many concurrent writers", sessionID)
}

// Close closes the Redis client connection
func (r *RedisRegistry) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
