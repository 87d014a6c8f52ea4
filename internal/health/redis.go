package health

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisChecker checks connectivity to the Redis instance backing the
// session registry and the record publisher.
type RedisChecker struct {
	client *redis.Client
	name   string

	mu      sync.Mutex
	details map[string]interface{}
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{
		client: client,
		name:   "redis",
	}
}

// Name returns the name of the checker.
func (r *RedisChecker) Name() string {
	return r.name
}

// Check pings Redis and reads its server info.
func (r *RedisChecker) Check(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client not configured")
	}

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	info, err := r.client.Info(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to get redis info: %w", err)
	}
	if len(info) == 0 {
		return fmt.Errorf("empty redis info response")
	}

	details := map[string]interface{}{
		"addr": r.client.Options().Addr,
	}
	if v := infoField(info, "redis_version"); v != "" {
		details["version"] = v
	}

	r.mu.Lock()
	r.details = details
	r.mu.Unlock()
	return nil
}

// Details reports the address and server version seen on the last check.
func (r *RedisChecker) Details() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.details
}

func infoField(info, key string) string {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, key+":"); ok {
			return v
		}
	}
	return ""
}
