package config

import (
	"fmt"
	"os"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry config: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.Port == c.Server.HTTPPort {
		return fmt.Errorf("metrics port %d collides with the HTTP port", c.Metrics.Port)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTPPort < 1 || s.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
	}

	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative")
	}

	if !s.EnableHTTP3 {
		return nil
	}

	if s.HTTP3Port < 1 || s.HTTP3Port > 65535 {
		return fmt.Errorf("invalid HTTP3 port: %d", s.HTTP3Port)
	}

	if s.TLSCertFile == "" {
		return fmt.Errorf("TLS certificate file is required")
	}

	if s.TLSKeyFile == "" {
		return fmt.Errorf("TLS key file is required")
	}

	// Check if certificate files exist
	if _, err := os.Stat(s.TLSCertFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS certificate file not found: %s", s.TLSCertFile)
	}

	if _, err := os.Stat(s.TLSKeyFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS key file not found: %s", s.TLSKeyFile)
	}

	if s.MaxIncomingStreams <= 0 {
		return fmt.Errorf("max_incoming_streams must be positive")
	}

	if s.MaxIncomingUniStreams <= 0 {
		return fmt.Errorf("max_incoming_uni_streams must be positive")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if r.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns cannot be negative")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot be greater than pool_size")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", m.Port)
		}

		if m.Path == "" {
			return fmt.Errorf("metrics path cannot be empty")
		}
	}

	return nil
}

func (t *TelemetryConfig) Validate() error {
	if err := t.Listener.Validate(); err != nil {
		return fmt.Errorf("listener config: %w", err)
	}

	if err := t.History.Validate(); err != nil {
		return fmt.Errorf("history config: %w", err)
	}

	if err := t.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := t.Publish.Validate(); err != nil {
		return fmt.Errorf("publish config: %w", err)
	}

	if t.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("dashboard refresh_interval must be positive")
	}

	return nil
}

func (l *ListenerConfig) Validate() error {
	if l.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if l.Port < 1 || l.Port > 65535 {
		return fmt.Errorf("invalid listener port: %d", l.Port)
	}

	if l.ReadBuffer < 0 {
		return fmt.Errorf("read_buffer cannot be negative")
	}

	if l.RateLimit.Enabled {
		if l.RateLimit.PacketsPerSecond <= 0 {
			return fmt.Errorf("rate_limit packets_per_second must be positive")
		}
		if l.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit burst must be positive")
		}
	}

	return nil
}

func (h *HistoryConfig) Validate() error {
	if h.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}

	for name, capacity := range h.PerType {
		if _, err := packet.ParsePacketType(name); err != nil {
			return fmt.Errorf("per_type: %w", err)
		}
		if capacity <= 0 {
			return fmt.Errorf("per_type %s: capacity must be positive", name)
		}
	}

	return nil
}

// CapacityFor returns the history capacity of a packet type
func (h *HistoryConfig) CapacityFor(t packet.PacketType) int {
	if c, ok := h.PerType[t.String()]; ok {
		return c
	}
	return h.Capacity
}

func (s *SessionConfig) Validate() error {
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if s.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive")
	}

	if s.TTL < s.Timeout {
		return fmt.Errorf("ttl (%s) cannot be shorter than timeout (%s)", s.TTL, s.Timeout)
	}

	return nil
}

func (p *PublishConfig) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.Prefix == "" {
		return fmt.Errorf("prefix cannot be empty")
	}

	if p.Interval < 0 {
		return fmt.Errorf("interval cannot be negative")
	}

	if p.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	return nil
}
