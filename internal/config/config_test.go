package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.False(t, cfg.Server.EnableHTTP3)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addresses)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9090, cfg.Metrics.Port)

	assert.Equal(t, "0.0.0.0", cfg.Telemetry.Listener.ListenAddr)
	assert.Equal(t, 20777, cfg.Telemetry.Listener.Port)
	assert.False(t, cfg.Telemetry.Listener.RateLimit.Enabled)
	assert.Equal(t, 600, cfg.Telemetry.History.Capacity)
	assert.Equal(t, 10*time.Second, cfg.Telemetry.Session.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Telemetry.Session.TTL)
	assert.Equal(t, "pitwall", cfg.Telemetry.Publish.Prefix)
	assert.Equal(t, 100*time.Millisecond, cfg.Telemetry.Publish.Interval)
	assert.Equal(t, 100*time.Millisecond, cfg.Telemetry.Dashboard.RefreshInterval)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitwall.yaml")

	configContent := `
server:
  http_port: 8081

redis:
  enabled: true
  addresses:
    - "redis:6379"
  pool_size: 50

logging:
  level: "debug"
  format: "text"

metrics:
  enabled: false

telemetry:
  listener:
    port: 20778
    rate_limit:
      enabled: true
      packets_per_second: 120
      burst: 30
  history:
    capacity: 100
    per_type:
      motion: 1200
      event: 50
  session:
    timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HTTPPort)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"redis:6379"}, cfg.Redis.Addresses)
	assert.Equal(t, 50, cfg.Redis.PoolSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 20778, cfg.Telemetry.Listener.Port)
	assert.Equal(t, 120.0, cfg.Telemetry.Listener.RateLimit.PacketsPerSecond)
	assert.Equal(t, 3*time.Second, cfg.Telemetry.Session.Timeout)

	h := cfg.Telemetry.History
	assert.Equal(t, 1200, h.CapacityFor(packet.TypeMotion))
	assert.Equal(t, 50, h.CapacityFor(packet.TypeEvent))
	assert.Equal(t, 100, h.CapacityFor(packet.TypeLap))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PITWALL_TELEMETRY_LISTENER_PORT", "30000")
	t.Setenv("PITWALL_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30000, cfg.Telemetry.Listener.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telemetry:\n  listener:\n    port: 0\n"), 0o600))

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid listener port")
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "http3 without cert files",
			mutate: func(c *Config) {
				c.Server.EnableHTTP3 = true
				c.Server.TLSCertFile = "/nonexistent/cert.pem"
				c.Server.TLSKeyFile = "/nonexistent/key.pem"
			},
			errMsg: "TLS certificate file not found",
		},
		{
			name:   "invalid server port",
			mutate: func(c *Config) { c.Server.HTTPPort = 0 },
			errMsg: "invalid HTTP port",
		},
		{
			name:   "metrics port collides",
			mutate: func(c *Config) { c.Metrics.Port = c.Server.HTTPPort },
			errMsg: "collides",
		},
		{
			name:   "unknown history type",
			mutate: func(c *Config) { c.Telemetry.History.PerType = map[string]int{"weather": 10} },
			errMsg: "unknown packet type",
		},
		{
			name:   "session ttl below timeout",
			mutate: func(c *Config) { c.Telemetry.Session.TTL = time.Second },
			errMsg: "cannot be shorter than timeout",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.Telemetry.Listener.RateLimit.Enabled = true
				c.Telemetry.Listener.RateLimit.Burst = 0
			},
			errMsg: "burst must be positive",
		},
		{
			name: "publish disabled skips checks",
			mutate: func(c *Config) {
				c.Telemetry.Publish.Enabled = false
				c.Telemetry.Publish.Prefix = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
