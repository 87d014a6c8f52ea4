package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	// Plain HTTP API
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DebugEndpoints  bool          `mapstructure:"debug_endpoints"`

	// Optional HTTP/3 listener, needs TLS material
	EnableHTTP3 bool   `mapstructure:"enable_http3"`
	HTTP3Port   int    `mapstructure:"http3_port"`
	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`

	// QUIC specific
	MaxIncomingStreams    int64         `mapstructure:"max_incoming_streams"`
	MaxIncomingUniStreams int64         `mapstructure:"max_incoming_uni_streams"`
	MaxIdleTimeout        time.Duration `mapstructure:"max_idle_timeout"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`   // json or text
	Output     string `mapstructure:"output"`   // stdout, stderr, or file path
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type TelemetryConfig struct {
	Listener  ListenerConfig  `mapstructure:"listener"`
	History   HistoryConfig   `mapstructure:"history"`
	Session   SessionConfig   `mapstructure:"session"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ListenerConfig struct {
	ListenAddr string          `mapstructure:"listen_addr"`
	Port       int             `mapstructure:"port"`
	ReadBuffer int             `mapstructure:"read_buffer"` // socket receive buffer, bytes
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds datagrams per source address
type RateLimitConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	PacketsPerSecond float64 `mapstructure:"packets_per_second"`
	Burst            int     `mapstructure:"burst"`
}

type HistoryConfig struct {
	Capacity int            `mapstructure:"capacity"` // records kept per packet type
	PerType  map[string]int `mapstructure:"per_type"` // overrides keyed by type name
}

type SessionConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	TTL             time.Duration `mapstructure:"ttl"`
}

type PublishConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Prefix   string        `mapstructure:"prefix"`
	Interval time.Duration `mapstructure:"interval"` // minimum gap between publishes per type
	TTL      time.Duration `mapstructure:"ttl"`
}

type DashboardConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	EventLines      int           `mapstructure:"event_lines"`
}

// Load reads configuration from configPath, the environment and defaults.
// An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variable override
	v.SetEnvPrefix("PITWALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug_endpoints", false)
	v.SetDefault("server.enable_http3", false)
	v.SetDefault("server.http3_port", 8443)
	v.SetDefault("server.max_incoming_streams", 1000)
	v.SetDefault("server.max_incoming_uni_streams", 100)
	v.SetDefault("server.max_idle_timeout", "30s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addresses", []string{"localhost:6379"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Listener defaults, 20777 is the game's default telemetry port
	v.SetDefault("telemetry.listener.listen_addr", "0.0.0.0")
	v.SetDefault("telemetry.listener.port", 20777)
	v.SetDefault("telemetry.listener.read_buffer", 1048576) // 1MB
	v.SetDefault("telemetry.listener.rate_limit.enabled", false)
	v.SetDefault("telemetry.listener.rate_limit.packets_per_second", 1000)
	v.SetDefault("telemetry.listener.rate_limit.burst", 200)

	// History defaults
	v.SetDefault("telemetry.history.capacity", 600) // 10s of 60Hz motion data

	// Session defaults
	v.SetDefault("telemetry.session.timeout", "10s")
	v.SetDefault("telemetry.session.cleanup_interval", "5s")
	v.SetDefault("telemetry.session.ttl", "5m")

	// Publish defaults
	v.SetDefault("telemetry.publish.enabled", true)
	v.SetDefault("telemetry.publish.prefix", "pitwall")
	v.SetDefault("telemetry.publish.interval", "100ms")
	v.SetDefault("telemetry.publish.ttl", "30s")

	// Dashboard defaults
	v.SetDefault("telemetry.dashboard.refresh_interval", "100ms")
	v.SetDefault("telemetry.dashboard.event_lines", 8)
}
