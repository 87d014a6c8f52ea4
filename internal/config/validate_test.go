package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  RedisConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: RedisConfig{
				Enabled:      true,
				Addresses:    []string{"localhost:6379"},
				DB:           0,
				MaxRetries:   3,
				PoolSize:     100,
				MinIdleConns: 10,
			},
			wantErr: false,
		},
		{
			name:    "disabled skips validation",
			config:  RedisConfig{Enabled: false},
			wantErr: false,
		},
		{
			name: "missing addresses",
			config: RedisConfig{
				Enabled:   true,
				Addresses: []string{},
				PoolSize:  100,
			},
			wantErr: true,
			errMsg:  "at least one Redis address is required",
		},
		{
			name: "negative DB",
			config: RedisConfig{
				Enabled:   true,
				Addresses: []string{"localhost:6379"},
				DB:        -1,
				PoolSize:  100,
			},
			wantErr: true,
			errMsg:  "invalid Redis database number",
		},
		{
			name: "zero pool size",
			config: RedisConfig{
				Enabled:   true,
				Addresses: []string{"localhost:6379"},
				PoolSize:  0,
			},
			wantErr: true,
			errMsg:  "pool_size must be positive",
		},
		{
			name: "min idle conns greater than pool size",
			config: RedisConfig{
				Enabled:      true,
				Addresses:    []string{"localhost:6379"},
				PoolSize:     10,
				MinIdleConns: 20,
			},
			wantErr: true,
			errMsg:  "min_idle_conns cannot be greater than pool_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if err != nil {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
	}{
		{"stdout json", LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, false},
		{"stderr text", LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, false},
		{"file output", LoggingConfig{Level: "warn", Format: "json", Output: "/tmp/pitwall.log", MaxSize: 10}, false},
		{"file output without size", LoggingConfig{Level: "warn", Format: "json", Output: "/tmp/pitwall.log"}, true},
		{"bad level", LoggingConfig{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", LoggingConfig{Level: "info", Format: "xml", Output: "stdout"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListenerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ListenerConfig
		wantErr bool
	}{
		{"valid", ListenerConfig{ListenAddr: "0.0.0.0", Port: 20777}, false},
		{"empty address", ListenerConfig{Port: 20777}, true},
		{"port too large", ListenerConfig{ListenAddr: "0.0.0.0", Port: 70000}, true},
		{"negative read buffer", ListenerConfig{ListenAddr: "0.0.0.0", Port: 20777, ReadBuffer: -1}, true},
		{
			"rate limit without rate",
			ListenerConfig{ListenAddr: "0.0.0.0", Port: 20777, RateLimit: RateLimitConfig{Enabled: true, Burst: 5}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
