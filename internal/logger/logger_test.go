package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/pitwall/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.LoggingConfig
		wantErr bool
		check   func(t *testing.T, logger *logrus.Logger)
	}{
		{
			name: "json format stdout",
			config: &config.LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.InfoLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok)
			},
		},
		{
			name: "text format stderr",
			config: &config.LoggingConfig{
				Level:  "debug",
				Format: "text",
				Output: "stderr",
			},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.DebugLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok)
			},
		},
		{
			name: "invalid log level",
			config: &config.LoggingConfig{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			if tt.check != nil {
				tt.check(t, logger)
			}
		})
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "pitwall.log")

	logger, err := New(&config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     logFile,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	require.NoError(t, err)

	logger.WithField("component", "listener").Info("bound")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "bound", entry["message"])
	assert.Equal(t, "listener", entry["component"])
	assert.Contains(t, entry, "timestamp")
}

func TestDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	log.SetOutput(&buf)

	log.WithField("version", "override").Info("listening")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pitwall", entry["service"])
	assert.Equal(t, float64(2019), entry["packet_format"])
	assert.Equal(t, "override", entry["version"])
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)

	log := NewLogrusAdapter(logrus.NewEntry(base)).
		WithField("component", "listener").
		WithFields(map[string]interface{}{"port": 20777}).
		WithError(assert.AnError)
	log.Warnf("datagram from %s dropped", "10.0.0.1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "datagram from 10.0.0.1 dropped", entry["msg"])
	assert.Equal(t, "listener", entry["component"])
	assert.Equal(t, float64(20777), entry["port"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}

func TestNullLogger(t *testing.T) {
	log := NewNullLogger()
	assert.NotPanics(t, func() {
		log.WithField("a", 1).WithFields(nil).WithError(assert.AnError).Info("discarded")
		log.Debugf("%d", 1)
		log.Log(logrus.ErrorLevel, "x")
	})
}

func TestRequestLoggerMiddleware(t *testing.T) {
	base := logrus.New()
	base.SetOutput(&bytes.Buffer{})

	var gotID string
	var gotEntry *logrus.Entry
	handler := RequestLoggerMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
		gotEntry = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "fixed-id", gotID)
	require.NotNil(t, gotEntry)
	assert.Equal(t, "/api/v1/sessions", gotEntry.Data["path"])
}

func TestRequestLoggerMiddleware_GeneratesID(t *testing.T) {
	base := logrus.New()
	base.SetOutput(&bytes.Buffer{})

	var gotID string
	handler := RequestLoggerMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, gotID)
	assert.Equal(t, gotID, req.Header.Get("X-Request-ID"))
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := NewResponseWriter(rr)
	assert.Equal(t, http.StatusOK, rw.StatusCode())

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	_, _ = rw.Write([]byte("x"))

	assert.Equal(t, http.StatusTeapot, rw.StatusCode())
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
