package logger

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Telemetry log categories. Datagrams arrive at up to 60Hz per packet type,
// so anything logged per datagram goes through a sampler.
const (
	CategoryDatagramIgnored = "datagram_ignored"
	CategoryRateLimited     = "rate_limited"
	CategoryReadError       = "read_error"
	CategoryPublish         = "publish"
	CategorySession         = "session"
)

// SampledLogger logs per-category messages through a token bucket. Once a
// category's bucket is empty only every Nth message gets through.
type SampledLogger struct {
	base     Logger
	mu       *sync.RWMutex
	samplers map[string]*sampler
}

type sampler struct {
	limiter *rate.Limiter
	every   int64 // 0 drops everything over the limit

	overflow atomic.Int64
	total    atomic.Int64
	logged   atomic.Int64
}

func (s *sampler) allow() bool {
	s.total.Add(1)
	if s.limiter.Allow() {
		s.logged.Add(1)
		return true
	}
	if s.every > 0 && s.overflow.Add(1)%s.every == 0 {
		s.logged.Add(1)
		return true
	}
	return false
}

// SamplerStats holds statistics for a log sampler
type SamplerStats struct {
	Name            string  `json:"name"`
	TotalMessages   int64   `json:"total_messages"`
	SampledMessages int64   `json:"sampled_messages"`
	DroppedMessages int64   `json:"dropped_messages"`
	CurrentRate     float64 `json:"current_rate"`
}

func NewSampledLogger(base Logger) *SampledLogger {
	return &SampledLogger{
		base:     base,
		mu:       &sync.RWMutex{},
		samplers: make(map[string]*sampler),
	}
}

// WithSampler lets burst messages of category through, refilling one per
// interval. Past that, sampleRate of the overflow is logged.
func (s *SampledLogger) WithSampler(category string, interval time.Duration, burst int, sampleRate float64) *SampledLogger {
	var every int64
	if sampleRate > 0 {
		every = int64(math.Max(1, math.Round(1/sampleRate)))
	}

	s.mu.Lock()
	s.samplers[category] = &sampler{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		every:   every,
	}
	s.mu.Unlock()
	return s
}

// NewTelemetryLogger creates a sampled logger tuned for the datagram path
func NewTelemetryLogger(base Logger) *SampledLogger {
	return NewSampledLogger(base).
		WithSampler(CategoryDatagramIgnored, 100*time.Millisecond, 5, 0.1).
		WithSampler(CategoryRateLimited, time.Second, 3, 0.01).
		WithSampler(CategoryReadError, 500*time.Millisecond, 3, 0.5).
		WithSampler(CategoryPublish, time.Second, 2, 0.1)
}

func (s *SampledLogger) lookup(category string) *sampler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samplers[category]
}

// SampledLog logs msg at level if the category's sampler lets it through.
// Categories without a sampler always log.
func (s *SampledLogger) SampledLog(level logrus.Level, category string, msg string, fields map[string]interface{}) {
	sm := s.lookup(category)
	if sm != nil && !sm.allow() {
		return
	}

	if fields == nil {
		fields = make(map[string]interface{})
	}
	if sm != nil {
		if dropped := sm.total.Load() - sm.logged.Load(); dropped > 0 {
			fields["sampling_dropped"] = dropped
		}
	}
	s.base.WithFields(fields).Log(level, msg)
}

func (s *SampledLogger) InfoWithCategory(category, msg string, fields map[string]interface{}) {
	s.SampledLog(logrus.InfoLevel, category, msg, withCategory(category, fields))
}

func (s *SampledLogger) DebugWithCategory(category, msg string, fields map[string]interface{}) {
	s.SampledLog(logrus.DebugLevel, category, msg, withCategory(category, fields))
}

func (s *SampledLogger) WarnWithCategory(category, msg string, fields map[string]interface{}) {
	s.SampledLog(logrus.WarnLevel, category, msg, withCategory(category, fields))
}

// ErrorWithCategory is never sampled.
func (s *SampledLogger) ErrorWithCategory(category, msg string, fields map[string]interface{}) {
	s.base.WithFields(withCategory(category, fields)).Error(msg)
}

func withCategory(category string, fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	fields["category"] = category
	return fields
}

// GetSamplerStats returns statistics for all samplers
func (s *SampledLogger) GetSamplerStats() map[string]SamplerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]SamplerStats, len(s.samplers))
	for name, sm := range s.samplers {
		st := SamplerStats{
			Name:            name,
			TotalMessages:   sm.total.Load(),
			SampledMessages: sm.logged.Load(),
		}
		st.DroppedMessages = st.TotalMessages - st.SampledMessages
		if st.TotalMessages > 0 {
			st.CurrentRate = float64(st.SampledMessages) / float64(st.TotalMessages)
		}
		stats[name] = st
	}
	return stats
}

func (s *SampledLogger) derive(base Logger) Logger {
	return &SampledLogger{base: base, mu: s.mu, samplers: s.samplers}
}

func (s *SampledLogger) WithFields(fields map[string]interface{}) Logger {
	return s.derive(s.base.WithFields(fields))
}

func (s *SampledLogger) WithField(key string, value interface{}) Logger {
	return s.derive(s.base.WithField(key, value))
}

func (s *SampledLogger) WithError(err error) Logger {
	return s.derive(s.base.WithError(err))
}

func (s *SampledLogger) Debug(args ...interface{}) { s.base.Debug(args...) }
func (s *SampledLogger) Info(args ...interface{})  { s.base.Info(args...) }
func (s *SampledLogger) Warn(args ...interface{})  { s.base.Warn(args...) }
func (s *SampledLogger) Error(args ...interface{}) { s.base.Error(args...) }

func (s *SampledLogger) Log(level logrus.Level, args ...interface{}) {
	s.base.Log(level, args...)
}

func (s *SampledLogger) Debugf(format string, args ...interface{}) { s.base.Debugf(format, args...) }
func (s *SampledLogger) Infof(format string, args ...interface{})  { s.base.Infof(format, args...) }
func (s *SampledLogger) Warnf(format string, args ...interface{})  { s.base.Warnf(format, args...) }
func (s *SampledLogger) Errorf(format string, args ...interface{}) { s.base.Errorf(format, args...) }
