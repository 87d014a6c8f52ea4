package listener

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type sourceEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SourceLimiter keeps a token bucket per source address
type SourceLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	sources map[string]*sourceEntry

	now func() time.Time
}

// NewSourceLimiter allows packetsPerSecond datagrams per source with the
// given burst
func NewSourceLimiter(packetsPerSecond float64, burst int) *SourceLimiter {
	if burst < 1 {
		burst = 1
	}
	return &SourceLimiter{
		limit:   rate.Limit(packetsPerSecond),
		burst:   burst,
		sources: make(map[string]*sourceEntry),
		now:     time.Now,
	}
}

// Allow reports whether a datagram from source may be processed now
func (s *SourceLimiter) Allow(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.sources[source]
	if !ok {
		entry = &sourceEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.sources[source] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Prune forgets sources idle for longer than idle and returns how many were
// removed
func (s *SourceLimiter) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for source, entry := range s.sources {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sources, source)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sources
func (s *SourceLimiter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}
