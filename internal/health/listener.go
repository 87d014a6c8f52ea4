package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zsiec/pitwall/internal/telemetry/listener"
)

// DefaultSilenceThreshold is how long a bound listener may go without a
// datagram before it is reported degraded.
const DefaultSilenceThreshold = 30 * time.Second

// ListenerStats is the part of the telemetry listener the checker reads.
type ListenerStats interface {
	Stats() listener.Stats
}

// ListenerChecker reports on the UDP telemetry listener. An unbound socket
// is down; a bound socket that has gone quiet is degraded.
type ListenerChecker struct {
	source  ListenerStats
	silence time.Duration
	now     func() time.Time

	mu      sync.Mutex
	details map[string]interface{}
}

// NewListenerChecker creates a checker over source. A non-positive silence
// uses DefaultSilenceThreshold.
func NewListenerChecker(source ListenerStats, silence time.Duration) *ListenerChecker {
	if silence <= 0 {
		silence = DefaultSilenceThreshold
	}
	return &ListenerChecker{
		source:  source,
		silence: silence,
		now:     time.Now,
	}
}

// Name returns the name of the checker.
func (c *ListenerChecker) Name() string {
	return "telemetry_listener"
}

// Check inspects the listener counters.
func (c *ListenerChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st := c.source.Stats()
	details := map[string]interface{}{
		"addr":     st.Addr,
		"received": st.Received,
		"decoded":  st.Decoded,
		"ignored":  st.Ignored,
		"sources":  st.Sources,
	}
	if !st.LastDatagram.IsZero() {
		details["last_datagram"] = st.LastDatagram
	}
	c.mu.Lock()
	c.details = details
	c.mu.Unlock()

	if !st.Bound {
		return fmt.Errorf("telemetry socket not bound")
	}
	if st.LastDatagram.IsZero() {
		return Degraded("no telemetry received on %s", st.Addr)
	}

	quiet := c.now().Sub(st.LastDatagram)
	if quiet > c.silence {
		return Degraded("no telemetry for %s", quiet.Truncate(time.Second))
	}
	return nil
}

// Details reports the listener counters seen on the last check.
func (c *ListenerChecker) Details() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.details
}
