package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/metrics"
	"github.com/zsiec/pitwall/internal/telemetry/history"
	"github.com/zsiec/pitwall/internal/telemetry/listener"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/publish"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
)

// Manager coordinates all telemetry components. It is the listener's sink:
// every decoded record is appended to the history store, accounted to its
// game session and handed to the publisher.
type Manager struct {
	config    *config.TelemetryConfig
	store     *history.Store
	registry  registry.Registry
	publisher publish.Publisher
	listener  *listener.Listener
	logger    logger.Logger
	sampled   *logger.SampledLogger
	now       func() time.Time

	// Sessions registered by this process, and the session the store holds
	known    map[string]struct{}
	storeUID uint64
	storeSet bool
	knownMu  sync.Mutex

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
}

// Stats is the aggregated view served by the stats endpoint and the dashboard
type Stats struct {
	Started        bool                `json:"started"`
	Listener       listener.Stats      `json:"listener"`
	History        []history.TypeStats `json:"history"`
	Publisher      *publish.Stats      `json:"publisher,omitempty"`
	Sessions       int                 `json:"sessions"`
	ActiveSessions int                 `json:"active_sessions"`
}

type publisherStats interface {
	Stats() publish.Stats
}

// NewManager creates a telemetry manager. A nil publisher disables
// publishing.
func NewManager(cfg *config.TelemetryConfig, reg registry.Registry, pub publish.Publisher, log logger.Logger) (*Manager, error) {
	if reg == nil {
		return nil, fmt.Errorf("telemetry manager needs a session registry")
	}

	store, err := history.NewStore(&cfg.History)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	if pub == nil {
		pub = publish.NopPublisher{}
	}

	log = log.WithField("component", "telemetry_manager")
	m := &Manager{
		config:    cfg,
		store:     store,
		registry:  reg,
		publisher: pub,
		logger:    log,
		sampled:   logger.NewTelemetryLogger(log),
		now:       time.Now,
		known:     make(map[string]struct{}),
	}
	m.listener = listener.New(&cfg.Listener, m, log)

	return m, nil
}

// Start binds the telemetry listener and starts the session sweeper
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("telemetry manager already started")
	}

	m.logger.Info("Starting telemetry manager")

	m.ctx, m.cancel = context.WithCancel(context.Background())

	if err := m.listener.Start(m.ctx); err != nil {
		m.cancel()
		return fmt.Errorf("failed to start telemetry listener: %w", err)
	}

	if m.config.Session.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.sweepLoop(m.ctx)
	}

	m.started = true
	m.logger.Info("Telemetry manager started successfully")

	return nil
}

// Stop stops the listener and the sweeper and closes the registry and
// publisher
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Info("Stopping telemetry manager")

	if m.cancel != nil {
		m.cancel()
	}

	var errs []error

	if err := m.listener.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop telemetry listener: %w", err))
	}

	m.wg.Wait()

	if err := m.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}

	if err := m.registry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close registry: %w", err))
	}

	m.started = false

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}

	m.logger.Info("Telemetry manager stopped successfully")
	return nil
}

// HandlePacket implements listener.Sink
func (m *Manager) HandlePacket(ctx context.Context, src *net.UDPAddr, p packet.Packet) {
	if p == nil {
		return
	}

	h := p.PacketHeader()
	m.rollStore(h.SessionUID)

	if err := m.store.Append(p); err != nil {
		m.logger.WithError(err).Warn("Failed to append telemetry record")
	}

	if err := m.trackSession(ctx, h, src); err != nil {
		m.sampled.WarnWithCategory(logger.CategorySession, "Failed to update telemetry session",
			map[string]interface{}{
				"session_id": registry.GenerateSessionID(h.SessionUID),
				"error":      err.Error(),
			})
	}

	// Publish failures are counted and logged by the publisher
	_ = m.publisher.Publish(ctx, p)
}

// rollStore empties the history store when records of a different game
// session arrive, so latest and history never mix two sessions
func (m *Manager) rollStore(uid uint64) {
	m.knownMu.Lock()
	changed := m.storeSet && m.storeUID != uid
	m.storeUID, m.storeSet = uid, true
	m.knownMu.Unlock()

	if changed {
		m.store.Reset()
		m.logger.WithField("session_id", registry.GenerateSessionID(uid)).Debug("History reset for new session")
	}
}

// trackSession registers the session of h on first sight and records the
// packet against it
func (m *Manager) trackSession(ctx context.Context, h packet.Header, src *net.UDPAddr) error {
	id := registry.GenerateSessionID(h.SessionUID)

	if !m.isKnown(id) {
		if err := m.register(ctx, h, src); err != nil {
			return err
		}
	}

	err := m.registry.Observe(ctx, id, h)
	if errors.Is(err, registry.ErrSessionNotFound) {
		// Expired or swept while we still had it cached
		m.forget(id)
		if err := m.register(ctx, h, src); err != nil {
			return err
		}
		err = m.registry.Observe(ctx, id, h)
	}
	return err
}

func (m *Manager) register(ctx context.Context, h packet.Header, src *net.UDPAddr) error {
	sourceAddr := ""
	if src != nil {
		sourceAddr = src.String()
	}

	session := registry.NewSession(h, sourceAddr)
	err := m.registry.Register(ctx, session)
	switch {
	case err == nil:
		metrics.IncrementSessionsStarted()
		m.logger.WithFields(map[string]interface{}{
			"session_id":   session.ID,
			"source_addr":  sourceAddr,
			"game_version": session.GameVersion,
		}).Info("Telemetry session started")
	case errors.Is(err, registry.ErrSessionExists):
		// Registered by an earlier process sharing the registry
	default:
		return fmt.Errorf("failed to register session: %w", err)
	}

	m.knownMu.Lock()
	m.known[session.ID] = struct{}{}
	m.knownMu.Unlock()
	return nil
}

func (m *Manager) isKnown(id string) bool {
	m.knownMu.Lock()
	defer m.knownMu.Unlock()
	_, ok := m.known[id]
	return ok
}

func (m *Manager) forget(id string) {
	m.knownMu.Lock()
	delete(m.known, id)
	m.knownMu.Unlock()
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Session.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.SweepSessions(ctx); err != nil && ctx.Err() == nil {
				m.logger.WithError(err).Warn("Session sweep failed")
			}
		}
	}
}

// SweepSessions marks sessions silent for longer than the session timeout
// as stale and drops stale sessions whose last packet is older than the
// session TTL
func (m *Manager) SweepSessions(ctx context.Context) error {
	sessions, err := m.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	now := m.now()
	active := 0
	var errs []error

	for _, s := range sessions {
		ttl := m.config.Session.TTL
		if s.Status == registry.StatusStale && ttl > 0 && s.IsStale(now, ttl) {
			if err := m.registry.Unregister(ctx, s.ID); err != nil && !errors.Is(err, registry.ErrSessionNotFound) {
				errs = append(errs, err)
				continue
			}
			m.forget(s.ID)
			m.logger.WithField("session_id", s.ID).Info("Telemetry session removed")
			continue
		}

		if s.Status == registry.StatusActive && s.IsStale(now, m.config.Session.Timeout) {
			if err := m.registry.UpdateStatus(ctx, s.ID, registry.StatusStale); err != nil {
				errs = append(errs, err)
				continue
			}
			m.logger.WithFields(map[string]interface{}{
				"session_id":     s.ID,
				"last_heartbeat": s.LastHeartbeat,
				"packets":        s.TotalPackets(),
			}).Info("Telemetry session went stale")
			continue
		}

		if s.Status == registry.StatusActive {
			active++
		}
	}

	metrics.SetActiveSessions(active)
	return errors.Join(errs...)
}

// Store returns the history store
func (m *Manager) Store() *history.Store {
	return m.store
}

// Registry returns the session registry
func (m *Manager) Registry() registry.Registry {
	return m.registry
}

// Listener returns the UDP listener
func (m *Manager) Listener() *listener.Listener {
	return m.listener
}

// GetStats returns telemetry statistics
func (m *Manager) GetStats(ctx context.Context) Stats {
	m.mu.RLock()
	started := m.started
	m.mu.RUnlock()

	stats := Stats{
		Started:  started,
		Listener: m.listener.Stats(),
		History:  m.store.Stats(),
	}

	if ps, ok := m.publisher.(publisherStats); ok {
		s := ps.Stats()
		stats.Publisher = &s
	}

	sessions, err := m.registry.List(ctx)
	if err == nil {
		stats.Sessions = len(sessions)
		for _, s := range sessions {
			if s.Status == registry.StatusActive {
				stats.ActiveSessions++
			}
		}
	}

	return stats
}
