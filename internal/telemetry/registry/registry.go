package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

var (
	// ErrSessionNotFound is returned when a session is not in the registry
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when registering a session id twice
	ErrSessionExists = errors.New("session already exists")
)

// Registry defines the interface for session registry operations
type Registry interface {
	// Register adds a new session to the registry
	Register(ctx context.Context, session *Session) error

	// Unregister removes a session from the registry
	Unregister(ctx context.Context, sessionID string) error

	// Get retrieves a session by ID
	Get(ctx context.Context, sessionID string) (*Session, error)

	// List returns all known sessions ordered by creation time
	List(ctx context.Context) ([]*Session, error)

	// Observe updates a session from the header of a decoded packet
	Observe(ctx context.Context, sessionID string, h packet.Header) error

	// UpdateStatus updates the status of a session
	UpdateStatus(ctx context.Context, sessionID string, status SessionStatus) error

	// Close closes any resources held by the registry
	Close() error
}

func notFound(sessionID string) error {
	return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

func sortSessions(sessions []*Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}

// MemoryRegistry keeps sessions in process. Values handed out are copies.
type MemoryRegistry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryRegistry creates an empty in-process registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (m *MemoryRegistry) Register(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *MemoryRegistry) Unregister(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return notFound(sessionID)
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryRegistry) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, notFound(sessionID)
	}
	return session.Clone(), nil
}

func (m *MemoryRegistry) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session.Clone())
	}
	m.mu.RUnlock()

	sortSessions(sessions)
	return sessions, nil
}

func (m *MemoryRegistry) Observe(ctx context.Context, sessionID string, h packet.Header) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return notFound(sessionID)
	}
	session.Observe(h, m.now())
	return nil
}

func (m *MemoryRegistry) UpdateStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return notFound(sessionID)
	}
	session.Status = status
	return nil
}

func (m *MemoryRegistry) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
	return nil
}
