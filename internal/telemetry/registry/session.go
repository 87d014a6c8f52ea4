package registry

import (
	"fmt"
	"time"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// SessionStatus represents the liveness of a game session
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusStale  SessionStatus = "stale"
)

// Session is one game session as seen by the listener, keyed by the session
// uid the game writes into every header
type Session struct {
	ID            string        `json:"id"`
	SessionUID    uint64        `json:"session_uid,string"`
	SourceAddr    string        `json:"source_addr"`
	Status        SessionStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	LastHeartbeat time.Time     `json:"last_heartbeat"`

	// Game metadata from the most recent header
	PacketFormat    uint16       `json:"packet_format"`
	GameVersion     string       `json:"game_version"`
	PlayerCarIndex  uint8        `json:"player_car_index"`
	LastFrameID     uint32       `json:"last_frame_id"`
	LastSessionTime packet.Float `json:"last_session_time"`

	// Packets counts decoded records per packet type name
	Packets map[string]uint64 `json:"packets"`
}

// GenerateSessionID renders a session uid as 16 hex digits
func GenerateSessionID(uid uint64) string {
	return fmt.Sprintf("%016x", uid)
}

// NewSession creates an active session from the first header seen
func NewSession(h packet.Header, sourceAddr string) *Session {
	now := time.Now()
	s := &Session{
		ID:            GenerateSessionID(h.SessionUID),
		SessionUID:    h.SessionUID,
		SourceAddr:    sourceAddr,
		Status:        StatusActive,
		CreatedAt:     now,
		LastHeartbeat: now,
		Packets:       make(map[string]uint64),
	}
	s.apply(h)
	return s
}

func (s *Session) apply(h packet.Header) {
	s.PacketFormat = h.PacketFormat
	s.GameVersion = h.GameVersion()
	s.PlayerCarIndex = h.PlayerCarIndex
	s.LastFrameID = h.FrameID
	s.LastSessionTime = h.SessionTime
}

// Observe records one decoded packet of this session
func (s *Session) Observe(h packet.Header, now time.Time) {
	s.apply(h)
	s.LastHeartbeat = now
	s.Status = StatusActive
	if s.Packets == nil {
		s.Packets = make(map[string]uint64)
	}
	s.Packets[h.Type.String()]++
}

// TotalPackets sums the per-type counters
func (s *Session) TotalPackets() uint64 {
	var total uint64
	for _, n := range s.Packets {
		total += n
	}
	return total
}

// IsStale reports whether no packet arrived within timeout
func (s *Session) IsStale(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastHeartbeat) > timeout
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	c.Packets = make(map[string]uint64, len(s.Packets))
	for k, v := range s.Packets {
		c.Packets[k] = v
	}
	return &c
}
