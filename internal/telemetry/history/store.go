package history

import (
	"fmt"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/metrics"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// TypeStats describes the ring of one packet type
type TypeStats struct {
	Type     packet.PacketType `json:"type"`
	Len      int               `json:"len"`
	Capacity int               `json:"capacity"`
	Pushed   uint64            `json:"pushed"`
	Evicted  uint64            `json:"evicted"`
}

// Store keeps the most recent decoded records of every packet type. The
// decoder never touches it; the caller appends what it decoded.
type Store struct {
	rings map[packet.PacketType]*Ring[packet.Packet]
}

// NewStore creates one ring per known packet type
func NewStore(cfg *config.HistoryConfig) (*Store, error) {
	s := &Store{rings: make(map[packet.PacketType]*Ring[packet.Packet], len(packet.KnownTypes))}
	for _, t := range packet.KnownTypes {
		ring, err := NewRing[packet.Packet](cfg.CapacityFor(t))
		if err != nil {
			return nil, fmt.Errorf("history ring %s: %w", t, err)
		}
		s.rings[t] = ring
	}
	return s, nil
}

// Append stores p in the ring of its type. Records of unknown types are
// rejected.
func (s *Store) Append(p packet.Packet) error {
	t := packet.TypeOf(p)
	ring, ok := s.rings[t]
	if !ok {
		return fmt.Errorf("no history for packet type %s", t)
	}

	if ring.Push(p) {
		metrics.IncrementHistoryEviction(t.String())
	}
	metrics.SetHistorySize(t.String(), ring.Len())
	return nil
}

// Latest returns the newest record of type t
func (s *Store) Latest(t packet.PacketType) (packet.Packet, bool) {
	ring, ok := s.rings[t]
	if !ok {
		return nil, false
	}
	return ring.Latest()
}

// History returns up to n of the newest records of type t, oldest first.
// A negative n returns everything held.
func (s *Store) History(t packet.PacketType, n int) []packet.Packet {
	ring, ok := s.rings[t]
	if !ok {
		return nil
	}
	return ring.Last(n)
}

// Stats reports every ring in packet id order
func (s *Store) Stats() []TypeStats {
	out := make([]TypeStats, 0, len(packet.KnownTypes))
	for _, t := range packet.KnownTypes {
		ring := s.rings[t]
		out = append(out, TypeStats{
			Type:     t,
			Len:      ring.Len(),
			Capacity: ring.Cap(),
			Pushed:   ring.Pushed(),
			Evicted:  ring.Evicted(),
		})
	}
	return out
}

// Reset empties every ring, used when a new game session starts
func (s *Store) Reset() {
	for t, ring := range s.rings {
		ring.Reset()
		metrics.SetHistorySize(t.String(), 0)
	}
}
