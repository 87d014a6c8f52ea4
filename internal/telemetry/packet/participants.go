package packet

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	// ParticipantsSize is the wire size of a participants packet
	ParticipantsSize = 1104

	participantStride = 54

	// NameSize is the fixed size of the participant name buffer
	NameSize = 48
)

// Participant identifies the driver in one car slot
type Participant struct {
	AIControlled  uint8          `json:"ai_controlled"`
	DriverID      uint8          `json:"driver_id"`
	TeamID        uint8          `json:"team_id"`
	RaceNumber    uint8          `json:"race_number"`
	Nationality   uint8          `json:"nationality"`
	Name          [NameSize]byte `json:"-"`
	YourTelemetry uint8          `json:"your_telemetry"`
}

// DisplayName returns the name up to the first NUL. Invalid UTF-8 is
// replaced rather than rejected.
func (p Participant) DisplayName() string {
	raw := p.Name[:]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

// MarshalJSON renders the name buffer as a string
func (p Participant) MarshalJSON() ([]byte, error) {
	type plain Participant
	return json.Marshal(struct {
		plain
		Name string `json:"name"`
	}{plain(p), p.DisplayName()})
}

// TelemetryPublic reports whether the player shares full telemetry
func (p Participant) TelemetryPublic() bool {
	return p.YourTelemetry == 1
}

// ParticipantsPacket lists the drivers in the session
type ParticipantsPacket struct {
	Header `json:"header"`

	NumActiveCars uint8                 `json:"num_active_cars"`
	Cars          [CarSlots]Participant `json:"cars"`
}

// Active returns the first NumActiveCars participants
func (p *ParticipantsPacket) Active() []Participant {
	n := int(p.NumActiveCars)
	if n > CarSlots {
		n = CarSlots
	}
	return p.Cars[:n]
}

func decodeParticipant(buf []byte, off int) (Participant, error) {
	r := NewReader(buf)
	p := Participant{
		AIControlled:  r.U8(off),
		DriverID:      r.U8(off + 1),
		TeamID:        r.U8(off + 2),
		RaceNumber:    r.U8(off + 3),
		Nationality:   r.U8(off + 4),
		YourTelemetry: r.U8(off + 5 + NameSize),
	}
	copy(p.Name[:], r.Bytes(off+5, NameSize))
	return p, r.Err()
}

// DecodeParticipants decodes a participants packet
func DecodeParticipants(buf []byte, h Header) (*ParticipantsPacket, error) {
	if err := checkSize(buf, TypeParticipants, ParticipantsSize); err != nil {
		return nil, err
	}

	r := NewReader(buf)
	p := &ParticipantsPacket{
		Header:        h,
		NumActiveCars: r.U8(HeaderSize),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := decodeCars(buf, HeaderSize+1, participantStride, decodeParticipant, &p.Cars); err != nil {
		return nil, err
	}
	return p, nil
}
