package packet

import (
	"fmt"
	"strings"
)

const (
	// HeaderSize is the size of the header shared by every packet type
	HeaderSize = 23

	// EventCodeSize is the size of the event discriminator, the smallest payload
	EventCodeSize = 4

	// MinPacketSize is the smallest datagram worth decoding
	MinPacketSize = HeaderSize + EventCodeSize

	// MaxPacketSize is the largest datagram the game sends (car telemetry)
	MaxPacketSize = TelemetrySize

	// PacketFormat2019 is the packet_format value of this layout
	PacketFormat2019 = 2019
)

// PacketType is the decoder's classification of a packet id.
//
// The zero value means the header has not been decoded yet. TypeUnrecognized
// is the terminal state for ids this decoder version does not know.
type PacketType uint8

const (
	TypeUndecoded PacketType = iota
	TypeMotion
	TypeSession
	TypeLap
	TypeEvent
	TypeParticipants
	TypeSetup
	TypeTelemetry
	TypeCarStatus
	TypeUnrecognized
)

// KnownTypes lists the decodable packet types in wire id order
var KnownTypes = []PacketType{
	TypeMotion,
	TypeSession,
	TypeLap,
	TypeEvent,
	TypeParticipants,
	TypeSetup,
	TypeTelemetry,
	TypeCarStatus,
}

var typeNames = map[PacketType]string{
	TypeUndecoded:    "undecoded",
	TypeMotion:       "motion",
	TypeSession:      "session",
	TypeLap:          "lap",
	TypeEvent:        "event",
	TypeParticipants: "participants",
	TypeSetup:        "setup",
	TypeTelemetry:    "telemetry",
	TypeCarStatus:    "car_status",
	TypeUnrecognized: "unrecognized",
}

func (t PacketType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PacketType(%d)", uint8(t))
}

// MarshalText renders the type by name
func (t PacketType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Known reports whether the type has a payload decoder
func (t PacketType) Known() bool {
	return t >= TypeMotion && t <= TypeCarStatus
}

// ParsePacketType resolves a type name (as produced by String) to a known type
func ParsePacketType(s string) (PacketType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range KnownTypes {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return TypeUndecoded, fmt.Errorf("unknown packet type %q", s)
}

// ClassifyPacketID maps a wire packet id to its type. Ids above 7 map to
// TypeUnrecognized.
func ClassifyPacketID(id uint8) PacketType {
	switch id {
	case 0:
		return TypeMotion
	case 1:
		return TypeSession
	case 2:
		return TypeLap
	case 3:
		return TypeEvent
	case 4:
		return TypeParticipants
	case 5:
		return TypeSetup
	case 6:
		return TypeTelemetry
	case 7:
		return TypeCarStatus
	default:
		return TypeUnrecognized
	}
}

// Header is the 23 byte header common to all packets
type Header struct {
	PacketFormat   uint16     `json:"packet_format"`
	MajorVersion   uint8      `json:"major_version"`
	MinorVersion   uint8      `json:"minor_version"`
	PacketVersion  uint8      `json:"packet_version"`
	PacketID       uint8      `json:"packet_id"`
	Type           PacketType `json:"type"`
	SessionUID     uint64     `json:"session_uid,string"`
	SessionTime    Float      `json:"session_time"`
	FrameID        uint32     `json:"frame_id"`
	PlayerCarIndex uint8      `json:"player_car_index"`
}

// PacketHeader returns the header itself; records embed Header to satisfy Packet.
func (h Header) PacketHeader() Header {
	return h
}

// GameVersion renders the game version as "major.minor"
func (h Header) GameVersion() string {
	return fmt.Sprintf("%d.%02d", h.MajorVersion, h.MinorVersion)
}

// DecodeHeader decodes the header of a datagram. buf must be sliced to the
// received length.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < MinPacketSize {
		return Header{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrTooShort, len(buf), MinPacketSize)
	}

	const (
		offFormat        = 0
		offMajor         = 2
		offMinor         = 3
		offPacketVersion = 4
		offPacketID      = 5
		offSessionUID    = 6
		offSessionTime   = 14
		offFrameID       = 18
		offPlayerCar     = 22
	)

	r := NewReader(buf)
	h := Header{
		PacketFormat:   r.U16(offFormat),
		MajorVersion:   r.U8(offMajor),
		MinorVersion:   r.U8(offMinor),
		PacketVersion:  r.U8(offPacketVersion),
		PacketID:       r.U8(offPacketID),
		SessionUID:     r.U64(offSessionUID),
		SessionTime:    r.F32(offSessionTime),
		FrameID:        r.U32(offFrameID),
		PlayerCarIndex: r.U8(offPlayerCar),
	}
	if err := r.Err(); err != nil {
		return Header{}, err
	}
	h.Type = ClassifyPacketID(h.PacketID)
	return h, nil
}

// checkSize is the integrity gate every fixed-size decoder runs first.
func checkSize(buf []byte, t PacketType, want int) error {
	if len(buf) != want {
		return &LengthMismatchError{Type: t, Got: len(buf), Want: want}
	}
	return nil
}
