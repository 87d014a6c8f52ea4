// Package testdata builds wire-format telemetry datagrams for tests and
// local tooling.
package testdata

import (
	"encoding/binary"
	"math"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// DefaultSessionUID is written into every datagram unless overridden
const DefaultSessionUID uint64 = 0x1F2E3D4C5B6A7988

// EventSize is the size of an event datagram as sent by the game
const EventSize = packet.HeaderSize + packet.EventCodeSize + 5

var sizes = map[packet.PacketType]int{
	packet.TypeMotion:       packet.MotionSize,
	packet.TypeSession:      packet.SessionSize,
	packet.TypeLap:          packet.LapSize,
	packet.TypeEvent:        EventSize,
	packet.TypeParticipants: packet.ParticipantsSize,
	packet.TypeSetup:        packet.SetupSize,
	packet.TypeTelemetry:    packet.TelemetrySize,
	packet.TypeCarStatus:    packet.CarStatusSize,
}

// Per-car strides on the wire
const (
	lapStride         = 41
	participantStride = 54
	telemetryStride   = 66
)

// Datagram is a mutable little-endian datagram under construction
type Datagram struct {
	buf []byte
}

// New returns a zeroed datagram of type t with a valid 2019 header
func New(t packet.PacketType) *Datagram {
	d := &Datagram{buf: make([]byte, sizes[t])}
	return d.U16(0, packet.PacketFormat2019).
		U8(2, 1).
		U8(3, 22).
		U8(4, 1).
		U8(5, uint8(t)-1).
		U64(6, DefaultSessionUID).
		U32(18, 1)
}

// Raw wraps an arbitrary buffer, for malformed datagrams
func Raw(size int) *Datagram {
	return &Datagram{buf: make([]byte, size)}
}

// Event returns an event datagram carrying code
func Event(code string) *Datagram {
	d := New(packet.TypeEvent)
	copy(d.buf[packet.HeaderSize:], code)
	return d
}

func (d *Datagram) U8(off int, v uint8) *Datagram {
	d.buf[off] = v
	return d
}

func (d *Datagram) I8(off int, v int8) *Datagram {
	return d.U8(off, uint8(v))
}

func (d *Datagram) U16(off int, v uint16) *Datagram {
	binary.LittleEndian.PutUint16(d.buf[off:], v)
	return d
}

func (d *Datagram) U32(off int, v uint32) *Datagram {
	binary.LittleEndian.PutUint32(d.buf[off:], v)
	return d
}

func (d *Datagram) U64(off int, v uint64) *Datagram {
	binary.LittleEndian.PutUint64(d.buf[off:], v)
	return d
}

func (d *Datagram) F32(off int, v float32) *Datagram {
	return d.U32(off, math.Float32bits(v))
}

// SessionUID overrides the session uid in the header
func (d *Datagram) SessionUID(uid uint64) *Datagram {
	return d.U64(6, uid)
}

// SessionTime sets the session clock in the header
func (d *Datagram) SessionTime(seconds float32) *Datagram {
	return d.F32(14, seconds)
}

// Frame sets the frame id in the header
func (d *Datagram) Frame(frame uint32) *Datagram {
	return d.U32(18, frame)
}

// PlayerCar sets the player car index in the header
func (d *Datagram) PlayerCar(index uint8) *Datagram {
	return d.U8(22, index)
}

// EventCar sets the car index of an event
func (d *Datagram) EventCar(index uint8) *Datagram {
	return d.U8(packet.HeaderSize+packet.EventCodeSize, index)
}

// EventLapTime sets the lap time of a fastest lap event
func (d *Datagram) EventLapTime(seconds float32) *Datagram {
	return d.F32(packet.HeaderSize+packet.EventCodeSize+1, seconds)
}

// Session fills the main fields of a session datagram
func (d *Datagram) Session(trackID int8, sessionType, weather uint8, timeLeft uint16) *Datagram {
	return d.U8(packet.HeaderSize, weather).
		U8(packet.HeaderSize+6, sessionType).
		I8(packet.HeaderSize+7, trackID).
		U16(packet.HeaderSize+9, timeLeft)
}

// Lap sets the race position and lap number of car i in a lap datagram
func (d *Datagram) Lap(i int, position, lapNum uint8) *Datagram {
	off := packet.HeaderSize + i*lapStride
	return d.U8(off+32, position).U8(off+33, lapNum)
}

// Participant sets the team and name of car i in a participants datagram
func (d *Datagram) Participant(i int, teamID uint8, name string) *Datagram {
	off := packet.HeaderSize + 1 + i*participantStride
	d.U8(off+2, teamID)
	copy(d.buf[off+5:off+5+packet.NameSize], name)
	return d
}

// ActiveCars sets the participant count
func (d *Datagram) ActiveCars(n uint8) *Datagram {
	return d.U8(packet.HeaderSize, n)
}

// CarTelemetry sets the main driving inputs of car i in a telemetry datagram
func (d *Datagram) CarTelemetry(i int, speed uint16, gear int8, rpm uint16, throttle, brake float32) *Datagram {
	off := packet.HeaderSize + i*telemetryStride
	return d.U16(off, speed).
		F32(off+2, throttle).
		F32(off+10, brake).
		I8(off+15, gear).
		U16(off+16, rpm)
}

// Bytes returns the datagram
func (d *Datagram) Bytes() []byte {
	return d.buf
}
