package packet

import (
	"encoding/binary"
	"math"
)

// wire builds little-endian datagram fixtures
type wire struct {
	buf []byte
}

func newWire(size int) *wire {
	return &wire{buf: make([]byte, size)}
}

func (w *wire) u8(off int, v uint8) *wire {
	w.buf[off] = v
	return w
}

func (w *wire) i8(off int, v int8) *wire {
	w.buf[off] = uint8(v)
	return w
}

func (w *wire) u16(off int, v uint16) *wire {
	binary.LittleEndian.PutUint16(w.buf[off:], v)
	return w
}

func (w *wire) i16(off int, v int16) *wire {
	return w.u16(off, uint16(v))
}

func (w *wire) u32(off int, v uint32) *wire {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
	return w
}

func (w *wire) u64(off int, v uint64) *wire {
	binary.LittleEndian.PutUint64(w.buf[off:], v)
	return w
}

func (w *wire) f32(off int, v float32) *wire {
	return w.u32(off, math.Float32bits(v))
}

func (w *wire) str(off int, s string) *wire {
	copy(w.buf[off:], s)
	return w
}

// header writes a 2019 header with the given packet id
func (w *wire) header(id uint8) *wire {
	return w.u16(0, PacketFormat2019).
		u8(2, 1).
		u8(3, 22).
		u8(4, 1).
		u8(5, id).
		u64(6, 0xDEADBEEFCAFEF00D).
		f32(14, 12.5).
		u32(18, 4242).
		u8(22, 0)
}

func (w *wire) bytes() []byte {
	return w.buf
}

// datagram returns an empty packet of the given type and size with a valid header
func datagram(t PacketType, size int) *wire {
	return newWire(size).header(uint8(t) - 1)
}

func eventDatagram(code string, size int) *wire {
	return newWire(size).header(3).str(HeaderSize, code)
}
