package packet

import (
	"encoding/binary"
	"math"
)

// Reader reads fixed-width little-endian scalars at absolute offsets.
//
// Reads never advance; the caller computes every offset. The first read
// that does not fit records an *OutOfBoundsError and all later reads return
// zero, so a decoder can read a whole record and check Err once.
type Reader struct {
	buf []byte
	err error
}

// NewReader creates a reader over buf
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first out of bounds failure, if any
func (r *Reader) Err() error {
	return r.err
}

// Len returns the length of the underlying buffer
func (r *Reader) Len() int {
	return len(r.buf)
}

func (r *Reader) check(off, width int) bool {
	if r.err != nil {
		return false
	}
	if off < 0 || off+width > len(r.buf) {
		r.err = &OutOfBoundsError{Offset: off, Width: width, Len: len(r.buf)}
		return false
	}
	return true
}

// U8 reads an unsigned byte
func (r *Reader) U8(off int) uint8 {
	if !r.check(off, 1) {
		return 0
	}
	return r.buf[off]
}

// I8 reads a signed byte
func (r *Reader) I8(off int) int8 {
	return int8(r.U8(off))
}

// U16 reads a little-endian uint16
func (r *Reader) U16(off int) uint16 {
	if !r.check(off, 2) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.buf[off:])
}

// I16 reads a little-endian int16
func (r *Reader) I16(off int) int16 {
	return int16(r.U16(off))
}

// U32 reads a little-endian uint32
func (r *Reader) U32(off int) uint32 {
	if !r.check(off, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[off:])
}

// U64 reads a little-endian uint64
func (r *Reader) U64(off int) uint64 {
	if !r.check(off, 8) {
		return 0
	}
	return binary.LittleEndian.Uint64(r.buf[off:])
}

// F32 reads a little-endian IEEE 754 float
func (r *Reader) F32(off int) Float {
	return Float(math.Float32frombits(r.U32(off)))
}

// Bytes copies n raw bytes starting at off
func (r *Reader) Bytes(off, n int) []byte {
	if !r.check(off, n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.buf[off:off+n])
	return out
}
