package packet

// Array dimensions fixed by the wire format
const (
	CarSlots        = 20
	WheelCount      = 4
	MaxMarshalZones = 21
)

// Wheel positions in wire order. The order is defined by the game and must
// not be re-derived.
const (
	RearLeft = iota
	RearRight
	FrontLeft
	FrontRight
)

// Wheels holds one value per wheel, indexed by RearLeft..FrontRight
type Wheels[T any] [WheelCount]T

// ElementDecoder decodes one array element starting at off
type ElementDecoder[T any] func(buf []byte, off int) (T, error)

// DecodeArray decodes count elements spaced stride bytes apart starting at
// base. Elements are decoded in ascending index order; the index is the car
// slot, wheel position or zone number. The first error aborts the walk and
// no partial slice is returned.
func DecodeArray[T any](buf []byte, base, stride, count int, decode ElementDecoder[T]) ([]T, error) {
	out := make([]T, count)
	for i := 0; i < count; i++ {
		v, err := decode(buf, base+i*stride)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeWheels[T any](buf []byte, base, stride int, decode ElementDecoder[T]) (Wheels[T], error) {
	var w Wheels[T]
	items, err := DecodeArray(buf, base, stride, WheelCount, decode)
	if err != nil {
		return w, err
	}
	copy(w[:], items)
	return w, nil
}

func f32At(buf []byte, off int) (Float, error) {
	r := NewReader(buf)
	v := r.F32(off)
	return v, r.Err()
}

func u16At(buf []byte, off int) (uint16, error) {
	r := NewReader(buf)
	v := r.U16(off)
	return v, r.Err()
}

func u8At(buf []byte, off int) (uint8, error) {
	r := NewReader(buf)
	v := r.U8(off)
	return v, r.Err()
}

// WheelsF32 decodes four consecutive float values
func WheelsF32(buf []byte, off int) (Wheels[Float], error) {
	return decodeWheels(buf, off, 4, f32At)
}

// WheelsU16 decodes four consecutive uint16 values
func WheelsU16(buf []byte, off int) (Wheels[uint16], error) {
	return decodeWheels(buf, off, 2, u16At)
}

// WheelsU8 decodes four consecutive bytes
func WheelsU8(buf []byte, off int) (Wheels[uint8], error) {
	return decodeWheels(buf, off, 1, u8At)
}

// decodeCars walks the 20 car slots into dst.
func decodeCars[T any](buf []byte, base, stride int, decode ElementDecoder[T], dst *[CarSlots]T) error {
	items, err := DecodeArray(buf, base, stride, CarSlots, decode)
	if err != nil {
		return err
	}
	copy(dst[:], items)
	return nil
}
