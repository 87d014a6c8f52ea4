package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a field read runs past the end of the datagram
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrLengthMismatch is returned when a payload is not exactly its type's wire size
	ErrLengthMismatch = errors.New("payload length mismatch")
	// ErrUnrecognizedType is returned for packet ids outside 0..7
	ErrUnrecognizedType = errors.New("unrecognized packet type")
	// ErrUnrecognizedEvent is returned for event codes outside the known table
	ErrUnrecognizedEvent = errors.New("unrecognized event code")
	// ErrTooShort is returned when a datagram cannot hold a header and the smallest payload
	ErrTooShort = errors.New("datagram too short")
)

// OutOfBoundsError describes a read that does not fit in the buffer
type OutOfBoundsError struct {
	Offset int
	Width  int
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read out of bounds: %d bytes at offset %d exceeds buffer of %d bytes",
		e.Width, e.Offset, e.Len)
}

// Is makes errors.Is(err, ErrOutOfBounds) match.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// LengthMismatchError reports a datagram whose size differs from the fixed wire size
type LengthMismatchError struct {
	Type PacketType
	Got  int
	Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s packet: got %d bytes, want %d", e.Type, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrLengthMismatch) match.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// UnrecognizedTypeError carries the raw packet id that could not be classified
type UnrecognizedTypeError struct {
	PacketID uint8
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized packet type: id %d", e.PacketID)
}

// Is makes errors.Is(err, ErrUnrecognizedType) match.
func (e *UnrecognizedTypeError) Is(target error) bool {
	return target == ErrUnrecognizedType
}

// UnrecognizedEventError carries the raw four byte event code
type UnrecognizedEventError struct {
	Code [4]byte
}

func (e *UnrecognizedEventError) Error() string {
	return fmt.Sprintf("unrecognized event code: %q", e.Code[:])
}

// Is makes errors.Is(err, ErrUnrecognizedEvent) match.
func (e *UnrecognizedEventError) Is(target error) bool {
	return target == ErrUnrecognizedEvent
}

// Drop reasons, used as metric labels and in logs.
const (
	ReasonTooShort          = "too_short"
	ReasonLengthMismatch    = "length_mismatch"
	ReasonOutOfBounds       = "out_of_bounds"
	ReasonUnrecognizedType  = "unrecognized_type"
	ReasonUnrecognizedEvent = "unrecognized_event"
	ReasonUnknown           = "unknown"
)

// Reason maps a decode error to its drop reason label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooShort):
		return ReasonTooShort
	case errors.Is(err, ErrLengthMismatch):
		return ReasonLengthMismatch
	case errors.Is(err, ErrOutOfBounds):
		return ReasonOutOfBounds
	case errors.Is(err, ErrUnrecognizedType):
		return ReasonUnrecognizedType
	case errors.Is(err, ErrUnrecognizedEvent):
		return ReasonUnrecognizedEvent
	default:
		return ReasonUnknown
	}
}
