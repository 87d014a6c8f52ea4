package packet

// Packet is a decoded record of any type. Every record embeds Header, so the
// record's type is PacketHeader().Type.
type Packet interface {
	PacketHeader() Header
}

// TypeOf returns the type of a decoded record, TypeUndecoded for nil
func TypeOf(p Packet) PacketType {
	if p == nil {
		return TypeUndecoded
	}
	return p.PacketHeader().Type
}

// Decode decodes a complete datagram. buf must be sliced to the received
// length.
func Decode(buf []byte) (Packet, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return decodePayload(buf, h)
}

func decodePayload(buf []byte, h Header) (Packet, error) {
	var (
		p   Packet
		err error
	)
	switch h.Type {
	case TypeMotion:
		p, err = DecodeMotion(buf, h)
	case TypeSession:
		p, err = DecodeSession(buf, h)
	case TypeLap:
		p, err = DecodeLap(buf, h)
	case TypeEvent:
		p, err = DecodeEvent(buf, h)
	case TypeParticipants:
		p, err = DecodeParticipants(buf, h)
	case TypeSetup:
		p, err = DecodeSetup(buf, h)
	case TypeTelemetry:
		p, err = DecodeTelemetry(buf, h)
	case TypeCarStatus:
		p, err = DecodeCarStatus(buf, h)
	default:
		return nil, &UnrecognizedTypeError{PacketID: h.PacketID}
	}
	// p holds a typed nil on failure
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Result is the outcome of dispatching one datagram. Exactly one of Packet
// and Reason is set.
type Result struct {
	// Header is set whenever the header decoded, even if the payload was dropped
	Header Header
	Packet Packet
	Reason error
}

// Ignored reports whether the datagram was dropped
func (r Result) Ignored() bool {
	return r.Reason != nil
}

// Dispatch decodes a datagram and never fails: any decode error turns the
// datagram into an ignored result carrying the error as its reason.
func Dispatch(buf []byte) Result {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Result{Reason: err}
	}
	p, err := decodePayload(buf, h)
	if err != nil {
		return Result{Header: h, Reason: err}
	}
	return Result{Header: h, Packet: p}
}
