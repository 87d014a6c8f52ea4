package packet

import "fmt"

// EventKind identifies the sub-kind of an event packet
type EventKind uint8

const (
	EventSessionStarted EventKind = iota
	EventSessionEnded
	EventFastestLap
	EventRetirement
	EventDRSEnabled
	EventDRSDisabled
	EventTeammateInPits
	EventChequeredFlag
	EventRaceWinner
)

// eventPayload describes what follows the code on the wire
type eventPayload uint8

const (
	payloadNone eventPayload = iota
	payloadCar
	payloadCarLapTime
)

type eventDef struct {
	kind    EventKind
	code    string
	name    string
	payload eventPayload
}

// eventCode packs four ASCII bytes the way they arrive on the wire
func eventCode(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// Event codes of the 2019 format. The table is closed; a code is matched on
// all four bytes.
var eventTable = map[uint32]eventDef{
	eventCode("SSTA"): {EventSessionStarted, "SSTA", "session_started", payloadNone},
	eventCode("SEND"): {EventSessionEnded, "SEND", "session_ended", payloadNone},
	eventCode("FTLP"): {EventFastestLap, "FTLP", "fastest_lap", payloadCarLapTime},
	eventCode("RTMT"): {EventRetirement, "RTMT", "retirement", payloadCar},
	eventCode("DRSE"): {EventDRSEnabled, "DRSE", "drs_enabled", payloadNone},
	eventCode("DRSD"): {EventDRSDisabled, "DRSD", "drs_disabled", payloadNone},
	eventCode("TMPT"): {EventTeammateInPits, "TMPT", "teammate_in_pits", payloadCar},
	eventCode("CHQF"): {EventChequeredFlag, "CHQF", "chequered_flag", payloadNone},
	eventCode("RCWN"): {EventRaceWinner, "RCWN", "race_winner", payloadCar},
}

var eventKinds = func() map[EventKind]eventDef {
	m := make(map[EventKind]eventDef, len(eventTable))
	for _, s := range eventTable {
		m[s.kind] = s
	}
	return m
}()

func (k EventKind) String() string {
	if s, ok := eventKinds[k]; ok {
		return s.name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// MarshalText renders the kind by name
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Code returns the four letter wire code of the kind
func (k EventKind) Code() string {
	return eventKinds[k].code
}

// HasCar reports whether events of this kind carry a car index
func (k EventKind) HasCar() bool {
	return eventKinds[k].payload != payloadNone
}

// HasLapTime reports whether events of this kind carry a lap time
func (k EventKind) HasLapTime() bool {
	return eventKinds[k].payload == payloadCarLapTime
}

// EventPacket is a game event. CarIndex and LapTime are nil unless the kind
// carries them; 255 is a valid car index here, not a "no car" marker.
type EventPacket struct {
	Header `json:"header"`

	Kind     EventKind `json:"kind"`
	Code     string    `json:"code"`
	CarIndex *uint8    `json:"car_index,omitempty"`
	LapTime  *Float    `json:"lap_time,omitempty"`
}

// DecodeEvent decodes an event packet. The payload size depends on the kind,
// so only the fields the kind carries have to fit in buf.
func DecodeEvent(buf []byte, h Header) (*EventPacket, error) {
	const (
		offCode    = HeaderSize
		offCar     = offCode + EventCodeSize
		offLapTime = offCar + 1
	)

	r := NewReader(buf)
	raw := r.U32(offCode)
	if err := r.Err(); err != nil {
		return nil, err
	}

	def, ok := eventTable[raw]
	if !ok {
		e := &UnrecognizedEventError{}
		copy(e.Code[:], buf[offCode:offCode+EventCodeSize])
		return nil, e
	}

	p := &EventPacket{Header: h, Kind: def.kind, Code: def.code}
	switch def.payload {
	case payloadCar:
		car := r.U8(offCar)
		p.CarIndex = &car
	case payloadCarLapTime:
		car := r.U8(offCar)
		lap := r.F32(offLapTime)
		p.CarIndex = &car
		p.LapTime = &lap
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
