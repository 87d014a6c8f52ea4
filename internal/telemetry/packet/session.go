package packet

const (
	// SessionSize is the wire size of a session packet
	SessionSize = 149

	marshalZoneStride = 5
)

// ZoneFlag is the flag shown in a marshal zone or to a car
type ZoneFlag int8

const (
	FlagUnknown ZoneFlag = -1
	FlagNone    ZoneFlag = 0
	FlagGreen   ZoneFlag = 1
	FlagBlue    ZoneFlag = 2
	FlagYellow  ZoneFlag = 3
	FlagRed     ZoneFlag = 4
)

// flagFromWire closes the flag set: anything outside -1..4 is unknown.
func flagFromWire(v int8) ZoneFlag {
	f := ZoneFlag(v)
	if f < FlagUnknown || f > FlagRed {
		return FlagUnknown
	}
	return f
}

func (f ZoneFlag) String() string {
	switch f {
	case FlagNone:
		return "none"
	case FlagGreen:
		return "green"
	case FlagBlue:
		return "blue"
	case FlagYellow:
		return "yellow"
	case FlagRed:
		return "red"
	default:
		return "unknown"
	}
}

// MarshalText renders the flag by name
func (f ZoneFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// MarshalZone is a track interval with its current flag
type MarshalZone struct {
	// ZoneStart is the fraction (0..1) of the lap where the zone starts
	ZoneStart Float    `json:"zone_start"`
	Flag      ZoneFlag `json:"flag"`
}

// SessionPacket describes the session in progress
type SessionPacket struct {
	Header `json:"header"`

	Weather             uint8  `json:"weather"`
	TrackTemperature    int8   `json:"track_temperature"`
	AirTemperature      int8   `json:"air_temperature"`
	TotalLaps           uint8  `json:"total_laps"`
	TrackLength         uint16 `json:"track_length"`
	SessionType         uint8  `json:"session_type"`
	TrackID             int8   `json:"track_id"`
	Formula             uint8  `json:"formula"`
	SessionTimeLeft     uint16 `json:"session_time_left"`
	SessionDuration     uint16 `json:"session_duration"`
	PitSpeedLimit       uint8  `json:"pit_speed_limit"`
	GamePaused          uint8  `json:"game_paused"`
	IsSpectating        uint8  `json:"is_spectating"`
	SpectatorCarIndex   uint8  `json:"spectator_car_index"`
	SLIProNativeSupport uint8  `json:"sli_pro_native_support"`
	NumMarshalZones     uint8  `json:"num_marshal_zones"`

	// Zones beyond NumMarshalZones are on the wire but carry no meaning
	MarshalZones [MaxMarshalZones]MarshalZone `json:"marshal_zones"`

	SafetyCarStatus uint8 `json:"safety_car_status"`
	NetworkGame     uint8 `json:"network_game"`
}

// ActiveZones returns the meaningful marshal zones
func (p *SessionPacket) ActiveZones() []MarshalZone {
	n := int(p.NumMarshalZones)
	if n > MaxMarshalZones {
		n = MaxMarshalZones
	}
	return p.MarshalZones[:n]
}

func decodeMarshalZone(buf []byte, off int) (MarshalZone, error) {
	r := NewReader(buf)
	z := MarshalZone{
		ZoneStart: r.F32(off),
		Flag:      flagFromWire(r.I8(off + 4)),
	}
	return z, r.Err()
}

// DecodeSession decodes a session packet
func DecodeSession(buf []byte, h Header) (*SessionPacket, error) {
	if err := checkSize(buf, TypeSession, SessionSize); err != nil {
		return nil, err
	}

	const (
		offWeather       = HeaderSize + 0
		offTrackTemp     = HeaderSize + 1
		offAirTemp       = HeaderSize + 2
		offTotalLaps     = HeaderSize + 3
		offTrackLength   = HeaderSize + 4
		offSessionType   = HeaderSize + 6
		offTrackID       = HeaderSize + 7
		offFormula       = HeaderSize + 8
		offTimeLeft      = HeaderSize + 9
		offDuration      = HeaderSize + 11
		offPitSpeedLimit = HeaderSize + 13
		offGamePaused    = HeaderSize + 14
		offSpectating    = HeaderSize + 15
		offSpectatorCar  = HeaderSize + 16
		offSLIPro        = HeaderSize + 17
		offNumZones      = HeaderSize + 18
		offZones         = HeaderSize + 19
		offSafetyCar     = offZones + MaxMarshalZones*marshalZoneStride
		offNetworkGame   = offSafetyCar + 1
	)

	r := NewReader(buf)
	p := &SessionPacket{
		Header:              h,
		Weather:             r.U8(offWeather),
		TrackTemperature:    r.I8(offTrackTemp),
		AirTemperature:      r.I8(offAirTemp),
		TotalLaps:           r.U8(offTotalLaps),
		TrackLength:         r.U16(offTrackLength),
		SessionType:         r.U8(offSessionType),
		TrackID:             r.I8(offTrackID),
		Formula:             r.U8(offFormula),
		SessionTimeLeft:     r.U16(offTimeLeft),
		SessionDuration:     r.U16(offDuration),
		PitSpeedLimit:       r.U8(offPitSpeedLimit),
		GamePaused:          r.U8(offGamePaused),
		IsSpectating:        r.U8(offSpectating),
		SpectatorCarIndex:   r.U8(offSpectatorCar),
		SLIProNativeSupport: r.U8(offSLIPro),
		NumMarshalZones:     r.U8(offNumZones),
		SafetyCarStatus:     r.U8(offSafetyCar),
		NetworkGame:         r.U8(offNetworkGame),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	zones, err := DecodeArray(buf, offZones, marshalZoneStride, MaxMarshalZones, decodeMarshalZone)
	if err != nil {
		return nil, err
	}
	copy(p.MarshalZones[:], zones)
	return p, nil
}
