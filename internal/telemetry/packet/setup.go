package packet

const (
	// SetupSize is the wire size of a car setups packet
	SetupSize = 843

	carSetupStride = 41
)

// CarSetup is the setup of one car. In multiplayer games other players'
// setups are reported as zeroes.
type CarSetup struct {
	FrontWing             uint8 `json:"front_wing"`
	RearWing              uint8 `json:"rear_wing"`
	OnThrottle            uint8 `json:"on_throttle"`
	OffThrottle           uint8 `json:"off_throttle"`
	FrontCamber           Float `json:"front_camber"`
	RearCamber            Float `json:"rear_camber"`
	FrontToe              Float `json:"front_toe"`
	RearToe               Float `json:"rear_toe"`
	FrontSuspension       uint8 `json:"front_suspension"`
	RearSuspension        uint8 `json:"rear_suspension"`
	FrontAntiRollBar      uint8 `json:"front_anti_roll_bar"`
	RearAntiRollBar       uint8 `json:"rear_anti_roll_bar"`
	FrontSuspensionHeight uint8 `json:"front_suspension_height"`
	RearSuspensionHeight  uint8 `json:"rear_suspension_height"`
	BrakePressure         uint8 `json:"brake_pressure"`
	BrakeBias             uint8 `json:"brake_bias"`
	FrontTyrePressure     Float `json:"front_tyre_pressure"`
	RearTyrePressure      Float `json:"rear_tyre_pressure"`
	Ballast               uint8 `json:"ballast"`
	FuelLoad              Float `json:"fuel_load"`
}

// SetupPacket carries the setups of all cars
type SetupPacket struct {
	Header `json:"header"`

	Cars [CarSlots]CarSetup `json:"cars"`
}

func decodeCarSetup(buf []byte, off int) (CarSetup, error) {
	r := NewReader(buf)
	s := CarSetup{
		FrontWing:             r.U8(off),
		RearWing:              r.U8(off + 1),
		OnThrottle:            r.U8(off + 2),
		OffThrottle:           r.U8(off + 3),
		FrontCamber:           r.F32(off + 4),
		RearCamber:            r.F32(off + 8),
		FrontToe:              r.F32(off + 12),
		RearToe:               r.F32(off + 16),
		FrontSuspension:       r.U8(off + 20),
		RearSuspension:        r.U8(off + 21),
		FrontAntiRollBar:      r.U8(off + 22),
		RearAntiRollBar:       r.U8(off + 23),
		FrontSuspensionHeight: r.U8(off + 24),
		RearSuspensionHeight:  r.U8(off + 25),
		BrakePressure:         r.U8(off + 26),
		BrakeBias:             r.U8(off + 27),
		FrontTyrePressure:     r.F32(off + 28),
		RearTyrePressure:      r.F32(off + 32),
		Ballast:               r.U8(off + 36),
		FuelLoad:              r.F32(off + 37),
	}
	return s, r.Err()
}

// DecodeSetup decodes a car setups packet
func DecodeSetup(buf []byte, h Header) (*SetupPacket, error) {
	if err := checkSize(buf, TypeSetup, SetupSize); err != nil {
		return nil, err
	}

	p := &SetupPacket{Header: h}
	if err := decodeCars(buf, HeaderSize, carSetupStride, decodeCarSetup, &p.Cars); err != nil {
		return nil, err
	}
	return p, nil
}
