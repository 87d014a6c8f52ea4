package packet

import "strings"

const (
	// TelemetrySize is the wire size of a car telemetry packet
	TelemetrySize = 1347

	carTelemetryStride = 66
)

// Button is a bit in the telemetry button status field
type Button uint32

const (
	ButtonCross      Button = 0x0001
	ButtonTriangle   Button = 0x0002
	ButtonCircle     Button = 0x0004
	ButtonSquare     Button = 0x0008
	ButtonDpadLeft   Button = 0x0010
	ButtonDpadRight  Button = 0x0020
	ButtonDpadUp     Button = 0x0040
	ButtonDpadDown   Button = 0x0080
	ButtonOptions    Button = 0x0100
	ButtonL1         Button = 0x0200
	ButtonR1         Button = 0x0400
	ButtonL2         Button = 0x0800
	ButtonR2         Button = 0x1000
	ButtonLeftStick  Button = 0x2000
	ButtonRightStick Button = 0x4000
)

var buttonNames = []struct {
	b    Button
	name string
}{
	{ButtonCross, "cross"},
	{ButtonTriangle, "triangle"},
	{ButtonCircle, "circle"},
	{ButtonSquare, "square"},
	{ButtonDpadLeft, "dpad_left"},
	{ButtonDpadRight, "dpad_right"},
	{ButtonDpadUp, "dpad_up"},
	{ButtonDpadDown, "dpad_down"},
	{ButtonOptions, "options"},
	{ButtonL1, "l1"},
	{ButtonR1, "r1"},
	{ButtonL2, "l2"},
	{ButtonR2, "r2"},
	{ButtonLeftStick, "left_stick"},
	{ButtonRightStick, "right_stick"},
}

// Buttons lists the names of the set bits, in bit order
func (b Button) Buttons() []string {
	var out []string
	for _, bn := range buttonNames {
		if b&bn.b != 0 {
			out = append(out, bn.name)
		}
	}
	return out
}

func (b Button) String() string {
	if b == 0 {
		return "none"
	}
	return strings.Join(b.Buttons(), "|")
}

// CarTelemetry is the driver input and sensor state of one car
type CarTelemetry struct {
	Speed                   uint16         `json:"speed"`
	Throttle                Float          `json:"throttle"`
	Steer                   Float          `json:"steer"`
	Brake                   Float          `json:"brake"`
	Clutch                  uint8          `json:"clutch"`
	Gear                    int8           `json:"gear"`
	EngineRPM               uint16         `json:"engine_rpm"`
	DRS                     uint8          `json:"drs"`
	RevLightsPercent        uint8          `json:"rev_lights_percent"`
	BrakesTemperature       Wheels[uint16] `json:"brakes_temperature"`
	TyresSurfaceTemperature Wheels[uint16] `json:"tyres_surface_temperature"`
	TyresInnerTemperature   Wheels[uint16] `json:"tyres_inner_temperature"`
	EngineTemperature       uint16         `json:"engine_temperature"`
	TyresPressure           Wheels[Float]  `json:"tyres_pressure"`
	SurfaceType             Wheels[uint8]  `json:"surface_type"`
}

// TelemetryPacket carries telemetry for all cars plus the player's buttons
type TelemetryPacket struct {
	Header `json:"header"`

	Cars         [CarSlots]CarTelemetry `json:"cars"`
	ButtonStatus Button                 `json:"button_status"`
}

// Pressed reports whether every bit of b is set in the button status
func (p *TelemetryPacket) Pressed(b Button) bool {
	return b != 0 && p.ButtonStatus&b == b
}

// PlayerCar returns the telemetry entry of the player's car
func (p *TelemetryPacket) PlayerCar() (CarTelemetry, bool) {
	if int(p.PlayerCarIndex) >= CarSlots {
		return CarTelemetry{}, false
	}
	return p.Cars[p.PlayerCarIndex], true
}

func decodeCarTelemetry(buf []byte, off int) (CarTelemetry, error) {
	r := NewReader(buf)
	c := CarTelemetry{
		Speed:             r.U16(off),
		Throttle:          r.F32(off + 2),
		Steer:             r.F32(off + 6),
		Brake:             r.F32(off + 10),
		Clutch:            r.U8(off + 14),
		Gear:              r.I8(off + 15),
		EngineRPM:         r.U16(off + 16),
		DRS:               r.U8(off + 18),
		RevLightsPercent:  r.U8(off + 19),
		EngineTemperature: r.U16(off + 44),
	}
	if err := r.Err(); err != nil {
		return c, err
	}

	var err error
	if c.BrakesTemperature, err = WheelsU16(buf, off+20); err != nil {
		return c, err
	}
	if c.TyresSurfaceTemperature, err = WheelsU16(buf, off+28); err != nil {
		return c, err
	}
	if c.TyresInnerTemperature, err = WheelsU16(buf, off+36); err != nil {
		return c, err
	}
	if c.TyresPressure, err = WheelsF32(buf, off+46); err != nil {
		return c, err
	}
	if c.SurfaceType, err = WheelsU8(buf, off+62); err != nil {
		return c, err
	}
	return c, nil
}

// DecodeTelemetry decodes a car telemetry packet
func DecodeTelemetry(buf []byte, h Header) (*TelemetryPacket, error) {
	if err := checkSize(buf, TypeTelemetry, TelemetrySize); err != nil {
		return nil, err
	}

	p := &TelemetryPacket{Header: h}
	if err := decodeCars(buf, HeaderSize, carTelemetryStride, decodeCarTelemetry, &p.Cars); err != nil {
		return nil, err
	}

	r := NewReader(buf)
	p.ButtonStatus = Button(r.U32(HeaderSize + CarSlots*carTelemetryStride))
	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
