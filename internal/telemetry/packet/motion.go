package packet

const (
	// MotionSize is the wire size of a motion packet
	MotionSize = 1343

	carMotionStride = 60
)

// Vec3 is a three component vector
type Vec3 struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

// Dir3 is a direction packed as normalised int16 components
type Dir3 struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// Vec3 unpacks the direction to floats in -1..1
func (d Dir3) Vec3() Vec3 {
	return Vec3{X: Float(Normalize(d.X)), Y: Float(Normalize(d.Y)), Z: Float(Normalize(d.Z))}
}

// Normalize converts a packed direction component to -1..1
func Normalize(v int16) float32 {
	return float32(v) / 32767.0
}

// CarMotion is the physics state of one car
type CarMotion struct {
	WorldPosition      Vec3    `json:"world_position"`
	WorldVelocity      Vec3    `json:"world_velocity"`
	WorldForwardDir    Dir3    `json:"world_forward_dir"`
	WorldRightDir      Dir3    `json:"world_right_dir"`
	GForceLateral      Float `json:"g_force_lateral"`
	GForceLongitudinal Float `json:"g_force_longitudinal"`
	GForceVertical     Float `json:"g_force_vertical"`
	Yaw                Float `json:"yaw"`
	Pitch              Float `json:"pitch"`
	Roll               Float `json:"roll"`
}

// MotionPacket carries physics data for all cars plus extra data for the
// player's car, intended for motion platforms.
type MotionPacket struct {
	Header `json:"header"`

	Cars [CarSlots]CarMotion `json:"cars"`

	// Player car only
	SuspensionPosition     Wheels[Float] `json:"suspension_position"`
	SuspensionVelocity     Wheels[Float] `json:"suspension_velocity"`
	SuspensionAcceleration Wheels[Float] `json:"suspension_acceleration"`
	WheelSpeed             Wheels[Float] `json:"wheel_speed"`
	WheelSlip              Wheels[Float] `json:"wheel_slip"`
	LocalVelocity          Vec3            `json:"local_velocity"`
	AngularVelocity        Vec3            `json:"angular_velocity"`
	AngularAcceleration    Vec3            `json:"angular_acceleration"`
	FrontWheelsAngle       Float         `json:"front_wheels_angle"`
}

// PlayerCar returns the motion entry of the player's car
func (p *MotionPacket) PlayerCar() (CarMotion, bool) {
	if int(p.PlayerCarIndex) >= CarSlots {
		return CarMotion{}, false
	}
	return p.Cars[p.PlayerCarIndex], true
}

func readVec3(r *Reader, off int) Vec3 {
	return Vec3{X: r.F32(off), Y: r.F32(off + 4), Z: r.F32(off + 8)}
}

func readDir3(r *Reader, off int) Dir3 {
	return Dir3{X: r.I16(off), Y: r.I16(off + 2), Z: r.I16(off + 4)}
}

func decodeCarMotion(buf []byte, off int) (CarMotion, error) {
	r := NewReader(buf)
	c := CarMotion{
		WorldPosition:      readVec3(r, off),
		WorldVelocity:      readVec3(r, off+12),
		WorldForwardDir:    readDir3(r, off+24),
		WorldRightDir:      readDir3(r, off+30),
		GForceLateral:      r.F32(off + 36),
		GForceLongitudinal: r.F32(off + 40),
		GForceVertical:     r.F32(off + 44),
		Yaw:                r.F32(off + 48),
		Pitch:              r.F32(off + 52),
		Roll:               r.F32(off + 56),
	}
	return c, r.Err()
}

// DecodeMotion decodes a motion packet
func DecodeMotion(buf []byte, h Header) (*MotionPacket, error) {
	if err := checkSize(buf, TypeMotion, MotionSize); err != nil {
		return nil, err
	}

	p := &MotionPacket{Header: h}
	if err := decodeCars(buf, HeaderSize, carMotionStride, decodeCarMotion, &p.Cars); err != nil {
		return nil, err
	}

	player := HeaderSize + CarSlots*carMotionStride
	var err error
	wheelFields := []*Wheels[Float]{
		&p.SuspensionPosition,
		&p.SuspensionVelocity,
		&p.SuspensionAcceleration,
		&p.WheelSpeed,
		&p.WheelSlip,
	}
	for i, dst := range wheelFields {
		if *dst, err = WheelsF32(buf, player+i*16); err != nil {
			return nil, err
		}
	}

	off := player + len(wheelFields)*16
	r := NewReader(buf)
	p.LocalVelocity = readVec3(r, off)
	p.AngularVelocity = readVec3(r, off+12)
	p.AngularAcceleration = readVec3(r, off+24)
	p.FrontWheelsAngle = r.F32(off + 36)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
