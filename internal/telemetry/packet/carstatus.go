package packet

const (
	// CarStatusSize is the wire size of a car status packet
	CarStatusSize = 1143

	carStatusStride = 56
)

// CarStatus is the mechanical state of one car
type CarStatus struct {
	TractionControl         uint8         `json:"traction_control"`
	AntiLockBrakes          uint8         `json:"anti_lock_brakes"`
	FuelMix                 uint8         `json:"fuel_mix"`
	FrontBrakeBias          uint8         `json:"front_brake_bias"`
	PitLimiterStatus        uint8         `json:"pit_limiter_status"`
	FuelInTank              Float         `json:"fuel_in_tank"`
	FuelCapacity            Float         `json:"fuel_capacity"`
	FuelRemainingLaps       Float         `json:"fuel_remaining_laps"`
	MaxRPM                  uint16        `json:"max_rpm"`
	IdleRPM                 uint16        `json:"idle_rpm"`
	MaxGears                uint8         `json:"max_gears"`
	DRSAllowed              int8          `json:"drs_allowed"`
	TyresWear               Wheels[uint8] `json:"tyres_wear"`
	ActualTyreCompound      uint8         `json:"actual_tyre_compound"`
	VisualTyreCompound      uint8         `json:"visual_tyre_compound"`
	TyresDamage             Wheels[uint8] `json:"tyres_damage"`
	FrontLeftWingDamage     uint8         `json:"front_left_wing_damage"`
	FrontRightWingDamage    uint8         `json:"front_right_wing_damage"`
	RearWingDamage          uint8         `json:"rear_wing_damage"`
	EngineDamage            uint8         `json:"engine_damage"`
	GearBoxDamage           uint8         `json:"gear_box_damage"`
	VehicleFIAFlags         ZoneFlag      `json:"vehicle_fia_flags"`
	ERSStoreEnergy          Float         `json:"ers_store_energy"`
	ERSDeployMode           uint8         `json:"ers_deploy_mode"`
	ERSHarvestedThisLapMGUK Float         `json:"ers_harvested_this_lap_mguk"`
	ERSHarvestedThisLapMGUH Float         `json:"ers_harvested_this_lap_mguh"`
	ERSDeployedThisLap      Float         `json:"ers_deployed_this_lap"`
}

// CarStatusPacket carries the status of all cars
type CarStatusPacket struct {
	Header `json:"header"`

	Cars [CarSlots]CarStatus `json:"cars"`
}

// PlayerCar returns the status entry of the player's car
func (p *CarStatusPacket) PlayerCar() (CarStatus, bool) {
	if int(p.PlayerCarIndex) >= CarSlots {
		return CarStatus{}, false
	}
	return p.Cars[p.PlayerCarIndex], true
}

func decodeCarStatus(buf []byte, off int) (CarStatus, error) {
	r := NewReader(buf)
	c := CarStatus{
		TractionControl:         r.U8(off),
		AntiLockBrakes:          r.U8(off + 1),
		FuelMix:                 r.U8(off + 2),
		FrontBrakeBias:          r.U8(off + 3),
		PitLimiterStatus:        r.U8(off + 4),
		FuelInTank:              r.F32(off + 5),
		FuelCapacity:            r.F32(off + 9),
		FuelRemainingLaps:       r.F32(off + 13),
		MaxRPM:                  r.U16(off + 17),
		IdleRPM:                 r.U16(off + 19),
		MaxGears:                r.U8(off + 21),
		DRSAllowed:              r.I8(off + 22),
		ActualTyreCompound:      r.U8(off + 27),
		VisualTyreCompound:      r.U8(off + 28),
		FrontLeftWingDamage:     r.U8(off + 33),
		FrontRightWingDamage:    r.U8(off + 34),
		RearWingDamage:          r.U8(off + 35),
		EngineDamage:            r.U8(off + 36),
		GearBoxDamage:           r.U8(off + 37),
		VehicleFIAFlags:         flagFromWire(r.I8(off + 38)),
		ERSStoreEnergy:          r.F32(off + 39),
		ERSDeployMode:           r.U8(off + 43),
		ERSHarvestedThisLapMGUK: r.F32(off + 44),
		ERSHarvestedThisLapMGUH: r.F32(off + 48),
		ERSDeployedThisLap:      r.F32(off + 52),
	}
	if err := r.Err(); err != nil {
		return c, err
	}

	var err error
	if c.TyresWear, err = WheelsU8(buf, off+23); err != nil {
		return c, err
	}
	if c.TyresDamage, err = WheelsU8(buf, off+29); err != nil {
		return c, err
	}
	return c, nil
}

// DecodeCarStatus decodes a car status packet
func DecodeCarStatus(buf []byte, h Header) (*CarStatusPacket, error) {
	if err := checkSize(buf, TypeCarStatus, CarStatusSize); err != nil {
		return nil, err
	}

	p := &CarStatusPacket{Header: h}
	if err := decodeCars(buf, HeaderSize, carStatusStride, decodeCarStatus, &p.Cars); err != nil {
		return nil, err
	}
	return p, nil
}
