package packet

import "sort"

const (
	// LapSize is the wire size of a lap data packet
	LapSize = 843

	lapDataStride = 41
)

// LapData is the timing state of one car
type LapData struct {
	LastLapTime       Float `json:"last_lap_time"`
	CurrentLapTime    Float `json:"current_lap_time"`
	BestLapTime       Float `json:"best_lap_time"`
	Sector1Time       Float `json:"sector1_time"`
	Sector2Time       Float `json:"sector2_time"`
	LapDistance       Float `json:"lap_distance"`
	TotalDistance     Float `json:"total_distance"`
	SafetyCarDelta    Float `json:"safety_car_delta"`
	CarPosition       uint8 `json:"car_position"`
	CurrentLapNum     uint8 `json:"current_lap_num"`
	PitStatus         uint8 `json:"pit_status"`
	Sector            uint8 `json:"sector"`
	CurrentLapInvalid uint8 `json:"current_lap_invalid"`
	Penalties         uint8 `json:"penalties"`
	GridPosition      uint8 `json:"grid_position"`
	DriverStatus      uint8 `json:"driver_status"`
	ResultStatus      uint8 `json:"result_status"`
}

// LapPacket carries lap timing for all cars
type LapPacket struct {
	Header `json:"header"`

	Cars [CarSlots]LapData `json:"cars"`
}

// Standing pairs a car slot with its lap data
type Standing struct {
	CarIndex int     `json:"car_index"`
	Lap      LapData `json:"lap"`
}

// Standings returns the cars with a race position, ordered by position.
// Slots with position 0 are unused and left out.
func (p *LapPacket) Standings() []Standing {
	out := make([]Standing, 0, CarSlots)
	for i, c := range p.Cars {
		if c.CarPosition == 0 {
			continue
		}
		out = append(out, Standing{CarIndex: i, Lap: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Lap.CarPosition < out[j].Lap.CarPosition
	})
	return out
}

func decodeLapData(buf []byte, off int) (LapData, error) {
	r := NewReader(buf)
	l := LapData{
		LastLapTime:       r.F32(off),
		CurrentLapTime:    r.F32(off + 4),
		BestLapTime:       r.F32(off + 8),
		Sector1Time:       r.F32(off + 12),
		Sector2Time:       r.F32(off + 16),
		LapDistance:       r.F32(off + 20),
		TotalDistance:     r.F32(off + 24),
		SafetyCarDelta:    r.F32(off + 28),
		CarPosition:       r.U8(off + 32),
		CurrentLapNum:     r.U8(off + 33),
		PitStatus:         r.U8(off + 34),
		Sector:            r.U8(off + 35),
		CurrentLapInvalid: r.U8(off + 36),
		Penalties:         r.U8(off + 37),
		GridPosition:      r.U8(off + 38),
		DriverStatus:      r.U8(off + 39),
		ResultStatus:      r.U8(off + 40),
	}
	return l, r.Err()
}

// DecodeLap decodes a lap data packet
func DecodeLap(buf []byte, h Header) (*LapPacket, error) {
	if err := checkSize(buf, TypeLap, LapSize); err != nil {
		return nil, err
	}

	p := &LapPacket{Header: h}
	if err := decodeCars(buf, HeaderSize, lapDataStride, decodeLapData, &p.Cars); err != nil {
		return nil, err
	}
	return p, nil
}
