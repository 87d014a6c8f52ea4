// Package reference holds the static lookup tables of the 2019 telemetry
// format. Every lookup falls back to Unknown for ids outside its table.
package reference

// Unknown is returned for ids missing from a table
const Unknown = "Unknown"

func lookup[K comparable](table map[K]string, id K) string {
	if name, ok := table[id]; ok {
		return name
	}
	return Unknown
}

var tracks = map[int8]string{
	0:  "Melbourne",
	1:  "Paul Ricard",
	2:  "Shanghai",
	3:  "Sakhir (Bahrain)",
	4:  "Catalunya",
	5:  "Monaco",
	6:  "Montreal",
	7:  "Silverstone",
	8:  "Hockenheim",
	9:  "Hungaroring",
	10: "Spa",
	11: "Monza",
	12: "Singapore",
	13: "Suzuka",
	14: "Abu Dhabi",
	15: "Texas",
	16: "Brazil",
	17: "Austria",
	18: "Sochi",
	19: "Mexico",
	20: "Baku (Azerbaijan)",
	21: "Sakhir Short",
	22: "Silverstone Short",
	23: "Texas Short",
	24: "Suzuka Short",
}

// TrackName returns the circuit name; the game sends -1 for an unknown track
func TrackName(id int8) string {
	return lookup(tracks, id)
}

var sessionTypes = map[uint8]string{
	0:  "Unknown",
	1:  "Practice 1",
	2:  "Practice 2",
	3:  "Practice 3",
	4:  "Short Practice",
	5:  "Qualifying 1",
	6:  "Qualifying 2",
	7:  "Qualifying 3",
	8:  "Short Qualifying",
	9:  "One-Shot Qualifying",
	10: "Race",
	11: "Race 2",
	12: "Time Trial",
}

// SessionTypeName returns the session type name
func SessionTypeName(id uint8) string {
	return lookup(sessionTypes, id)
}

var weather = map[uint8]string{
	0: "Clear",
	1: "Light Cloud",
	2: "Overcast",
	3: "Light Rain",
	4: "Heavy Rain",
	5: "Storm",
}

// WeatherName returns the weather condition name
func WeatherName(id uint8) string {
	return lookup(weather, id)
}

var formulas = map[uint8]string{
	0: "F1 Modern",
	1: "F1 Classic",
	2: "F2",
	3: "F1 Generic",
}

// FormulaName returns the car formula name
func FormulaName(id uint8) string {
	return lookup(formulas, id)
}

var actualCompounds = map[uint8]string{
	7:  "Inter",
	8:  "Wet",
	9:  "Dry",
	10: "Wet",
	11: "Super Soft",
	12: "Soft",
	13: "Medium",
	14: "Hard",
	15: "Wet",
	16: "C5",
	17: "C4",
	18: "C3",
	19: "C2",
	20: "C1",
}

// ActualCompoundName returns the name of the tyre compound fitted
func ActualCompoundName(id uint8) string {
	return lookup(actualCompounds, id)
}

var visualCompounds = map[uint8]string{
	7:  "Inter",
	8:  "Wet",
	9:  "Dry",
	10: "Wet",
	15: "Wet",
	16: "Soft",
	17: "Medium",
	18: "Hard",
	19: "Super Soft",
	20: "Soft",
	21: "Medium",
	22: "Hard",
}

// VisualCompoundName returns the compound as shown on the sidewall
func VisualCompoundName(id uint8) string {
	return lookup(visualCompounds, id)
}

var driverStatuses = map[uint8]string{
	0: "In Garage",
	1: "Flying Lap",
	2: "In Lap",
	3: "Out Lap",
	4: "On Track",
}

// DriverStatusName returns the driver status name
func DriverStatusName(id uint8) string {
	return lookup(driverStatuses, id)
}

var resultStatuses = map[uint8]string{
	0: "Invalid",
	1: "Inactive",
	2: "Active",
	3: "Finished",
	4: "Disqualified",
	5: "Not Classified",
	6: "Retired",
}

// ResultStatusName returns the classification status name
func ResultStatusName(id uint8) string {
	return lookup(resultStatuses, id)
}

var pitStatuses = map[uint8]string{
	0: "None",
	1: "Pitting",
	2: "In Pit Area",
}

// PitStatusName returns the pit status name
func PitStatusName(id uint8) string {
	return lookup(pitStatuses, id)
}

var surfaces = map[uint8]string{
	0:  "Tarmac",
	1:  "Rumble Strip",
	2:  "Concrete",
	3:  "Rock",
	4:  "Gravel",
	5:  "Mud",
	6:  "Sand",
	7:  "Grass",
	8:  "Water",
	9:  "Cobblestone",
	10: "Metal",
	11: "Ridged",
}

// SurfaceName returns the driving surface under a wheel
func SurfaceName(id uint8) string {
	return lookup(surfaces, id)
}
