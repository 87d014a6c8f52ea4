package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookups(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"first track", TrackName(0), "Melbourne"},
		{"last track", TrackName(24), "Suzuka Short"},
		{"unknown track marker", TrackName(-1), Unknown},
		{"track out of range", TrackName(25), Unknown},
		{"team", TeamName(1), "Ferrari"},
		{"team gap", TeamName(20), Unknown},
		{"driver", DriverName(7), "Lewis Hamilton"},
		{"human driver", DriverName(255), Unknown},
		{"nationality", NationalityName(10), "British"},
		{"nationality zero", NationalityName(0), Unknown},
		{"race", SessionTypeName(10), "Race"},
		{"time trial", SessionTypeName(12), "Time Trial"},
		{"weather", WeatherName(5), "Storm"},
		{"formula", FormulaName(2), "F2"},
		{"actual compound", ActualCompoundName(16), "C5"},
		{"visual compound", VisualCompoundName(16), "Soft"},
		{"compound gap", ActualCompoundName(0), Unknown},
		{"driver status", DriverStatusName(1), "Flying Lap"},
		{"result status", ResultStatusName(6), "Retired"},
		{"pit status", PitStatusName(2), "In Pit Area"},
		{"surface", SurfaceName(4), "Gravel"},
		{"surface out of range", SurfaceName(12), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestTrackTableIsContiguous(t *testing.T) {
	for id := int8(0); id <= 24; id++ {
		assert.NotEqual(t, Unknown, TrackName(id), "track %d", id)
	}
}
