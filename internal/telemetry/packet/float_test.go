package packet

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Float
		want string
	}{
		{"finite", 87.345, "87.345"},
		{"zero", 0, "0"},
		{"negative", -1.5, "-1.5"},
		{"nan", Float(math.NaN()), "null"},
		{"positive infinity", Float(math.Inf(1)), "null"},
		{"negative infinity", Float(math.Inf(-1)), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))
			assert.Equal(t, tt.want != "null", tt.in.Finite())
		})
	}
}

func TestFloat_NonFiniteFieldsInRecord(t *testing.T) {
	buf := datagram(TypeLap, LapSize).
		f32(HeaderSize, float32(math.NaN())).
		f32(HeaderSize+4, float32(math.Inf(1))).
		bytes()

	p, err := Decode(buf)
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_lap_time":null`)
	assert.Contains(t, string(raw), `"current_lap_time":null`)
}
