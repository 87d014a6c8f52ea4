package packet

import (
	"encoding/json"
	"math"
)

// Float is a wire float32. A datagram of the right length can still carry
// NaN or infinities; those encode as JSON null.
type Float float32

// Finite reports whether f is neither NaN nor an infinity.
func (f Float) Finite() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float32(f))
}
