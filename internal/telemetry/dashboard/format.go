package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// formatLapTime renders seconds as m:ss.mmm; zero means no time set
func formatLapTime(seconds packet.Float) string {
	if !seconds.Finite() || seconds <= 0 {
		return "--"
	}
	ms := int64(math.Round(float64(seconds) * 1000))
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// formatClock renders whole seconds as mm:ss, hours included when needed
func formatClock(seconds uint16) string {
	h := seconds / 3600
	mm := (seconds % 3600) / 60
	ss := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}

func gearLabel(gear int8) string {
	switch {
	case gear < 0:
		return "R"
	case gear == 0:
		return "N"
	default:
		return fmt.Sprintf("%d", gear)
	}
}

// bar renders a 0..1 fraction as a fixed width bar
func bar(fraction packet.Float, width int) string {
	if math.IsNaN(float64(fraction)) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Round(float64(fraction) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatBytes(bytes uint64) string {
	switch {
	case bytes >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%d B", bytes)
}
