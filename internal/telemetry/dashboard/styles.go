package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

// Pit wall palette on a dark theme
var (
	Primary   = lipgloss.Color("#FF1801") // Race red
	Secondary = lipgloss.Color("#1E88E5")
	Success   = lipgloss.Color("#4CAF50")
	Warning   = lipgloss.Color("#FFB74D")
	Error     = lipgloss.Color("#F44336")

	Text       = lipgloss.Color("#E0E0E0")
	TextBright = lipgloss.Color("#FFFFFF")
	Muted      = lipgloss.Color("#90A4AE")

	PanelBg    = lipgloss.Color("#161B26")
	HeaderBg   = lipgloss.Color("#1C2128")
	BorderDark = lipgloss.Color("#30363D")

	// Tyre temperature bands
	TyreCold = lipgloss.Color("#42A5F5")
	TyreOK   = lipgloss.Color("#66BB6A")
	TyreHot  = lipgloss.Color("#FF7043")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextBright).
			Background(HeaderBg).
			Bold(true).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDark).
			Foreground(Text).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextBright).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// FlagStyle colours a marshal zone or FIA flag
func FlagStyle(f packet.ZoneFlag) lipgloss.Style {
	switch f {
	case packet.FlagGreen:
		return SuccessStyle
	case packet.FlagBlue:
		return InfoStyle
	case packet.FlagYellow:
		return WarningStyle
	case packet.FlagRed:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// TyreTempStyle colours a tyre surface temperature in degrees celsius
func TyreTempStyle(celsius uint16) lipgloss.Style {
	switch {
	case celsius < 80:
		return lipgloss.NewStyle().Foreground(TyreCold).Bold(true)
	case celsius <= 110:
		return lipgloss.NewStyle().Foreground(TyreOK).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(TyreHot).Bold(true)
	}
}
