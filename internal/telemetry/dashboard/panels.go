package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/reference"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
)

const (
	// Layouts narrower than this stack every panel
	wideLayout = 100

	barWidth = 20

	// ERS store capacity in joules
	ersCapacity = 4_000_000
)

func (m *Model) render() string {
	width := m.width
	if width == 0 {
		width = 120
	}

	header := HeaderStyle.Width(width - 2).Render(m.headerLine())

	if width < wideLayout {
		panelWidth := width - 2
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.sessionPanel(panelWidth),
			m.carPanel(panelWidth),
			m.standingsPanel(panelWidth),
			m.eventsPanel(panelWidth),
			m.listenerPanel(panelWidth),
		)
	}

	half := (width - 4) / 2
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.sessionPanel(half),
		m.carPanel(half),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.standingsPanel(half),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.eventsPanel(half), " ", m.listenerPanel(half))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		bottom,
	)
}

func (m *Model) headerLine() string {
	title := "PITWALL F1 2019 TELEMETRY"
	var h *packet.Header
	switch {
	case m.snap.session != nil:
		h = &m.snap.session.Header
	case m.snap.telemetry != nil:
		h = &m.snap.telemetry.Header
	case m.snap.lap != nil:
		h = &m.snap.lap.Header
	}
	if h == nil {
		return title + "  " + MutedStyle.Render("waiting for telemetry")
	}
	return fmt.Sprintf("%s  session %s  v%s  frame %d",
		title, registry.GenerateSessionID(h.SessionUID), h.GameVersion(), h.FrameID)
}

func panel(title string, width int, lines ...string) string {
	body := append([]string{PanelTitleStyle.Render(title)}, lines...)
	return PanelStyle.Width(width - 2).Render(strings.Join(body, "\n"))
}

func row(label, value string) string {
	return LabelStyle.Render(fmt.Sprintf("%-12s", label)) + ValueStyle.Render(value)
}

func (m *Model) sessionPanel(width int) string {
	s := m.snap.session
	if s == nil {
		return panel("SESSION", width, MutedStyle.Render("Waiting for session data"))
	}

	lines := []string{
		row("Track", reference.TrackName(s.TrackID)),
		row("Session", reference.SessionTypeName(s.SessionType)),
		row("Weather", reference.WeatherName(s.Weather)),
		row("Temps", fmt.Sprintf("track %d°C  air %d°C", s.TrackTemperature, s.AirTemperature)),
		row("Time left", formatClock(s.SessionTimeLeft)),
	}
	if s.TotalLaps > 0 {
		lines = append(lines, row("Laps", fmt.Sprintf("%d", s.TotalLaps)))
	}
	if s.SafetyCarStatus > 0 {
		lines = append(lines, WarningStyle.Render(safetyCarLabel(s.SafetyCarStatus)))
	}
	if zones := s.ActiveZones(); len(zones) > 0 {
		lines = append(lines, row("Zones", renderZones(zones)))
	}
	return panel("SESSION", width, lines...)
}

func (m *Model) carPanel(width int) string {
	t := m.snap.telemetry
	if t == nil {
		return panel("PLAYER CAR", width, MutedStyle.Render("Waiting for car telemetry"))
	}
	car, ok := t.PlayerCar()
	if !ok {
		return panel("PLAYER CAR", width, MutedStyle.Render("Spectating"))
	}

	drs := MutedStyle.Render("closed")
	if car.DRS == 1 {
		drs = SuccessStyle.Render("OPEN")
	}

	lines := []string{
		row("Speed", fmt.Sprintf("%d km/h", car.Speed)),
		row("Gear", gearLabel(car.Gear)) + "   " + LabelStyle.Render("RPM ") + ValueStyle.Render(fmt.Sprintf("%d", car.EngineRPM)),
		row("Throttle", SuccessStyle.Render(bar(car.Throttle, barWidth))),
		row("Brake", ErrorStyle.Render(bar(car.Brake, barWidth))),
		row("DRS", drs),
		"",
		LabelStyle.Render("Tyre surface °C"),
	}
	lines = append(lines, renderTyres(car.TyresSurfaceTemperature)...)

	if m.snap.status != nil {
		if st, ok := m.snap.status.PlayerCar(); ok {
			lines = append(lines,
				"",
				row("Compound", reference.VisualCompoundName(st.VisualTyreCompound)+" ("+reference.ActualCompoundName(st.ActualTyreCompound)+")"),
				row("Fuel", fmt.Sprintf("%.1f kg  %+.1f laps", st.FuelInTank, st.FuelRemainingLaps)),
				row("ERS", bar(st.ERSStoreEnergy/ersCapacity, barWidth)),
			)
		}
	}
	return panel("PLAYER CAR", width, lines...)
}

func (m *Model) standingsPanel(width int) string {
	lap := m.snap.lap
	if lap == nil {
		return panel("STANDINGS", width, MutedStyle.Render("Waiting for lap data"))
	}

	standings := lap.Standings()
	if len(standings) == 0 {
		return panel("STANDINGS", width, MutedStyle.Render("No classified cars"))
	}

	lines := []string{LabelStyle.Render(fmt.Sprintf("%-3s %-16s %4s %9s %9s  %s", "P", "Driver", "Lap", "Last", "Best", "Status"))}
	lines = append(lines, lo.Map(standings, func(s packet.Standing, _ int) string {
		name := m.driverName(s.CarIndex)
		line := fmt.Sprintf("%-3d %-16s %4d %9s %9s  %s",
			s.Lap.CarPosition,
			truncate(name, 16),
			s.Lap.CurrentLapNum,
			formatLapTime(s.Lap.LastLapTime),
			formatLapTime(s.Lap.BestLapTime),
			standingStatus(s.Lap),
		)
		if lap.PlayerCarIndex == uint8(s.CarIndex) {
			return InfoStyle.Render(line)
		}
		return line
	})...)
	return panel("STANDINGS", width, lines...)
}

func (m *Model) eventsPanel(width int) string {
	if len(m.snap.events) == 0 {
		return panel("EVENTS", width, MutedStyle.Render("No events yet"))
	}
	lines := lo.Map(m.snap.events, func(ev *packet.EventPacket, _ int) string {
		return m.eventLine(ev)
	})
	return panel("EVENTS", width, lines...)
}

func (m *Model) eventLine(ev *packet.EventPacket) string {
	line := fmt.Sprintf("%8s  %s", formatLapTime(ev.SessionTime), ev.Kind)
	if ev.CarIndex != nil {
		line += "  " + m.driverName(int(*ev.CarIndex))
	}
	if ev.LapTime != nil {
		line += "  " + formatLapTime(*ev.LapTime)
	}
	return line
}

func (m *Model) listenerPanel(width int) string {
	st := m.snap.listener
	if st.InstanceID == "" {
		return panel("LISTENER", width, MutedStyle.Render("No local listener"))
	}

	state := ErrorStyle.Render("unbound")
	if st.Bound {
		state = SuccessStyle.Render("bound " + st.Addr)
	}

	lines := []string{
		row("Socket", state),
		row("Received", fmt.Sprintf("%d (%s)", st.Received, formatBytes(st.Bytes))),
		row("Decoded", fmt.Sprintf("%d", st.Decoded)),
		row("Ignored", fmt.Sprintf("%d", st.Ignored)),
		row("Rate limited", fmt.Sprintf("%d", st.RateLimited)),
		row("Sources", fmt.Sprintf("%d", st.Sources)),
	}
	if !st.LastDatagram.IsZero() && !m.snap.taken.IsZero() {
		age := m.snap.taken.Sub(st.LastDatagram)
		if age > 0 {
			lines = append(lines, row("Last packet", fmt.Sprintf("%.1fs ago", age.Seconds())))
		}
	}
	return panel("LISTENER", width, lines...)
}

// driverName prefers the participant's own name, which human players set
func (m *Model) driverName(carIndex int) string {
	p := m.snap.participants
	if p == nil || carIndex < 0 || carIndex >= packet.CarSlots {
		return fmt.Sprintf("Car %d", carIndex)
	}
	c := p.Cars[carIndex]
	if name := c.DisplayName(); name != "" {
		return name
	}
	if name := reference.DriverName(c.DriverID); name != reference.Unknown {
		return name
	}
	return fmt.Sprintf("Car %d", carIndex)
}

func standingStatus(l packet.LapData) string {
	if l.PitStatus > 0 {
		return WarningStyle.Render(reference.PitStatusName(l.PitStatus))
	}
	if l.ResultStatus > 2 {
		return reference.ResultStatusName(l.ResultStatus)
	}
	return reference.DriverStatusName(l.DriverStatus)
}

func safetyCarLabel(status uint8) string {
	switch status {
	case 1:
		return "SAFETY CAR"
	case 2:
		return "VIRTUAL SAFETY CAR"
	default:
		return "SAFETY CAR (unknown)"
	}
}

func renderZones(zones []packet.MarshalZone) string {
	var b strings.Builder
	for _, z := range zones {
		b.WriteString(FlagStyle(z.Flag).Render("■"))
	}
	return b.String()
}

// renderTyres lays the wire-order wheels out as seen from above
func renderTyres(temps packet.Wheels[uint16]) []string {
	cell := func(i int) string {
		return TyreTempStyle(temps[i]).Render(fmt.Sprintf("%4d", temps[i]))
	}
	return []string{
		"  FL " + cell(packet.FrontLeft) + "   FR " + cell(packet.FrontRight),
		"  RL " + cell(packet.RearLeft) + "   RR " + cell(packet.RearRight),
	}
}
