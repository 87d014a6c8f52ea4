// Package dashboard renders live telemetry in the terminal. The model polls
// the history store on a fixed interval and never blocks the listener.
package dashboard

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/telemetry/listener"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

const (
	defaultRefresh    = 100 * time.Millisecond
	defaultEventLines = 8
)

// Source is the read side of the history store
type Source interface {
	Latest(t packet.PacketType) (packet.Packet, bool)
	History(t packet.PacketType, n int) []packet.Packet
}

// snapshot is everything one frame of the dashboard shows
type snapshot struct {
	session      *packet.SessionPacket
	lap          *packet.LapPacket
	participants *packet.ParticipantsPacket
	telemetry    *packet.TelemetryPacket
	status       *packet.CarStatusPacket
	events       []*packet.EventPacket
	listener     listener.Stats
	taken        time.Time
}

// Model is the bubbletea model of the dashboard
type Model struct {
	source     Source
	stats      func() listener.Stats
	refresh    time.Duration
	eventLines int

	snap     snapshot
	width    int
	height   int
	quitting bool
}

// Messages
type tickMsg time.Time
type snapshotMsg snapshot

// NewModel creates a dashboard over source. stats may be nil when no
// listener runs in process.
func NewModel(source Source, stats func() listener.Stats, cfg *config.DashboardConfig) *Model {
	m := &Model{
		source:     source,
		stats:      stats,
		refresh:    defaultRefresh,
		eventLines: defaultEventLines,
	}
	if cfg != nil {
		if cfg.RefreshInterval > 0 {
			m.refresh = cfg.RefreshInterval
		}
		if cfg.EventLines > 0 {
			m.eventLines = cfg.EventLines
		}
	}
	return m
}

// Run starts the dashboard on the terminal until the user quits or ctx is
// cancelled
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickEvery(m.refresh),
		m.fetch(),
	)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(
			tickEvery(m.refresh),
			m.fetch(),
		)

	case snapshotMsg:
		m.snap = snapshot(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return "Leaving the pit wall...\n"
	}
	return m.render()
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetch reads the newest records of every panel
func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		s := snapshot{
			session:      latest[*packet.SessionPacket](m.source, packet.TypeSession),
			lap:          latest[*packet.LapPacket](m.source, packet.TypeLap),
			participants: latest[*packet.ParticipantsPacket](m.source, packet.TypeParticipants),
			telemetry:    latest[*packet.TelemetryPacket](m.source, packet.TypeTelemetry),
			status:       latest[*packet.CarStatusPacket](m.source, packet.TypeCarStatus),
			taken:        time.Now(),
		}

		history := m.source.History(packet.TypeEvent, m.eventLines)
		for i := len(history) - 1; i >= 0; i-- {
			if ev, ok := history[i].(*packet.EventPacket); ok {
				s.events = append(s.events, ev)
			}
		}

		if m.stats != nil {
			s.listener = m.stats()
		}
		return snapshotMsg(s)
	}
}

func latest[T packet.Packet](src Source, t packet.PacketType) T {
	var zero T
	p, ok := src.Latest(t)
	if !ok {
		return zero
	}
	v, ok := p.(T)
	if !ok {
		return zero
	}
	return v
}
