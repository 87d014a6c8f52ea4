package telemetry

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/pitwall/internal/config"
	"github.com/zsiec/pitwall/internal/logger"
	"github.com/zsiec/pitwall/internal/telemetry/packet"
	"github.com/zsiec/pitwall/internal/telemetry/publish"
	"github.com/zsiec/pitwall/internal/telemetry/registry"
	"github.com/zsiec/pitwall/internal/telemetry/testdata"
)

// recordingPublisher keeps everything it is asked to publish
type recordingPublisher struct {
	mu      sync.Mutex
	records []packet.Packet
	closed  bool
}

func (p *recordingPublisher) Publish(ctx context.Context, pkt packet.Packet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, pkt)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) Stats() publish.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return publish.Stats{Published: uint64(len(p.records))}
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

var testSource = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 50), Port: 20778}

var testSessionID = registry.GenerateSessionID(testdata.DefaultSessionUID)

func testTelemetryConfig() *config.TelemetryConfig {
	return &config.TelemetryConfig{
		Listener: config.ListenerConfig{
			ListenAddr: "127.0.0.1",
			Port:       0,
		},
		History: config.HistoryConfig{Capacity: 10},
		Session: config.SessionConfig{
			Timeout: 10 * time.Second,
			TTL:     time.Minute,
		},
	}
}

func newTestManager(t *testing.T) (*Manager, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	m, err := NewManager(testTelemetryConfig(), registry.NewMemoryRegistry(), pub, logger.NewNullLogger())
	require.NoError(t, err)
	return m, pub
}

func feed(t *testing.T, m *Manager, dgram []byte) {
	t.Helper()
	p, err := packet.Decode(dgram)
	require.NoError(t, err)
	m.HandlePacket(context.Background(), testSource, p)
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(testTelemetryConfig(), nil, nil, logger.NewNullLogger())
	assert.Error(t, err)

	cfg := testTelemetryConfig()
	cfg.History.Capacity = 0
	_, err = NewManager(cfg, registry.NewMemoryRegistry(), nil, logger.NewNullLogger())
	assert.Error(t, err)

	m, err := NewManager(testTelemetryConfig(), registry.NewMemoryRegistry(), nil, logger.NewNullLogger())
	require.NoError(t, err)
	assert.IsType(t, publish.NopPublisher{}, m.publisher)
}

func TestManager_HandlePacket(t *testing.T) {
	m, pub := newTestManager(t)
	ctx := context.Background()

	feed(t, m, testdata.New(packet.TypeLap).Frame(10).Lap(0, 1, 2).Bytes())
	feed(t, m, testdata.New(packet.TypeLap).Frame(11).Lap(0, 1, 2).Bytes())
	feed(t, m, testdata.Event("SSTA").Frame(12).Bytes())

	latest, ok := m.Store().Latest(packet.TypeLap)
	require.True(t, ok)
	assert.Equal(t, uint32(11), latest.PacketHeader().FrameID)
	assert.Len(t, m.Store().History(packet.TypeEvent, 10), 1)

	session, err := m.Registry().Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, testSource.String(), session.SourceAddr)
	assert.Equal(t, registry.StatusActive, session.Status)
	assert.Equal(t, uint64(2), session.Packets["lap"])
	assert.Equal(t, uint64(1), session.Packets["event"])
	assert.Equal(t, uint32(12), session.LastFrameID)
	assert.Equal(t, "1.22", session.GameVersion)

	assert.Equal(t, 3, pub.count())
}

func TestManager_SeparateSessions(t *testing.T) {
	m, _ := newTestManager(t)

	feed(t, m, testdata.New(packet.TypeMotion).Bytes())
	feed(t, m, testdata.New(packet.TypeMotion).SessionUID(0x42).Bytes())
	feed(t, m, testdata.New(packet.TypeMotion).SessionUID(0x42).Bytes())

	sessions, err := m.Registry().List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[string]*registry.Session{}
	for _, s := range sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, uint64(1), byID[testSessionID].TotalPackets())
	assert.Equal(t, uint64(2), byID["0000000000000042"].TotalPackets())
}

func TestManager_NewSessionResetsHistory(t *testing.T) {
	m, _ := newTestManager(t)

	feed(t, m, testdata.New(packet.TypeLap).Frame(1).Bytes())
	feed(t, m, testdata.New(packet.TypeLap).Frame(2).Bytes())
	feed(t, m, testdata.New(packet.TypeMotion).Frame(3).Bytes())
	require.Len(t, m.Store().History(packet.TypeLap, 10), 2)

	feed(t, m, testdata.New(packet.TypeLap).SessionUID(0x42).Frame(1).Bytes())

	laps := m.Store().History(packet.TypeLap, 10)
	require.Len(t, laps, 1)
	assert.Equal(t, uint64(0x42), laps[0].PacketHeader().SessionUID)

	_, ok := m.Store().Latest(packet.TypeMotion)
	assert.False(t, ok, "records of the previous session should be gone")

	// same session again keeps accumulating
	feed(t, m, testdata.New(packet.TypeLap).SessionUID(0x42).Frame(2).Bytes())
	assert.Len(t, m.Store().History(packet.TypeLap, 10), 2)
}

func TestManager_ReRegistersRemovedSession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	feed(t, m, testdata.New(packet.TypeSetup).Bytes())
	require.NoError(t, m.Registry().Unregister(ctx, testSessionID))

	feed(t, m, testdata.New(packet.TypeSetup).Bytes())

	session, err := m.Registry().Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), session.Packets["setup"])
}

func TestManager_HandlePacketNil(t *testing.T) {
	m, pub := newTestManager(t)
	m.HandlePacket(context.Background(), testSource, nil)

	assert.Equal(t, 0, pub.count())
	sessions, err := m.Registry().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestManager_SweepSessions(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	feed(t, m, testdata.New(packet.TypeCarStatus).Bytes())
	start := time.Now()

	// Within the timeout nothing changes
	m.now = func() time.Time { return start.Add(5 * time.Second) }
	require.NoError(t, m.SweepSessions(ctx))
	session, err := m.Registry().Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusActive, session.Status)

	m.now = func() time.Time { return start.Add(20 * time.Second) }
	require.NoError(t, m.SweepSessions(ctx))
	session, err = m.Registry().Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusStale, session.Status)

	// A new packet revives the session
	feed(t, m, testdata.New(packet.TypeCarStatus).Bytes())
	session, err = m.Registry().Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusActive, session.Status)

	m.now = func() time.Time { return time.Now().Add(20 * time.Second) }
	require.NoError(t, m.SweepSessions(ctx))

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	require.NoError(t, m.SweepSessions(ctx))
	_, err = m.Registry().Get(ctx, testSessionID)
	assert.ErrorIs(t, err, registry.ErrSessionNotFound)
	assert.False(t, m.isKnown(testSessionID))
}

func TestManager_StartStop(t *testing.T) {
	m, pub := newTestManager(t)

	require.NoError(t, m.Start())
	assert.Error(t, m.Start())

	conn, err := net.DialUDP("udp", nil, m.Listener().Addr().(*net.UDPAddr))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(testdata.New(packet.TypeTelemetry).CarTelemetry(19, 301, 8, 11500, 1, 0).Bytes())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := m.Store().Latest(packet.TypeTelemetry)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	stats := m.GetStats(context.Background())
	assert.True(t, stats.Started)
	assert.Equal(t, uint64(1), stats.Listener.Decoded)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 1, stats.ActiveSessions)
	require.NotNil(t, stats.Publisher)
	assert.Equal(t, uint64(1), stats.Publisher.Published)
	assert.Len(t, stats.History, len(packet.KnownTypes))

	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())
	assert.True(t, pub.closed)
	assert.False(t, m.GetStats(context.Background()).Started)
}

func TestManager_StartFailsOnBusyPort(t *testing.T) {
	busy, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer busy.Close()

	cfg := testTelemetryConfig()
	cfg.Listener.Port = busy.LocalAddr().(*net.UDPAddr).Port

	m, err := NewManager(cfg, registry.NewMemoryRegistry(), nil, logger.NewNullLogger())
	require.NoError(t, err)
	assert.Error(t, m.Start())
	assert.NoError(t, m.Stop())
}
