package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/pitwall/internal/telemetry/packet"
)

func TestRedisRegistry_Keys(t *testing.T) {
	mr, client, reg := setupTestRedis(t)
	ctx := context.Background()

	session := NewSession(testHeader(0xDEADBEEFCAFEF00D, packet.TypeMotion, 1), "10.0.0.1:1")
	require.NoError(t, reg.Register(ctx, session))

	key := "pitwall:sessions:deadbeefcafef00d"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))

	members, err := client.SMembers(ctx, "pitwall:sessions:active").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"deadbeefcafef00d"}, members)

	// Full 64-bit uid survives the JSON round trip
	got, err := reg.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEFCAFEF00D), got.SessionUID)
}

func TestRedisRegistry_ObserveRefreshesTTL(t *testing.T) {
	mr, _, reg := setupTestRedis(t)
	ctx := context.Background()

	session := NewSession(testHeader(5, packet.TypeMotion, 1), "10.0.0.1:1")
	require.NoError(t, reg.Register(ctx, session))

	mr.FastForward(4 * time.Minute)
	require.NoError(t, reg.Observe(ctx, session.ID, testHeader(5, packet.TypeMotion, 2)))
	assert.Equal(t, 5*time.Minute, mr.TTL("pitwall:sessions:"+session.ID))
}

func TestRedisRegistry_ListDropsExpired(t *testing.T) {
	mr, client, reg := setupTestRedis(t)
	ctx := context.Background()

	session := NewSession(testHeader(6, packet.TypeMotion, 1), "10.0.0.1:1")
	require.NoError(t, reg.Register(ctx, session))

	mr.FastForward(6 * time.Minute)

	sessions, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	count, err := client.SCard(ctx, "pitwall:sessions:active").Result()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = reg.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisRegistry_UnavailableServer(t *testing.T) {
	mr, _, reg := setupTestRedis(t)
	mr.Close()

	ctx := context.Background()
	session := NewSession(testHeader(9, packet.TypeMotion, 1), "10.0.0.1:1")

	assert.Error(t, reg.Register(ctx, session))
	_, err := reg.Get(ctx, session.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
