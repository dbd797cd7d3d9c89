package registry

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/config"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/room"
)

func newTestRegistry() *Registry {
	return New(config.Default())
}

func TestJoinCreatesRoomLazily(t *testing.T) {
	reg := newTestRegistry()
	assert.Equal(t, 0, reg.Count())

	r, err := reg.Join(uuid.New(), "r1")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 1, reg.Count())

	got, err := reg.Get("r1")
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestJoinFullRoom(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRoomMembers = 2
	reg := New(cfg)

	_, err := reg.Join(uuid.New(), "r1")
	require.NoError(t, err)
	_, err = reg.Join(uuid.New(), "r1")
	require.NoError(t, err)

	_, err = reg.Join(uuid.New(), "r1")
	assert.ErrorIs(t, err, room.ErrRoomFull)

	// The failed join must not disturb the existing room.
	detail, err := reg.Detail("r1")
	require.NoError(t, err)
	assert.Equal(t, 2, detail.ClientCount)
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	reg := newTestRegistry()
	a, b := uuid.New(), uuid.New()

	_, err := reg.Join(a, "r1")
	require.NoError(t, err)
	_, err = reg.Join(b, "r1")
	require.NoError(t, err)

	dep := reg.Leave(a, "r1")
	assert.True(t, dep.Removed)
	assert.False(t, dep.Empty)
	assert.Equal(t, 1, reg.Count())

	dep = reg.Leave(b, "r1")
	assert.True(t, dep.Removed)
	assert.True(t, dep.Empty)
	assert.Equal(t, 0, reg.Count())
}

func TestLeaveIdempotent(t *testing.T) {
	reg := newTestRegistry()
	a := uuid.New()
	_, err := reg.Join(a, "r1")
	require.NoError(t, err)

	dep := reg.Leave(a, "r1")
	assert.True(t, dep.Removed)

	dep = reg.Leave(a, "r1")
	assert.False(t, dep.Removed)

	dep = reg.Leave(uuid.New(), "no-such-room")
	assert.False(t, dep.Removed)
}

func TestSnapshotSortedByRoomID(t *testing.T) {
	reg := newTestRegistry()
	for _, id := range []string{"zebra", "alpha", "mango"} {
		_, err := reg.Join(uuid.New(), id)
		require.NoError(t, err)
	}
	_, err := reg.Join(uuid.New(), "mango")
	require.NoError(t, err)

	snap := reg.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "alpha", snap[0].RoomID)
	assert.Equal(t, "mango", snap[1].RoomID)
	assert.Equal(t, "zebra", snap[2].RoomID)
	assert.Equal(t, 2, snap[1].ClientCount)
}

func TestDetail(t *testing.T) {
	reg := newTestRegistry()
	a, b := uuid.New(), uuid.New()
	_, err := reg.Join(a, "r1")
	require.NoError(t, err)
	_, err = reg.Join(b, "r1")
	require.NoError(t, err)

	detail, err := reg.Detail("r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", detail.RoomID)
	assert.Equal(t, room.PhaseIdle, detail.Phase)
	assert.Equal(t, 2, detail.ClientCount)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, detail.Members)

	_, err = reg.Detail("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestTotalConnections(t *testing.T) {
	reg := newTestRegistry()
	for i := 0; i < 3; i++ {
		_, err := reg.Join(uuid.New(), "a")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := reg.Join(uuid.New(), fmt.Sprintf("b%d", i))
		require.NoError(t, err)
	}

	assert.Equal(t, 5, reg.TotalConnections())
}

func TestConcurrentJoinLeave(t *testing.T) {
	reg := newTestRegistry()
	done := make(chan struct{})

	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			roomID := fmt.Sprintf("room-%d", g%4)
			for i := 0; i < 50; i++ {
				id := uuid.New()
				if _, err := reg.Join(id, roomID); err != nil {
					continue
				}
				reg.Snapshot()
				reg.Leave(id, roomID)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.Equal(t, 0, reg.TotalConnections())
}
