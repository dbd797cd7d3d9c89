package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/config"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/room"
)

// fakeNotifier records every delivery instead of touching a network.
type fakeNotifier struct {
	mu        sync.Mutex
	roomCasts []recordedCast
	raws      []recordedRaw
	directs   []recordedDirect
	roomLists []any
}

type recordedCast struct {
	roomID string
	event  any
}

type recordedRaw struct {
	roomID string
	except uuid.UUID
	data   []byte
}

type recordedDirect struct {
	clientID uuid.UUID
	event    any
}

func (f *fakeNotifier) BroadcastToRoom(roomID string, event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomCasts = append(f.roomCasts, recordedCast{roomID, event})
}

func (f *fakeNotifier) BroadcastRawToRoomExcept(roomID string, except uuid.UUID, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raws = append(f.raws, recordedRaw{roomID, except, data})
}

func (f *fakeNotifier) SendToClient(clientID uuid.UUID, event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.directs = append(f.directs, recordedDirect{clientID, event})
}

func (f *fakeNotifier) BroadcastRoomList(event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomLists = append(f.roomLists, event)
}

func (f *fakeNotifier) lastRoomCast(t *testing.T) recordedCast {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.roomCasts, "expected at least one room broadcast")
	return f.roomCasts[len(f.roomCasts)-1]
}

func (f *fakeNotifier) lastDirect(t *testing.T) recordedDirect {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.directs, "expected at least one direct send")
	return f.directs[len(f.directs)-1]
}

func (f *fakeNotifier) directCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.directs)
}

func (f *fakeNotifier) roomCastCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roomCasts)
}

func setup(t *testing.T) (GameService, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	svc := NewGameService(registry.New(config.Default()), notifier)
	return svc, notifier
}

func mustJoin(t *testing.T, svc GameService, roomID string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, svc.Join(id, roomID))
	svc.AnnounceJoin(id, roomID)
	return id
}

func sendCmd(svc GameService, id uuid.UUID, cmd Command) {
	data, _ := json.Marshal(cmd)
	svc.HandleMessage(id, data)
}

func TestTwoPlayerGameEndToEnd(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	b := mustJoin(t, svc, "r1")

	sendCmd(svc, a, Command{Action: ActionStart})
	started, ok := notifier.lastRoomCast(t).event.(GameStartedEvent)
	require.True(t, ok, "expected a game_started broadcast")
	assert.Equal(t, EventGameStarted, started.Event)
	assert.Equal(t, "r1", started.RoomID)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, started.Players)

	sendCmd(svc, a, Command{Action: ActionMove, Choice: "rock"})
	sendCmd(svc, b, Command{Action: ActionMove, Choice: "scissors"})

	result, ok := notifier.lastRoomCast(t).event.(RoundResultEvent)
	require.True(t, ok, "expected a round_result broadcast")
	assert.False(t, result.Tie)
	assert.Equal(t, []uuid.UUID{a}, result.Winners)
	assert.Equal(t, "rock", result.Moves[a].String())
	assert.Equal(t, "scissors", result.Moves[b].String())

	detail, err := svc.RoomDetail("r1")
	require.NoError(t, err)
	assert.Equal(t, room.PhaseIdle, detail.Phase)
}

func TestThreePlayerRematchOnSharedWin(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	b := mustJoin(t, svc, "r1")
	c := mustJoin(t, svc, "r1")

	sendCmd(svc, a, Command{Action: ActionStartGame})
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "rock"})
	sendCmd(svc, b, Command{Action: ActionMove, Choice: "ROCK"})
	sendCmd(svc, c, Command{Action: ActionMove, Choice: "scissors"})

	rematch, ok := notifier.lastRoomCast(t).event.(RematchEvent)
	require.True(t, ok, "expected a rematch broadcast")
	assert.Equal(t, ReasonMultipleWinners, rematch.Reason)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, rematch.NextPlayers)
	assert.Len(t, rematch.Moves, 3)
}

func TestTieRematchKeepsEveryone(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	b := mustJoin(t, svc, "r1")

	sendCmd(svc, a, Command{Action: ActionStart})
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "paper"})
	sendCmd(svc, b, Command{Action: ActionMove, Choice: "paper"})

	rematch, ok := notifier.lastRoomCast(t).event.(RematchEvent)
	require.True(t, ok)
	assert.Equal(t, ReasonTie, rematch.Reason)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, rematch.NextPlayers)
}

func TestDisconnectDuringActiveGameAborts(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	b := mustJoin(t, svc, "r1")
	c := mustJoin(t, svc, "r1")

	sendCmd(svc, a, Command{Action: ActionStart})
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "rock"})

	svc.Disconnect(b)

	aborted, ok := notifier.lastRoomCast(t).event.(GameAbortedEvent)
	require.True(t, ok, "expected a game_aborted broadcast")
	assert.Equal(t, EventGameAborted, aborted.Event)
	assert.Equal(t, "r1", aborted.RoomID)

	detail, err := svc.RoomDetail("r1")
	require.NoError(t, err)
	assert.Equal(t, room.PhaseIdle, detail.Phase)
	assert.Equal(t, 2, detail.ClientCount)

	// A fresh start by a survivor succeeds.
	sendCmd(svc, c, Command{Action: ActionStart})
	_, ok = notifier.lastRoomCast(t).event.(GameStartedEvent)
	assert.True(t, ok)
}

func TestDisconnectIdempotent(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	mustJoin(t, svc, "r1")

	svc.Disconnect(a)
	casts := notifier.roomCastCount()

	svc.Disconnect(a)
	svc.Disconnect(uuid.New())

	assert.Equal(t, casts, notifier.roomCastCount(), "repeat disconnects must not notify again")
}

func TestJoinFullRoomRejected(t *testing.T) {
	cfg := config.Default()
	notifier := &fakeNotifier{}
	svc := NewGameService(registry.New(cfg), notifier)

	for i := 0; i < cfg.MaxRoomMembers; i++ {
		require.NoError(t, svc.Join(uuid.New(), "packed"))
	}

	err := svc.Join(uuid.New(), "packed")
	assert.ErrorIs(t, err, room.ErrRoomFull)

	snap := svc.ListRooms()
	require.Len(t, snap, 1)
	assert.Equal(t, cfg.MaxRoomMembers, snap[0].ClientCount)
}

func TestStartErrorsGoToSenderOnly(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "solo")

	casts := notifier.roomCastCount()
	sendCmd(svc, a, Command{Action: ActionStart})

	errEvent, ok := notifier.lastDirect(t).event.(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, EventError, errEvent.Event)
	assert.Contains(t, errEvent.Message, "not enough players")
	assert.Equal(t, casts, notifier.roomCastCount(), "state errors must not broadcast")
}

func TestMoveErrors(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	b := mustJoin(t, svc, "r1")

	// Move while idle.
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "rock"})
	errEvent := notifier.lastDirect(t).event.(ErrorEvent)
	assert.Contains(t, errEvent.Message, "not active")

	sendCmd(svc, a, Command{Action: ActionStart})

	// Invalid choice.
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "lizard"})
	errEvent = notifier.lastDirect(t).event.(ErrorEvent)
	assert.Contains(t, errEvent.Message, "invalid choice")

	// Duplicate move.
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "rock"})
	sendCmd(svc, a, Command{Action: ActionMove, Choice: "paper"})
	errEvent = notifier.lastDirect(t).event.(ErrorEvent)
	assert.Contains(t, errEvent.Message, "already submitted")

	_ = b
}

func TestUnknownActionRejected(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")

	sendCmd(svc, a, Command{Action: "dance"})
	errEvent, ok := notifier.lastDirect(t).event.(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEvent.Message, "unrecognized action")

	svc.HandleMessage(a, []byte(`{"no_action":true}`))
	errEvent, ok = notifier.lastDirect(t).event.(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEvent.Message, "unrecognized action")
}

func TestUnstructuredTextRelayedVerbatim(t *testing.T) {
	svc, notifier := setup(t)
	a := mustJoin(t, svc, "r1")
	mustJoin(t, svc, "r1")

	svc.HandleMessage(a, []byte("good luck everyone"))

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.NotEmpty(t, notifier.raws)
	last := notifier.raws[len(notifier.raws)-1]
	assert.Equal(t, "r1", last.roomID)
	assert.Equal(t, a, last.except)
	assert.Equal(t, "good luck everyone", string(last.data))
}

func TestMessageFromUnknownClientRejected(t *testing.T) {
	svc, notifier := setup(t)

	stranger := uuid.New()
	sendCmd(svc, stranger, Command{Action: ActionStart})

	errEvent, ok := notifier.lastDirect(t).event.(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEvent.Message, "not in a room")
}

func TestDirectoryBroadcastOnMembershipChange(t *testing.T) {
	svc, notifier := setup(t)

	a := mustJoin(t, svc, "alpha")
	mustJoin(t, svc, "beta")

	notifier.mu.Lock()
	listCount := len(notifier.roomLists)
	last := notifier.roomLists[listCount-1].(RoomListEvent)
	notifier.mu.Unlock()

	require.Len(t, last.Rooms, 2)
	assert.Equal(t, "alpha", last.Rooms[0].RoomID)
	assert.Equal(t, "beta", last.Rooms[1].RoomID)

	svc.Disconnect(a)

	notifier.mu.Lock()
	require.Greater(t, len(notifier.roomLists), listCount)
	last = notifier.roomLists[len(notifier.roomLists)-1].(RoomListEvent)
	notifier.mu.Unlock()

	require.Len(t, last.Rooms, 1)
	assert.Equal(t, "beta", last.Rooms[0].RoomID)
}

func TestRoundResolutionFiresExactlyOnce(t *testing.T) {
	svc, notifier := setup(t)
	ids := make([]uuid.UUID, 4)
	for i := range ids {
		ids[i] = mustJoin(t, svc, "r1")
	}

	sendCmd(svc, ids[0], Command{Action: ActionStart})
	before := notifier.roomCastCount()

	for i, choice := range []string{"rock", "rock", "rock", "scissors"} {
		sendCmd(svc, ids[i], Command{Action: ActionMove, Choice: choice})
	}

	// Exactly one broadcast for the round outcome, none for partial rounds.
	assert.Equal(t, before+1, notifier.roomCastCount())
}

func TestCounts(t *testing.T) {
	svc, _ := setup(t)

	require.NoError(t, svc.Join(uuid.New(), "a"))
	require.NoError(t, svc.Join(uuid.New(), "a"))
	require.NoError(t, svc.Join(uuid.New(), "b"))

	stats := svc.Counts()
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 3, stats.Connections)
}

func ExampleGameService() {
	notifier := &fakeNotifier{}
	svc := NewGameService(registry.New(config.Default()), notifier)

	a, b := uuid.New(), uuid.New()
	_ = svc.Join(a, "lobby")
	_ = svc.Join(b, "lobby")

	data, _ := json.Marshal(Command{Action: ActionStart})
	svc.HandleMessage(a, data)

	fmt.Println(len(svc.ListRooms()))
	// Output: 1
}
