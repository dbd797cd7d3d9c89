package room

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/engine"
)

var (
	ErrRoomFull          = errors.New("room is full")
	ErrNotEnoughPlayers  = errors.New("not enough players to start a game")
	ErrGameAlreadyActive = errors.New("game already active")
	ErrGameNotActive     = errors.New("game not active")
	ErrNotActivePlayer   = errors.New("player is not part of the active game")
	ErrDuplicateMove     = errors.New("move already submitted this round")
)

// Phase is the state of a room's game.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
)

// Room holds one game's state. All methods are safe for concurrent use;
// the internal mutex serializes every command against this room.
type Room struct {
	id         string
	maxMembers int

	mu      sync.Mutex
	phase   Phase
	members map[uuid.UUID]struct{}
	active  map[uuid.UUID]struct{}
	moves   map[uuid.UUID]engine.Choice
}

// RoundResult is returned when a submitted move completes the round.
type RoundResult struct {
	Outcome engine.Outcome
	// Moves is a snapshot of the round's submissions.
	Moves map[uuid.UUID]engine.Choice
	// Concluded is true when the game is over (single winner) and the
	// room has returned to idle.
	Concluded bool
}

// Departure describes the effect of removing a member.
type Departure struct {
	// Removed is false when the client was not a member (idempotent leave).
	Removed bool
	// GameAborted is true when the departing client was an active player
	// in a running game, which aborts the whole game.
	GameAborted bool
	// Empty is true when the room has no members left.
	Empty bool
	// Remaining lists the members still in the room, sorted by id.
	Remaining []uuid.UUID
}

// New creates an idle room with the given member cap.
func New(id string, maxMembers int) *Room {
	return &Room{
		id:         id,
		maxMembers: maxMembers,
		phase:      PhaseIdle,
		members:    make(map[uuid.UUID]struct{}),
		active:     make(map[uuid.UUID]struct{}),
		moves:      make(map[uuid.UUID]engine.Choice),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// AddMember admits a client, failing with ErrRoomFull at capacity.
func (r *Room) AddMember(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) >= r.maxMembers {
		return ErrRoomFull
	}
	r.members[id] = struct{}{}
	return nil
}

// RemoveMember takes a client out of the room. Removing an active player
// during a running game aborts the game: the room reverts to idle and all
// round state is cleared. Removing an unknown client is a no-op.
func (r *Room) RemoveMember(id uuid.UUID) Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return Departure{}
	}
	delete(r.members, id)

	dep := Departure{Removed: true}
	if r.phase == PhaseActive {
		if _, wasActive := r.active[id]; wasActive {
			r.phase = PhaseIdle
			r.active = make(map[uuid.UUID]struct{})
			r.moves = make(map[uuid.UUID]engine.Choice)
			dep.GameAborted = true
		}
	}

	dep.Empty = len(r.members) == 0
	dep.Remaining = sortedIDs(r.members)
	return dep
}

// Start begins a game: every current member becomes an active player and
// the room waits for their moves.
func (r *Room) Start() ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseActive {
		return nil, ErrGameAlreadyActive
	}
	if len(r.members) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	r.active = make(map[uuid.UUID]struct{}, len(r.members))
	for id := range r.members {
		r.active[id] = struct{}{}
	}
	r.moves = make(map[uuid.UUID]engine.Choice)
	r.phase = PhaseActive

	return sortedIDs(r.active), nil
}

// SubmitMove records a move for the sender. When the last outstanding move
// arrives the round is resolved and the outcome applied: ties keep the
// active set, multiple winners shrink it, a single winner ends the game.
// The returned result is nil while moves are still outstanding.
func (r *Room) SubmitMove(sender uuid.UUID, choice engine.Choice) (*RoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseActive {
		return nil, ErrGameNotActive
	}
	if _, ok := r.active[sender]; !ok {
		return nil, ErrNotActivePlayer
	}
	if _, dup := r.moves[sender]; dup {
		return nil, ErrDuplicateMove
	}
	r.moves[sender] = choice

	if len(r.moves) != len(r.active) {
		return nil, nil
	}

	snapshot := make(map[uuid.UUID]engine.Choice, len(r.moves))
	for id, c := range r.moves {
		snapshot[id] = c
	}
	outcome := engine.Resolve(snapshot)

	result := &RoundResult{Outcome: outcome, Moves: snapshot}
	switch outcome.Kind {
	case engine.OutcomeSingleWinner:
		r.phase = PhaseIdle
		r.active = make(map[uuid.UUID]struct{})
		result.Concluded = true
	case engine.OutcomeMultipleWinners:
		r.active = make(map[uuid.UUID]struct{}, len(outcome.Winners))
		for _, id := range outcome.Winners {
			r.active[id] = struct{}{}
		}
	case engine.OutcomeTie:
		// Active set unchanged; everyone rethrows.
	}
	r.moves = make(map[uuid.UUID]engine.Choice)

	return result, nil
}

// IsMember reports whether the client currently belongs to the room.
func (r *Room) IsMember(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[id]
	return ok
}

// Count returns the current member count.
func (r *Room) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Members returns the member ids sorted by id.
func (r *Room) Members() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedIDs(r.members)
}

// Phase returns the room's current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
