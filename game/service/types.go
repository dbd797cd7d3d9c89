package service

import (
	"github.com/google/uuid"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/engine"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
)

// Recognized inbound actions.
const (
	ActionStart     = "start"
	ActionStartGame = "start_game"
	ActionMove      = "move"
)

// Outbound event type tags.
const (
	EventGameStarted = "game_started"
	EventRematch     = "rematch"
	EventRoundResult = "round_result"
	EventGameAborted = "game_aborted"
	EventError       = "error"
)

// Rematch reasons.
const (
	ReasonTie             = "tie"
	ReasonMultipleWinners = "multiple_winners"
)

// Command is the structured inbound message from a room member.
type Command struct {
	Action string `json:"action"`
	Choice string `json:"choice,omitempty"`
}

// JoinNotice reports a join or leave to room members, and a join result to
// the joining client itself.
type JoinNotice struct {
	Success bool   `json:"success"`
	RoomID  string `json:"room_id"`
	Message string `json:"message,omitempty"`
	MyID    string `json:"my_id,omitempty"`
}

// GameStartedEvent announces a new round with its active players.
type GameStartedEvent struct {
	Event   string      `json:"event"`
	RoomID  string      `json:"room_id"`
	Players []uuid.UUID `json:"players"`
}

// RematchEvent announces that the round ended without a single winner and
// names the players of the next round.
type RematchEvent struct {
	Event       string                      `json:"event"`
	RoomID      string                      `json:"room_id"`
	NextPlayers []uuid.UUID                 `json:"next_players"`
	Reason      string                      `json:"reason"`
	Moves       map[uuid.UUID]engine.Choice `json:"moves"`
}

// RoundResultEvent announces the end of a game with its single winner.
type RoundResultEvent struct {
	Event   string                      `json:"event"`
	RoomID  string                      `json:"room_id"`
	Tie     bool                        `json:"tie"`
	Winners []uuid.UUID                 `json:"winners"`
	Moves   map[uuid.UUID]engine.Choice `json:"moves"`
}

// GameAbortedEvent tells remaining members that the game ended because an
// active player departed mid-round.
type GameAbortedEvent struct {
	Event   string `json:"event"`
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// ErrorEvent reports a validation or state error to the originating client.
type ErrorEvent struct {
	Event   string `json:"event"`
	RoomID  string `json:"room_id,omitempty"`
	Message string `json:"message"`
	MyID    string `json:"my_id,omitempty"`
}

// RoomListEvent is the room-directory snapshot pushed to watchers.
type RoomListEvent struct {
	Rooms []registry.RoomInfo `json:"rooms"`
}

// Stats is the process-level view served by the REST API.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}
