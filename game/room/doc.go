// Package room implements the per-room game state machine.
//
// A Room tracks its members, the subset of active players in the current
// round, the moves submitted so far, and the phase of the game. Rooms cycle
// between two phases:
//
//	Idle:   no round in progress; a start command with at least two
//	        members begins a game
//	Active: a round is in progress; the room is waiting for every active
//	        player to submit exactly one move
//
// Once the last active player submits, the round is resolved: a tie or a
// multi-winner split keeps the room Active for a rematch, while a single
// winner concludes the game and returns the room to Idle.
//
// Concurrency:
//
// Every exported method takes the room's own mutex, so command handling for
// one room is fully serialized while different rooms proceed in parallel.
// Callers never see or mutate internal state directly; methods return
// snapshots.
package room
