// Package engine implements the pure game rules for rock-paper-scissors.
//
// The engine package implements:
//   - The Choice type and its case-insensitive parser
//   - The fixed circular beats relation (rock > scissors > paper > rock)
//   - Round resolution for N players
//
// The package holds no state and performs no I/O. Resolve is a pure
// function over a completed set of player choices, which makes the round
// rules trivially testable in isolation from rooms and transport.
//
// Resolution rules:
//
// A round with a single distinct choice, or with all three choices present,
// is a tie between every player. A round with exactly two distinct choices
// has a winning choice; everyone who picked it wins and everyone else is
// eliminated. One winner ends the game; several winners force a rematch
// among themselves.
package engine
