package engine

import (
	"sort"

	"github.com/google/uuid"
)

// Outcome is the result of resolving one completed round.
type Outcome struct {
	Kind OutcomeKind
	// Winners holds the players still standing after the round, sorted by
	// id for deterministic output. For a tie this is every participant.
	Winners []uuid.UUID
}

// Resolve classifies a completed round. The moves map must contain exactly
// one entry per active player; callers only invoke it once every active
// player has submitted.
func Resolve(moves map[uuid.UUID]Choice) Outcome {
	distinct := make(map[Choice]struct{}, 3)
	for _, c := range moves {
		distinct[c] = struct{}{}
	}

	// One choice on the table (everyone threw the same) or all three
	// (the relation is circular): nobody is eliminated.
	if len(distinct) != 2 {
		return Outcome{Kind: OutcomeTie, Winners: sortedPlayers(moves, nil)}
	}

	var a, b Choice
	for c := range distinct {
		if a == "" {
			a = c
		} else {
			b = c
		}
	}
	winning := a
	if b.Beats(a) {
		winning = b
	}

	winners := sortedPlayers(moves, func(c Choice) bool { return c == winning })
	kind := OutcomeMultipleWinners
	if len(winners) == 1 {
		kind = OutcomeSingleWinner
	}
	return Outcome{Kind: kind, Winners: winners}
}

// sortedPlayers collects the players whose choice satisfies keep (nil keeps
// everyone), sorted by id string.
func sortedPlayers(moves map[uuid.UUID]Choice, keep func(Choice) bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(moves))
	for id, c := range moves {
		if keep == nil || keep(c) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
