package engine

import (
	"fmt"
	"strings"
)

// Choice represents a player's throw in a round
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// OutcomeKind classifies the result of a resolved round
type OutcomeKind string

const (
	// OutcomeTie means every remaining player stays in for another round.
	OutcomeTie OutcomeKind = "tie"
	// OutcomeMultipleWinners means the losing choice's holders are
	// eliminated and the winners play another round among themselves.
	OutcomeMultipleWinners OutcomeKind = "multiple_winners"
	// OutcomeSingleWinner means the game is over.
	OutcomeSingleWinner OutcomeKind = "single_winner"
)

// ParseChoice parses a choice from client input, case-insensitively.
func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToLower(strings.TrimSpace(s))) {
	case Rock:
		return Rock, nil
	case Paper:
		return Paper, nil
	case Scissors:
		return Scissors, nil
	default:
		return "", fmt.Errorf("invalid choice %q: must be rock, paper or scissors", s)
	}
}

// Beats reports whether c wins against other under the fixed relation
// rock beats scissors, scissors beats paper, paper beats rock.
func (c Choice) Beats(other Choice) bool {
	switch c {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// Valid reports whether c is one of the three playable choices.
func (c Choice) Valid() bool {
	return c == Rock || c == Paper || c == Scissors
}

func (c Choice) String() string {
	return string(c)
}
