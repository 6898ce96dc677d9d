// Package tablebase answers "is this endgame a forced win, draw or
// loss" for positions with few pieces, ahead of any heuristic search.
package tablebase

import (
	"github.com/star-ga/NikolaChess/internal/board"
)

// Outcome is a tablebase verdict from the side to move's perspective.
type Outcome int

const (
	Unknown Outcome = iota
	Win
	Draw
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

// ProbeResult is the answer for one position. DTZ is the distance to a
// zeroing move (capture or pawn move), zero when not reported.
type ProbeResult struct {
	Outcome Outcome
	DTZ     int
}

// RootResult carries the tablebase-preferred move at the root.
type RootResult struct {
	Move    board.Move
	Outcome Outcome
	DTZ     int
}

// Prober looks up endgame positions. Implementations must be safe for
// concurrent use by search workers and must report Unknown rather than
// fail: the search falls back to static evaluation on Unknown.
type Prober interface {
	Probe(pos *board.Position) ProbeResult
	ProbeRoot(pos *board.Position) RootResult
	MaxPieces() int
}

// OutcomeScore converts a definite verdict into a search score. Wins
// and losses sit just below the mate band passed in as bound, so they
// dominate every heuristic score while staying distinguishable from a
// proven mate. Nearer plies score better.
func OutcomeScore(o Outcome, ply, bound int) int {
	switch o {
	case Win:
		return bound - ply
	case Loss:
		return -bound + ply
	case Draw:
		return 0
	default:
		return 0
	}
}

// NoopProber satisfies Prober when no tablebase is configured.
type NoopProber struct{}

func (NoopProber) Probe(*board.Position) ProbeResult { return ProbeResult{} }

func (NoopProber) ProbeRoot(*board.Position) RootResult {
	return RootResult{Move: board.NoMove}
}

func (NoopProber) MaxPieces() int { return 0 }
