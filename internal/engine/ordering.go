package engine

import (
	"sort"

	"github.com/star-ga/NikolaChess/internal/board"
)

// Ordering score bands, highest tried first.
const (
	hashMoveScore     = 1_000_000
	promotionScore    = 800_000
	captureScore      = 600_000
	killerFirstScore  = 500_000
	killerSecondScore = 400_000
	counterMoveScore  = 300_000
)

// MoveOrderer holds the per-thread move-ordering heuristics: killer
// moves per ply, a history table for quiet moves, and counter-moves
// indexed by the opponent's previous move. It is owned by exactly one
// search worker and reset at the start of each top-level search.
type MoveOrderer struct {
	killers  [MaxPly][2]board.Move
	history  [64][64]int
	counters [64][64]board.Move
}

// NewMoveOrderer returns a zeroed orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Reset clears all heuristic state for a new top-level search.
func (o *MoveOrderer) Reset() {
	*o = MoveOrderer{}
}

// scoreMove assigns the ordering priority for a single move.
func (o *MoveOrderer) scoreMove(pos *board.Position, m board.Move, hashMove board.Move, ply int, prev board.Move) int {
	if m == hashMove {
		return hashMoveScore
	}
	if m.IsPromotion() {
		return promotionScore + board.PieceValue[m.Promotion]
	}
	if m.IsCapture() {
		see := seeEstimate(pos, m)
		mvvLva := m.Captured.Value()*16 - pos.PieceAt(m.From).Value()/8
		if see >= 0 {
			return captureScore + see + mvvLva
		}
		// Losing captures fall behind the quiet heuristics.
		return see
	}
	if ply < MaxPly {
		if m == o.killers[ply][0] {
			return killerFirstScore
		}
		if m == o.killers[ply][1] {
			return killerSecondScore
		}
	}
	if prev.IsValid() && m == o.counters[prev.From][prev.To] {
		return counterMoveScore
	}
	return o.history[m.From][m.To]
}

// Order sorts moves in place from most to least promising. The sort is
// stable so equally scored moves keep their generation order.
func (o *MoveOrderer) Order(pos *board.Position, moves []board.Move, hashMove board.Move, ply int, prev board.Move) {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: o.scoreMove(pos, m, hashMove, ply, prev)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	for i := range scored {
		moves[i] = scored[i].move
	}
}

type scoredMove struct {
	move  board.Move
	score int
}

// RecordCutoff updates the heuristics after a move caused a beta
// cutoff. Captures and promotions are ordered by their own signals and
// do not pollute the quiet-move tables.
func (o *MoveOrderer) RecordCutoff(m board.Move, depth, ply int, prev board.Move) {
	if m.IsCapture() || m.IsPromotion() {
		return
	}
	if ply < MaxPly && o.killers[ply][0] != m {
		o.killers[ply][1] = o.killers[ply][0]
		o.killers[ply][0] = m
	}
	o.history[m.From][m.To] += depth * depth
	if prev.IsValid() {
		o.counters[prev.From][prev.To] = m
	}
}
