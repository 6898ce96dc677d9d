package engine

import (
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
)

// PVLine is one ranked line from a multi-PV search.
type PVLine struct {
	Move  board.Move
	Score int
	PV    []board.Move
}

// SearchMultiPV ranks the top Options.MultiPV root moves. The first
// line is searched normally; each further line repeats the search with
// the already-ranked moves excluded from the root move set. Lines are
// returned best first. A position with no legal moves returns nil.
func (e *Engine) SearchMultiPV(pos *board.Position, maxDepth int, timeLimitMs int) []PVLine {
	legal := pos.GenerateMoves()
	if len(legal) == 0 {
		return nil
	}

	lines := e.opts.MultiPV
	if lines > len(legal) {
		lines = len(legal)
	}

	budget := time.Duration(timeLimitMs) * time.Millisecond
	if timeLimitMs <= 0 {
		budget = ComputeTimeBudget(e.clock, e.opts.MoveOverhead)
	}
	// Every line gets an equal slice of the budget.
	perLine := int(budget.Milliseconds()) / lines
	if perLine < 1 {
		perLine = 1
	}

	results := make([]PVLine, 0, lines)
	excluded := make(map[board.Move]bool, lines)

	for k := 0; k < lines; k++ {
		moves := make([]board.Move, 0, len(legal))
		for _, m := range legal {
			if !excluded[m] {
				moves = append(moves, m)
			}
		}
		move, score := e.searchRestricted(pos, moves, maxDepth, perLine)
		if move == board.NoMove {
			break
		}
		results = append(results, PVLine{
			Move:  move,
			Score: score,
			PV:    e.PrincipalVariation(pos, maxDepth),
		})
		excluded[move] = true
	}
	return results
}

// searchRestricted runs the iterative-deepening driver over a caller
// supplied subset of the root moves.
func (e *Engine) searchRestricted(pos *board.Position, moves []board.Move, maxDepth, timeLimitMs int) (board.Move, int) {
	if len(moves) == 0 {
		return board.NoMove, 0
	}

	e.stop.Store(false)
	e.nodes.Store(0)
	e.deadline = time.Now().Add(time.Duration(timeLimitMs) * time.Millisecond)
	e.tt.Clear()

	if e.opts.LimitStrength {
		if capped := 1 + e.opts.Strength; maxDepth > capped {
			maxDepth = capped
		}
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	bestMove := moves[0]
	bestScore := -Infinity
	prevScore := 0
	workers := e.newWorkers()

	for depth := 1; depth <= maxDepth; depth++ {
		move, score, completed := e.searchDepthAspirated(pos, workers, moves, depth, prevScore)
		if !completed {
			break
		}
		bestMove, bestScore, prevScore = move, score, score
		e.tt.Store(pos.Hash, TTEntry{Depth: depth, Score: bestScore, Flag: TTExact, BestMove: bestMove})
		moveToFront(moves, bestMove)
		if time.Now().After(e.deadline) || e.stop.Load() {
			break
		}
	}
	return bestMove, bestScore
}
