package engine

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/tablebase"
)

// Aspiration window parameters: the first window around the previous
// depth's score, doubled on each failure before the full-window retry.
const (
	aspirationWindow   = 50
	aspirationMinDepth = 3
	aspirationRetries  = 2
)

// searchRoot drives iterative deepening over the given position.
func (e *Engine) searchRoot(pos *board.Position, maxDepth int) (board.Move, int) {
	moves := pos.GenerateMoves()
	if len(moves) == 0 {
		// Stalemate or checkmate; the caller decides which.
		return board.NoMove, 0
	}

	// Rule draws hold at the root no matter how deep we would search.
	if IsFiftyMoveDraw(pos) || IsInsufficientMaterial(pos) {
		return moves[0], 0
	}

	// With few enough pieces the tablebase already knows the best move.
	if e.prober != nil && pos.CountPieces() <= e.opts.TablebasePieces {
		if result := e.prober.ProbeRoot(pos); result.Move != board.NoMove {
			if m := board.FindMove(moves, result.Move.From, result.Move.To, result.Move.Promotion); m != board.NoMove {
				return m, tablebase.OutcomeScore(result.Outcome, 0, mateBound)
			}
		}
	}

	start := time.Now()
	bestMove := moves[0] // never return an illegal or empty move
	bestScore := -Infinity
	prevScore := 0

	// One context per worker for the whole top-level search: ordering
	// heuristics persist across iterative-deepening depths.
	workers := e.newWorkers()

	for depth := 1; depth <= maxDepth; depth++ {
		move, score, completed := e.searchDepthAspirated(pos, workers, moves, depth, prevScore)
		if !completed {
			// The very first depth may be rescued by a partial result;
			// deeper ones are discarded in favor of the finished depth.
			if depth == 1 && move != board.NoMove {
				bestMove, bestScore = move, score
			}
			log.Printf("engine: time expired at depth %d, using depth %d result", depth, depth-1)
			break
		}
		bestMove, bestScore, prevScore = move, score, score

		// Seed the table with the root choice so the next depth tries
		// it first and the PV walk can start from the root.
		e.tt.Store(pos.Hash, TTEntry{Depth: depth, Score: bestScore, Flag: TTExact, BestMove: bestMove})

		moveToFront(moves, bestMove)
		e.emitInfo(pos, depth, 1, bestScore, start)

		if time.Now().After(e.deadline) || e.stop.Load() {
			break
		}
	}
	return bestMove, bestScore
}

// searchDepthAspirated searches one depth with an aspiration window
// centered on the previous score, widening on failure and finally
// falling back to the full window.
func (e *Engine) searchDepthAspirated(pos *board.Position, workers []*searchContext, moves []board.Move, depth, prevScore int) (board.Move, int, bool) {
	alpha, beta := -Infinity, Infinity
	window := aspirationWindow
	if depth >= aspirationMinDepth {
		alpha, beta = prevScore-window, prevScore+window
	}

	for try := 0; ; try++ {
		move, score, completed := e.searchDepth(pos, workers, moves, depth, alpha, beta)
		if !completed {
			return move, score, false
		}
		failLow := move == board.NoMove || score <= alpha
		failHigh := score >= beta
		if !failLow && !failHigh {
			return move, score, true
		}
		if try >= aspirationRetries {
			alpha, beta = -Infinity, Infinity
			continue
		}
		window *= 2
		if failLow {
			alpha = prevScore - window
		}
		if failHigh {
			beta = prevScore + window
		}
	}
}

// searchDepth evaluates every root move at the given depth. With more
// than one worker configured, moves are claimed through a shared atomic
// index; the mutex guards only the best-result record. Returns
// completed=false when the deadline cut the depth short, in which case
// the partial result must not replace a finished depth's choice.
func (e *Engine) searchDepth(pos *board.Position, workers []*searchContext, moves []board.Move, depth, alpha, beta int) (board.Move, int, bool) {
	var (
		next    atomic.Int64
		aborted atomic.Bool
		mu      sync.Mutex
	)
	bestScore := -Infinity
	bestMove := board.NoMove

	worker := func(ctx *searchContext) error {
		nodesBefore := ctx.nodes
		defer func() { e.nodes.Add(ctx.nodes - nodesBefore) }()

		for {
			i := int(next.Add(1) - 1)
			if i >= len(moves) || aborted.Load() {
				return nil
			}
			m := moves[i]

			// The root position opens the search path for every root
			// move; the game history is already counted in ctx.history.
			path := append(ctx.path[:0], pos.Hash)

			mu.Lock()
			a := alpha
			if bestScore > a {
				a = bestScore
			}
			mu.Unlock()

			child := pos.MakeMove(m)
			score := -ctx.negamax(&child, depth-1, 1, -beta, -a, m, path)
			if ctx.stopped {
				// The in-flight node tree was abandoned, so the score
				// is garbage unless nothing was recorded yet at depth 1.
				mu.Lock()
				if depth == 1 && bestMove == board.NoMove {
					bestMove, bestScore = m, score
				}
				mu.Unlock()
				aborted.Store(true)
				return nil
			}

			mu.Lock()
			if score > bestScore {
				bestScore, bestMove = score, m
			}
			mu.Unlock()
		}
	}

	g := new(errgroup.Group)
	for _, ctx := range workers {
		ctx := ctx
		g.Go(func() error { return worker(ctx) })
	}
	_ = g.Wait() // workers never return errors; cancellation is via the deadline

	return bestMove, bestScore, !aborted.Load()
}

// newWorkers allocates one search context per configured thread.
func (e *Engine) newWorkers() []*searchContext {
	workers := make([]*searchContext, e.opts.Threads)
	for i := range workers {
		workers[i] = newSearchContext(e)
	}
	return workers
}

// emitInfo reports a completed depth to the OnInfo listener.
func (e *Engine) emitInfo(pos *board.Position, depth, line, score int, start time.Time) {
	if e.OnInfo == nil {
		return
	}
	e.OnInfo(SearchInfo{
		Depth:   depth,
		MultiPV: line,
		Score:   score,
		Nodes:   e.nodes.Load(),
		Elapsed: time.Since(start),
		PV:      e.PrincipalVariation(pos, depth),
	})
}

// moveToFront moves m to index 0 preserving the order of the rest, so
// the previous best is searched first at the next depth.
func moveToFront(moves []board.Move, m board.Move) {
	for i, cur := range moves {
		if cur == m {
			copy(moves[1:i+1], moves[:i])
			moves[0] = m
			return
		}
	}
}
