package engine

import (
	"math"
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/eval"
	"github.com/star-ga/NikolaChess/internal/tablebase"
)

// Score constants. A forced mate is encoded as MateScore minus the
// distance to mate in plies, so nearer mates compare strictly better.
// Anything above mateBound is a mate score.
const (
	Infinity  = 32000
	MateScore = 30000
	MaxPly    = 128
)

const mateBound = MateScore - MaxPly

// Null-move reductions by depth.
const (
	nullMoveBaseReduction = 2
	nullMoveDeepReduction = 3
	nullMoveDeepDepth     = 6
	nullMoveVerifyDepth   = 6
)

// Margins for the shallow-depth static pruning heuristics. ProbCut and
// singular-extension margins are tuning knobs exposed through Options.
const (
	futilityMarginPerDepth = 120
	razorMarginPerDepth    = 300
	probCutMinDepth        = 3
	probCutReduction       = 3
	singularMinDepth       = 8
	lmrMinDepth            = 3
	lmrFullMoves           = 3
)

var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46 * math.Log(float64(d)) * math.Log(float64(m)) / 1024.0)
		}
	}
}

// searchContext is the per-worker search state. Everything here is
// owned by a single goroutine; only the Engine's transposition table
// is shared.
type searchContext struct {
	eng     *Engine
	orderer *MoveOrderer
	history map[uint64]int // positions played before the root
	path    []uint64       // backing storage for the root path slice
	nodes   uint64
	stopped bool
}

func newSearchContext(eng *Engine) *searchContext {
	return &searchContext{
		eng:     eng,
		orderer: NewMoveOrderer(),
		history: gameHistoryCounts(eng.history),
		path:    make([]uint64, 0, MaxPly+8),
	}
}

// checkTime polls the deadline every so many nodes. Polling keeps the
// hot path cheap; a worker may overrun the budget by at most the gap
// between polls.
func (ctx *searchContext) checkTime() bool {
	if ctx.stopped {
		return true
	}
	if ctx.nodes&2047 == 0 {
		if ctx.eng.stop.Load() || time.Now().After(ctx.eng.deadline) {
			ctx.stopped = true
		}
	}
	return ctx.stopped
}

// staticEval returns the evaluation from the side to move's point of
// view, the convention negamax expects.
func staticEval(pos *board.Position) int {
	score := eval.Evaluate(pos)
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// negamax is the alpha-beta core. Scores are relative to the side to
// move at pos; each recursive call negates and swaps the bounds. path
// holds the hashes from the root down to the parent of pos; it is
// passed by value so sibling branches never see each other's visits.
func (ctx *searchContext) negamax(pos *board.Position, depth, ply, alpha, beta int, prev board.Move, path []uint64) int {
	ctx.nodes++
	if ctx.checkTime() {
		return 0
	}

	// Draw checks come before everything else.
	if IsFiftyMoveDraw(pos) || IsInsufficientMaterial(pos) {
		return 0
	}
	if isPathRepetition(ctx.history, path, pos.Hash) {
		return 0
	}
	childPath := append(path, pos.Hash)

	alphaOrig := alpha
	hashMove := board.NoMove

	entry, ok := ctx.eng.tt.Probe(pos.Hash)
	if ok {
		hashMove = entry.BestMove
		if entry.Depth >= depth && ply > 0 {
			score := scoreFromTT(entry.Score, ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	// Endgame tablebase beats any heuristic once few pieces remain.
	if ctx.eng.prober != nil && ply > 0 && pos.CountPieces() <= ctx.eng.opts.TablebasePieces {
		if result := ctx.eng.prober.Probe(pos); result.Outcome != tablebase.Unknown {
			return tablebase.OutcomeScore(result.Outcome, ply, mateBound)
		}
	}

	if depth <= 0 || ply >= MaxPly {
		return ctx.quiescence(pos, alpha, beta, ply)
	}

	inCheck := pos.InCheck(pos.SideToMove)
	if inCheck {
		depth++
	}

	// Null-move pruning: give the opponent a free move and see whether
	// the position still fails high. Skipped in check and in pawn-only
	// endgames where zugzwang makes the trick unsound.
	if depth >= 2 && !inCheck && beta < mateBound &&
		pos.HasNonPawnMaterial(pos.SideToMove) && prev != board.NoMove {
		r := nullMoveBaseReduction
		if depth >= nullMoveDeepDepth {
			r = nullMoveDeepReduction
		}
		null := pos.MakeNullMove()
		nullScore := -ctx.negamax(&null, depth-1-r, ply+1, -beta, -beta+1, board.NoMove, childPath)
		if ctx.stopped {
			return 0
		}
		if nullScore >= beta {
			if nullScore >= mateBound {
				nullScore = beta
			}
			if depth >= nullMoveVerifyDepth {
				// Re-search the node itself, so pass the parent path.
				verified := ctx.negamax(pos, depth-r-1, ply, beta-1, beta, prev, path)
				if ctx.stopped {
					return 0
				}
				if verified >= beta {
					return nullScore
				}
			} else {
				return nullScore
			}
		}
	}

	if !inCheck && alpha > -mateBound && beta < mateBound {
		ev := staticEval(pos)

		// Reverse futility: the static score is so far above beta
		// that a real search is almost certain to fail high too.
		if depth <= 2 && ev-futilityMarginPerDepth*depth >= beta {
			return ev
		}

		// Razoring: hopelessly below alpha at shallow depth, ask the
		// tactical search to confirm before giving up on the node.
		if depth <= 2 && ev+razorMarginPerDepth*depth <= alpha {
			score := ctx.quiescence(pos, alpha, beta, ply)
			if ctx.stopped {
				return 0
			}
			if score <= alpha {
				return score
			}
		}

		// ProbCut: a winning capture confirmed by a reduced search far
		// above beta lets us cut without searching to full depth.
		if depth >= probCutMinDepth {
			probCutBeta := beta + ctx.eng.opts.ProbCutMargin
			for _, m := range pos.GenerateTacticalMoves() {
				if seeEstimate(pos, m) < 0 {
					continue
				}
				child := pos.MakeMove(m)
				score := -ctx.negamax(&child, depth-probCutReduction, ply+1, -probCutBeta, -probCutBeta+1, m, childPath)
				if ctx.stopped {
					return 0
				}
				if score >= probCutBeta {
					return score
				}
			}
		}
	}

	moves := pos.GenerateMoves()
	if len(moves) == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	// A table move is only trusted after it shows up in the legal set.
	if hashMove != board.NoMove &&
		board.FindMove(moves, hashMove.From, hashMove.To, hashMove.Promotion) == board.NoMove {
		hashMove = board.NoMove
	}

	ctx.orderer.Order(pos, moves, hashMove, ply, prev)

	// Singular extension: if every alternative falls well short of the
	// table move's score, that move is the position's single idea and
	// deserves an extra ply.
	singular := false
	if depth >= singularMinDepth && hashMove != board.NoMove && ok &&
		entry.Flag != TTUpperBound && entry.Depth >= depth-3 {
		ttScore := scoreFromTT(entry.Score, ply)
		if ttScore > -mateBound && ttScore < mateBound {
			singular = ctx.isSingular(pos, moves, hashMove, ttScore, depth, ply, childPath)
			if ctx.stopped {
				return 0
			}
		}
	}

	bestScore := -Infinity
	bestMove := board.NoMove
	moveCount := 0

	for _, m := range moves {
		moveCount++
		child := pos.MakeMove(m)

		extension := 0
		if singular && m == hashMove {
			extension = 1
		}
		newDepth := depth - 1 + extension

		var score int
		if moveCount == 1 {
			score = -ctx.negamax(&child, newDepth, ply+1, -beta, -alpha, m, childPath)
		} else {
			// Late quiet moves are searched reduced first. A reduced
			// search that still beats alpha earns the full re-search.
			r := 0
			if depth >= lmrMinDepth && moveCount > lmrFullMoves &&
				m.IsQuiet() && !inCheck && extension == 0 {
				r = lmrReductions[min(depth, 63)][min(moveCount, 63)]
			}
			score = -ctx.negamax(&child, newDepth-r, ply+1, -alpha-1, -alpha, m, childPath)
			if score > alpha && r > 0 {
				score = -ctx.negamax(&child, newDepth, ply+1, -alpha-1, -alpha, m, childPath)
			}
			if score > alpha && score < beta {
				score = -ctx.negamax(&child, newDepth, ply+1, -beta, -alpha, m, childPath)
			}
		}
		if ctx.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			ctx.orderer.RecordCutoff(m, depth, ply, prev)
			break
		}
	}

	flag := TTExact
	if bestScore <= alphaOrig {
		flag = TTUpperBound
	} else if bestScore >= beta {
		flag = TTLowerBound
	}
	ctx.eng.tt.Store(pos.Hash, TTEntry{
		Depth:    depth,
		Score:    scoreToTT(bestScore, ply),
		Flag:     flag,
		BestMove: bestMove,
	})
	return bestScore
}

// isSingular probes whether all alternatives to the table move fail
// well below its score.
func (ctx *searchContext) isSingular(pos *board.Position, moves []board.Move, hashMove board.Move, ttScore, depth, ply int, childPath []uint64) bool {
	singularBeta := ttScore - ctx.eng.opts.SingularMargin*depth/8
	probeDepth := depth/2 - 1
	for _, m := range moves {
		if m == hashMove {
			continue
		}
		child := pos.MakeMove(m)
		score := -ctx.negamax(&child, probeDepth, ply+1, -singularBeta, -singularBeta+1, m, childPath)
		if ctx.stopped {
			return false
		}
		if score >= singularBeta {
			return false
		}
	}
	return true
}

// quiescence resolves captures and promotions at the horizon so the
// main search never returns a score mid-exchange. Termination needs no
// depth cap: every recursion removes material or promotes.
func (ctx *searchContext) quiescence(pos *board.Position, alpha, beta, ply int) int {
	ctx.nodes++
	if ctx.checkTime() {
		return 0
	}

	standPat := staticEval(pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	if ply >= MaxPly {
		return standPat
	}

	moves := pos.GenerateTacticalMoves()
	ctx.orderer.Order(pos, moves, board.NoMove, ply, board.NoMove)

	best := standPat
	for _, m := range moves {
		// Exchanges that lose material on the spot cannot raise alpha.
		if m.IsCapture() && !m.IsPromotion() && seeEstimate(pos, m) < 0 {
			continue
		}
		child := pos.MakeMove(m)
		score := -ctx.quiescence(&child, -beta, -alpha, ply+1)
		if ctx.stopped {
			return 0
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
