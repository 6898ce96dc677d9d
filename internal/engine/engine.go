// Package engine implements the chess AI search: iterative-deepening
// alpha-beta with a sharded transposition table, move-ordering
// heuristics, quiescence search and draw detection.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/tablebase"
)

// Options configures a search engine instance. Everything is set at
// construction or between searches, never from inside the recursion.
type Options struct {
	Threads         int           // root worker count
	TTShards        int           // transposition table shard count, power of two
	MultiPV         int           // number of principal variations to report
	MoveOverhead    time.Duration // latency reserve subtracted from clock budgets
	LimitStrength   bool          // cap search depth for weaker play
	Strength        int           // 0..20, effective only when LimitStrength is set
	ProbCutMargin   int           // margin above beta for ProbCut verification
	SingularMargin  int           // per-depth margin for singular-extension probes
	TablebasePieces int           // probe the tablebase at or below this piece count
}

// DefaultOptions returns the tournament defaults.
func DefaultOptions() Options {
	return Options{
		Threads:         1,
		TTShards:        DefaultTTShards,
		MultiPV:         1,
		MoveOverhead:    30 * time.Millisecond,
		Strength:        20,
		ProbCutMargin:   200,
		SingularMargin:  64,
		TablebasePieces: 5,
	}
}

// normalize clamps option values into their supported ranges.
func (o *Options) normalize() {
	if o.Threads < 1 {
		o.Threads = 1
	}
	if o.MultiPV < 1 {
		o.MultiPV = 1
	}
	if o.MultiPV > 8 {
		o.MultiPV = 8
	}
	if o.Strength < 0 {
		o.Strength = 0
	}
	if o.Strength > 20 {
		o.Strength = 20
	}
	if o.ProbCutMargin <= 0 {
		o.ProbCutMargin = 200
	}
	if o.SingularMargin <= 0 {
		o.SingularMargin = 64
	}
	if o.TablebasePieces < 0 {
		o.TablebasePieces = 0
	}
}

// SearchInfo is a progress report emitted after each completed depth.
type SearchInfo struct {
	Depth   int
	MultiPV int // 1-based line index
	Score   int
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// Engine owns the shared search state: the transposition table, the
// configured collaborators, and the deadline the workers poll. One
// Engine serves one game at a time; FindBestMove is not reentrant.
type Engine struct {
	opts    Options
	tt      *TranspositionTable
	prober  tablebase.Prober
	clock   Clock
	history []uint64

	stop     atomic.Bool
	deadline time.Time
	nodes    atomic.Uint64

	// OnInfo, when set, receives a report after every completed depth.
	OnInfo func(SearchInfo)
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	opts.normalize()
	return &Engine{
		opts: opts,
		tt:   NewTranspositionTable(opts.TTShards),
	}
}

// SetProber installs an endgame tablebase. Passing nil removes it.
func (e *Engine) SetProber(p tablebase.Prober) { e.prober = p }

// SetClock updates the game clock state used when FindBestMove is
// called without an explicit time limit.
func (e *Engine) SetClock(c Clock) { e.clock = c }

// SetPositionHistory installs the hashes of the positions that occurred
// in the game before the position about to be searched, so repetitions
// that straddle the root are detected.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.history = append(e.history[:0], hashes...)
}

// Stop asks a running search to finish as soon as possible. The search
// still returns the best move from the last completed depth.
func (e *Engine) Stop() { e.stop.Store(true) }

// Nodes reports the node count of the last search.
func (e *Engine) Nodes() uint64 { return e.nodes.Load() }

// FindBestMove runs an iterative-deepening search and returns the best
// move found. A non-positive timeLimitMs derives the budget from the
// clock state, falling back to a fixed default. The returned move is
// NoMove only when the position has no legal moves.
func (e *Engine) FindBestMove(pos *board.Position, maxDepth int, timeLimitMs int) board.Move {
	move, _ := e.Search(pos, maxDepth, timeLimitMs)
	return move
}

// Search is FindBestMove plus the score of the chosen move, from the
// side to move's point of view.
func (e *Engine) Search(pos *board.Position, maxDepth int, timeLimitMs int) (board.Move, int) {
	budget := time.Duration(timeLimitMs) * time.Millisecond
	if timeLimitMs <= 0 {
		budget = ComputeTimeBudget(e.clock, e.opts.MoveOverhead)
	}

	e.stop.Store(false)
	e.nodes.Store(0)
	e.deadline = time.Now().Add(budget)
	e.tt.Clear()

	if e.opts.LimitStrength {
		if capped := 1 + e.opts.Strength; maxDepth > capped {
			maxDepth = capped
		}
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	if maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	return e.searchRoot(pos, maxDepth)
}
