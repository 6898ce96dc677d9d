package engine

import (
	"testing"
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
)

// testContext builds a search context with a far-away deadline.
func testContext(t *testing.T) *searchContext {
	t.Helper()
	eng := newTestEngine()
	eng.deadline = time.Now().Add(time.Minute)
	return newSearchContext(eng)
}

func TestLowerBoundEntryNarrowsWindow(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	// A deep lower bound above beta must cut the node off immediately
	// with the stored score, without searching a single child.
	ctx.eng.tt.Store(pos.Hash, TTEntry{Depth: 10, Score: 500, Flag: TTLowerBound})
	nodesBefore := ctx.nodes
	score := ctx.negamax(&pos, 2, 1, 0, 400, board.NoMove, nil)
	if score != 500 {
		t.Errorf("score = %d, want the stored bound 500", score)
	}
	if ctx.nodes != nodesBefore+1 {
		t.Errorf("node expanded children despite the cutoff: %d nodes", ctx.nodes-nodesBefore)
	}
}

func TestUpperBoundEntryNarrowsWindow(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	// An upper bound below alpha empties the window the same way.
	ctx.eng.tt.Store(pos.Hash, TTEntry{Depth: 10, Score: -300, Flag: TTUpperBound})
	score := ctx.negamax(&pos, 2, 1, -100, 100, board.NoMove, nil)
	if score != -300 {
		t.Errorf("score = %d, want the stored bound -300", score)
	}
}

func TestExactEntryReturnsDirectly(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	ctx.eng.tt.Store(pos.Hash, TTEntry{Depth: 10, Score: 42, Flag: TTExact})
	if score := ctx.negamax(&pos, 2, 1, -Infinity, Infinity, board.NoMove, nil); score != 42 {
		t.Errorf("score = %d, want stored exact 42", score)
	}
}

func TestShallowEntryDoesNotShortCircuit(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")

	// A depth-0 exact entry with a nonsense score must not be trusted
	// by a depth-3 search; the real search sees a winning queen.
	ctx.eng.tt.Store(pos.Hash, TTEntry{Depth: 0, Score: -5000, Flag: TTExact})
	score := ctx.negamax(&pos, 3, 1, -Infinity, Infinity, board.NoMove, nil)
	if score < 500 {
		t.Errorf("score = %d, shallow stale entry was trusted", score)
	}
}

func TestCheckmateScore(t *testing.T) {
	ctx := testContext(t)
	// White already checkmated (fool's mate).
	pos := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")

	score := ctx.negamax(&pos, 3, 2, -Infinity, Infinity, board.NoMove, nil)
	if score != -MateScore+2 {
		t.Errorf("mated node at ply 2 scored %d, want %d", score, -MateScore+2)
	}
}

func TestStalemateScoresZero(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "7k/5K2/6Q1/8/8/8/8/8 b - - 0 1")
	if score := ctx.negamax(&pos, 3, 2, -Infinity, Infinity, board.NoMove, nil); score != 0 {
		t.Errorf("stalemate scored %d, want 0", score)
	}
}

func TestPathRepetitionScoresZero(t *testing.T) {
	ctx := testContext(t)
	pos := mustParse(t, "4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")

	// The node's key already occurred twice in the game history.
	ctx.history = gameHistoryCounts([]uint64{pos.Hash, pos.Hash})
	if score := ctx.negamax(&pos, 4, 2, -Infinity, Infinity, board.NoMove, nil); score != 0 {
		t.Errorf("third occurrence scored %d, want 0", score)
	}

	// A single prior occurrence on the search path counts the same way.
	ctx.history = map[uint64]int{}
	path := []uint64{pos.Hash, pos.Hash}
	if score := ctx.negamax(&pos, 4, 2, -Infinity, Infinity, board.NoMove, path); score != 0 {
		t.Errorf("third path occurrence scored %d, want 0", score)
	}
	// The caller's path slice is never mutated in place.
	if len(path) != 2 {
		t.Errorf("path length = %d after search, want 2", len(path))
	}
}

func TestQuiescenceResolvesHangingQueen(t *testing.T) {
	ctx := testContext(t)
	// White to move, black queen hangs on d5; stand-pat says white is
	// down a queen but the capture resolves the exchange.
	pos := mustParse(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")

	score := ctx.quiescence(&pos, -Infinity, Infinity, 0)
	if score < 0 {
		t.Errorf("quiescence scored %d with a free queen on the board", score)
	}
}

func TestQuiescenceStandPatCutoff(t *testing.T) {
	ctx := testContext(t)
	// No tactics at all: the static score is returned as-is.
	pos := mustParse(t, "4k3/8/8/8/8/8/Q7/4K3 w - - 0 1")

	score := ctx.quiescence(&pos, -Infinity, Infinity, 0)
	if score < 500 {
		t.Errorf("quiet winning position scored %d", score)
	}
}
