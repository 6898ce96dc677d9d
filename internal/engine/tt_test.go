package engine

import (
	"sync"
	"testing"

	"github.com/star-ga/NikolaChess/internal/board"
)

func TestTTStoreAndProbe(t *testing.T) {
	tt := NewTranspositionTable(64)

	m := board.Move{From: board.E2, To: board.E4, Promotion: board.NoPieceType, Captured: board.NoPiece}
	tt.Store(42, TTEntry{Depth: 5, Score: 120, Flag: TTExact, BestMove: m})

	entry, ok := tt.Probe(42)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if entry.Depth != 5 || entry.Score != 120 || entry.Flag != TTExact || entry.BestMove != m {
		t.Errorf("probe returned %+v", entry)
	}

	if _, ok := tt.Probe(43); ok {
		t.Error("unknown key should miss")
	}
}

func TestTTDepthPreferringReplacement(t *testing.T) {
	tt := NewTranspositionTable(64)

	tt.Store(7, TTEntry{Depth: 3, Score: 100, Flag: TTExact})
	tt.Store(7, TTEntry{Depth: 1, Score: -500, Flag: TTExact})

	entry, ok := tt.Probe(7)
	if !ok {
		t.Fatal("entry vanished")
	}
	if entry.Depth != 3 || entry.Score != 100 {
		t.Errorf("shallow store overwrote deeper entry: %+v", entry)
	}

	// Equal depth replaces: the newer analysis wins a tie.
	tt.Store(7, TTEntry{Depth: 3, Score: 200, Flag: TTLowerBound})
	entry, _ = tt.Probe(7)
	if entry.Score != 200 || entry.Flag != TTLowerBound {
		t.Errorf("equal-depth store did not replace: %+v", entry)
	}

	tt.Store(7, TTEntry{Depth: 8, Score: 300, Flag: TTExact})
	entry, _ = tt.Probe(7)
	if entry.Depth != 8 {
		t.Errorf("deeper store did not replace: %+v", entry)
	}
}

func TestTTClear(t *testing.T) {
	tt := NewTranspositionTable(4)
	for key := uint64(0); key < 100; key++ {
		tt.Store(key, TTEntry{Depth: 1, Score: int(key)})
	}
	if tt.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", tt.Len())
	}
	tt.Clear()
	if tt.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", tt.Len())
	}
}

func TestTTShardCountFallback(t *testing.T) {
	for _, bad := range []int{0, -1, 3, 100} {
		tt := NewTranspositionTable(bad)
		if got := tt.ShardCount(); got != DefaultTTShards {
			t.Errorf("shard count %d: got %d shards, want %d", bad, got, DefaultTTShards)
		}
	}
	if tt := NewTranspositionTable(8); tt.ShardCount() != 8 {
		t.Errorf("power-of-two shard count not honored")
	}
}

func TestTTConcurrentAccess(t *testing.T) {
	tt := NewTranspositionTable(64)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := uint64(w*1000 + i)
				tt.Store(key, TTEntry{Depth: i % 10, Score: i})
				tt.Probe(key)
			}
		}(w)
	}
	wg.Wait()
	if tt.Len() != 8000 {
		t.Errorf("Len() = %d, want 8000", tt.Len())
	}
}

func TestMateScoreRebasing(t *testing.T) {
	// A mate found 7 plies below a node stored at ply 3 must read back
	// as the same distance when probed from ply 5.
	rootRelative := MateScore - 10
	stored := scoreToTT(rootRelative, 3)
	if got := scoreFromTT(stored, 3); got != rootRelative {
		t.Errorf("round trip at same ply: got %d, want %d", got, rootRelative)
	}
	// From a different ply the distance shifts by the ply difference.
	if got := scoreFromTT(stored, 5); got != rootRelative-2 {
		t.Errorf("probe from deeper ply: got %d, want %d", got, rootRelative-2)
	}
	// Ordinary scores pass through untouched.
	if got := scoreFromTT(scoreToTT(123, 9), 4); got != 123 {
		t.Errorf("non-mate score changed: %d", got)
	}
}
