package engine

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/star-ga/NikolaChess/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// DefaultTTShards is the shard count used when the caller does not
// override it. Must be a power of two.
const DefaultTTShards = 64

// TTEntry is one cached search result.
type TTEntry struct {
	Depth    int
	Score    int
	Flag     TTFlag
	BestMove board.Move
}

type ttShard struct {
	mu      sync.Mutex
	entries map[uint64]TTEntry
}

// TranspositionTable caches search results keyed by position hash.
// Keys are spread over independently locked shards so concurrent root
// workers rarely contend. Locks are held only for a single lookup or
// store, never across search recursion.
type TranspositionTable struct {
	shards []ttShard
	mask   uint64
}

// NewTranspositionTable creates a table with the given shard count.
// Counts that are not a positive power of two fall back to the default.
func NewTranspositionTable(shardCount int) *TranspositionTable {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultTTShards
	}
	tt := &TranspositionTable{
		shards: make([]ttShard, shardCount),
		mask:   uint64(shardCount - 1),
	}
	for i := range tt.shards {
		tt.shards[i].entries = make(map[uint64]TTEntry)
	}
	return tt
}

// shardFor remixes the position key before selecting a shard. Zobrist
// keys are already uniform, but the remix keeps shard choice independent
// of whatever bits the map implementation consumes.
func (tt *TranspositionTable) shardFor(key uint64) *ttShard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return &tt.shards[xxhash.Sum64(buf[:])&tt.mask]
}

// Probe looks up a position. Returns the entry and true if present.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	shard := tt.shardFor(key)
	shard.mu.Lock()
	entry, ok := shard.entries[key]
	shard.mu.Unlock()
	return entry, ok
}

// Store inserts or replaces the entry for key. An existing entry is
// replaced only when the incoming depth is not shallower, so a deep
// analysis is never clobbered by a stale shallow one.
func (tt *TranspositionTable) Store(key uint64, entry TTEntry) {
	shard := tt.shardFor(key)
	shard.mu.Lock()
	if old, ok := shard.entries[key]; !ok || entry.Depth >= old.Depth {
		shard.entries[key] = entry
	}
	shard.mu.Unlock()
}

// Clear discards all entries.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		shard := &tt.shards[i]
		shard.mu.Lock()
		shard.entries = make(map[uint64]TTEntry)
		shard.mu.Unlock()
	}
}

// ShardCount reports how many shards the table was built with.
func (tt *TranspositionTable) ShardCount() int { return len(tt.shards) }

// Len reports the total number of stored entries across all shards.
func (tt *TranspositionTable) Len() int {
	var n int
	for i := range tt.shards {
		shard := &tt.shards[i]
		shard.mu.Lock()
		n += len(shard.entries)
		shard.mu.Unlock()
	}
	return n
}

// scoreToTT converts a score for storage. Mate scores are relative to
// the root, but the table is probed from arbitrary plies, so they are
// rebased to be relative to the storing node.
func scoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

// scoreFromTT undoes scoreToTT for the probing node's ply.
func scoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}
