package tablebase

import (
	"encoding/binary"
	"log"
	"sync"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/storage"
)

// CachedProber wraps another prober with an in-memory map plus an
// optional persistent layer, so a position is probed over the network
// at most once per lifetime of the cache.
type CachedProber struct {
	inner Prober
	store *storage.Storage // nil disables the persistent layer

	mu      sync.RWMutex
	cache   map[uint64]ProbeResult
	maxSize int

	hits   uint64
	misses uint64
}

// NewCachedProber wraps inner with an in-memory cache of at most
// cacheSize entries. store may be nil.
func NewCachedProber(inner Prober, store *storage.Storage, cacheSize int) *CachedProber {
	if cacheSize <= 0 {
		cacheSize = 100000
	}
	return &CachedProber{
		inner:   inner,
		store:   store,
		cache:   make(map[uint64]ProbeResult, cacheSize),
		maxSize: cacheSize,
	}
}

func (cp *CachedProber) Probe(pos *board.Position) ProbeResult {
	cp.mu.RLock()
	result, ok := cp.cache[pos.Hash]
	cp.mu.RUnlock()
	if ok {
		cp.mu.Lock()
		cp.hits++
		cp.mu.Unlock()
		return result
	}

	if result, ok = cp.loadPersistent(pos.Hash); !ok {
		result = cp.inner.Probe(pos)
		cp.savePersistent(pos.Hash, result)
	}

	cp.mu.Lock()
	cp.misses++
	if len(cp.cache) >= cp.maxSize {
		// Crude eviction: drop half the entries. Probe traffic is
		// bursty at the end of games, precision is not worth an LRU.
		i := 0
		for k := range cp.cache {
			if i >= cp.maxSize/2 {
				break
			}
			delete(cp.cache, k)
			i++
		}
	}
	cp.cache[pos.Hash] = result
	cp.mu.Unlock()
	return result
}

// ProbeRoot is never cached: it carries a move, which the persistent
// encoding does not, and it runs once per game position at most.
func (cp *CachedProber) ProbeRoot(pos *board.Position) RootResult {
	return cp.inner.ProbeRoot(pos)
}

func (cp *CachedProber) MaxPieces() int { return cp.inner.MaxPieces() }

// Hits reports the number of probes served from the in-memory cache.
func (cp *CachedProber) Hits() uint64 {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return cp.hits
}

// PersistentCacheEnabled reports whether probe results are written
// through to an on-disk store.
func (cp *CachedProber) PersistentCacheEnabled() bool { return cp.store != nil }

// HitRate reports the in-memory cache hit rate as a percentage.
func (cp *CachedProber) HitRate() float64 {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	total := cp.hits + cp.misses
	if total == 0 {
		return 0
	}
	return float64(cp.hits) / float64(total) * 100
}

// Persistent entries are 9 bytes: outcome then big-endian DTZ.
func (cp *CachedProber) loadPersistent(key uint64) (ProbeResult, bool) {
	if cp.store == nil {
		return ProbeResult{}, false
	}
	value, ok, err := cp.store.GetTablebaseResult(key)
	if err != nil {
		log.Printf("tablebase: cache read failed: %v", err)
		return ProbeResult{}, false
	}
	if !ok || len(value) != 9 {
		return ProbeResult{}, false
	}
	return ProbeResult{
		Outcome: Outcome(value[0]),
		DTZ:     int(int64(binary.BigEndian.Uint64(value[1:]))),
	}, true
}

func (cp *CachedProber) savePersistent(key uint64, result ProbeResult) {
	if cp.store == nil || result.Outcome == Unknown {
		return
	}
	value := make([]byte, 9)
	value[0] = byte(result.Outcome)
	binary.BigEndian.PutUint64(value[1:], uint64(int64(result.DTZ)))
	if err := cp.store.PutTablebaseResult(key, value); err != nil {
		log.Printf("tablebase: cache write failed: %v", err)
	}
}
