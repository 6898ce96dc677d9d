package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keySettings = "settings"
	keyStats    = "stats"
)

// Tablebase cache entries live under their own key prefix so settings
// and statistics never collide with position keys.
var tablebasePrefix = []byte("tb/")

// EngineSettings holds persisted engine configuration between runs.
type EngineSettings struct {
	Threads        int       `json:"threads"`
	TTShards       int       `json:"tt_shards"`
	MultiPV        int       `json:"multi_pv"`
	MoveOverheadMs int       `json:"move_overhead_ms"`
	LimitStrength  bool      `json:"limit_strength"`
	Strength       int       `json:"strength"`
	BookFile       string    `json:"book_file"`
	UseTablebase   bool      `json:"use_tablebase"`
	LastUsed       time.Time `json:"last_used"`
}

// DefaultSettings returns the configuration used on first run.
func DefaultSettings() *EngineSettings {
	return &EngineSettings{
		Threads:        1,
		TTShards:       64,
		MultiPV:        1,
		MoveOverheadMs: 30,
		Strength:       20,
		LastUsed:       time.Now(),
	}
}

// SearchStats accumulates lifetime search statistics.
type SearchStats struct {
	Searches   uint64        `json:"searches"`
	Nodes      uint64        `json:"nodes"`
	BookHits   uint64        `json:"book_hits"`
	TBHits     uint64        `json:"tb_hits"`
	SearchTime time.Duration `json:"search_time"`
}

// Storage wraps BadgerDB for persistent engine state.
type Storage struct {
	db *badger.DB
}

// Open creates a storage instance rooted at dir. An empty dir uses the
// platform default data directory.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		dir, err = GetDatabaseDir()
		if err != nil {
			return nil, fmt.Errorf("resolve database dir: %w", err)
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logging is too chatty for a UCI process.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSettings persists the engine configuration.
func (s *Storage) SaveSettings(settings *EngineSettings) error {
	settings.LastUsed = time.Now()
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySettings), data)
	})
}

// LoadSettings loads the engine configuration, falling back to defaults
// when none has been saved yet.
func (s *Storage) LoadSettings() (*EngineSettings, error) {
	settings := DefaultSettings()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySettings))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, settings)
		})
	})
	return settings, err
}

// SaveStats persists the lifetime statistics.
func (s *Storage) SaveStats(stats *SearchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads the lifetime statistics, empty if never saved.
func (s *Storage) LoadStats() (*SearchStats, error) {
	stats := &SearchStats{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	return stats, err
}

// PutTablebaseResult caches a tablebase verdict for the position key.
func (s *Storage) PutTablebaseResult(key uint64, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tablebaseKey(key), value)
	})
}

// GetTablebaseResult returns the cached verdict for the position key,
// or ok=false when the position has never been probed.
func (s *Storage) GetTablebaseResult(key uint64) (value []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tablebaseKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, ok, err
}

func tablebaseKey(key uint64) []byte {
	buf := make([]byte, len(tablebasePrefix)+8)
	copy(buf, tablebasePrefix)
	binary.BigEndian.PutUint64(buf[len(tablebasePrefix):], key)
	return buf
}
