package storage

import (
	"testing"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	loaded, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if loaded.Threads != 1 || loaded.TTShards != 64 {
		t.Errorf("unexpected defaults: %+v", loaded)
	}

	loaded.Threads = 4
	loaded.BookFile = "book.bin"
	loaded.UseTablebase = true
	if err := s.SaveSettings(loaded); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	again, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if again.Threads != 4 || again.BookFile != "book.bin" || !again.UseTablebase {
		t.Errorf("settings did not survive a round trip: %+v", again)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.Searches != 0 {
		t.Errorf("fresh stats should be zero, got %+v", stats)
	}

	stats.Searches = 3
	stats.Nodes = 123456
	if err := s.SaveStats(stats); err != nil {
		t.Fatalf("SaveStats: %v", err)
	}

	again, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if again.Searches != 3 || again.Nodes != 123456 {
		t.Errorf("stats did not survive a round trip: %+v", again)
	}
}

func TestTablebaseCache(t *testing.T) {
	s := openTestStorage(t)

	if _, ok, err := s.GetTablebaseResult(42); err != nil || ok {
		t.Fatalf("unexpected hit for unseen key: ok=%v err=%v", ok, err)
	}

	if err := s.PutTablebaseResult(42, []byte("win:3")); err != nil {
		t.Fatalf("PutTablebaseResult: %v", err)
	}
	value, ok, err := s.GetTablebaseResult(42)
	if err != nil {
		t.Fatalf("GetTablebaseResult: %v", err)
	}
	if !ok || string(value) != "win:3" {
		t.Errorf("got %q ok=%v, want win:3", value, ok)
	}

	// A different key must not alias.
	if _, ok, _ := s.GetTablebaseResult(43); ok {
		t.Error("key 43 should miss")
	}
}
