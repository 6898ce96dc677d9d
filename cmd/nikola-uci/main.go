package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/star-ga/NikolaChess/internal/engine"
	"github.com/star-ga/NikolaChess/internal/storage"
	"github.com/star-ga/NikolaChess/internal/tablebase"
	"github.com/star-ga/NikolaChess/internal/uci"
)

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	dbDir := flag.String("db", "", "database directory (default: per-user data dir)")
	noPersist := flag.Bool("nopersist", false, "do not load or save settings")
	flag.Parse()

	// GUIs launch the engine without arguments, so the profile path can
	// also come from the environment.
	if *cpuprofile == "" {
		*cpuprofile = os.Getenv("CPUPROFILE")
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("create cpu profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("start cpu profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	protocol := uci.New(os.Stdin, os.Stdout)

	var store *storage.Storage
	if !*noPersist {
		var err error
		store, err = storage.Open(*dbDir)
		if err != nil {
			// Persistence is a convenience. The engine still runs
			// with defaults when the database is unavailable.
			log.Printf("settings database unavailable: %v", err)
		}
	}
	if store != nil {
		defer store.Close()
		settings, err := store.LoadSettings()
		if err != nil {
			log.Printf("load settings: %v", err)
			settings = storage.DefaultSettings()
		}
		protocol.Configure(store, optionsFromSettings(settings),
			settings.BookFile, settings.UseTablebase, tablebase.DefaultEndpoint)
		if gamesDir, err := storage.GetGamesDir(); err == nil {
			protocol.SetGamesDir(gamesDir)
		} else {
			log.Printf("games directory unavailable: %v", err)
		}
	}

	protocol.Run()

	if store != nil {
		settings := settingsFromOptions(protocol.Options())
		settings.BookFile = protocol.BookFile()
		settings.UseTablebase = protocol.UseTablebase()
		settings.LastUsed = time.Now()
		if err := store.SaveSettings(settings); err != nil {
			log.Printf("save settings: %v", err)
		}
	}
}

func optionsFromSettings(s *storage.EngineSettings) engine.Options {
	opts := engine.DefaultOptions()
	opts.Threads = s.Threads
	opts.TTShards = s.TTShards
	opts.MultiPV = s.MultiPV
	opts.MoveOverhead = time.Duration(s.MoveOverheadMs) * time.Millisecond
	opts.LimitStrength = s.LimitStrength
	opts.Strength = s.Strength
	return opts
}

func settingsFromOptions(opts engine.Options) *storage.EngineSettings {
	return &storage.EngineSettings{
		Threads:        opts.Threads,
		TTShards:       opts.TTShards,
		MultiPV:        opts.MultiPV,
		MoveOverheadMs: int(opts.MoveOverhead / time.Millisecond),
		LimitStrength:  opts.LimitStrength,
		Strength:       opts.Strength,
	}
}
