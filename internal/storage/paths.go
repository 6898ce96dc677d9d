// Package storage persists engine settings, search statistics and the
// tablebase probe cache across runs.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "nikolachess"

// GetDataDir returns the platform-specific data directory.
// - macOS: ~/Library/Application Support/nikolachess/
// - Linux: ~/.local/share/nikolachess/
// - Windows: %APPDATA%/nikolachess/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Linux and other Unix-like systems, honoring XDG_DATA_HOME.
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDatabaseDir returns the directory holding the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", err
	}
	return dbDir, nil
}

// GetGamesDir returns the directory where exported PGN games are written.
func GetGamesDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	gamesDir := filepath.Join(dataDir, "games")
	if err := os.MkdirAll(gamesDir, 0o755); err != nil {
		return "", err
	}
	return gamesDir, nil
}
