// Package workdir defines the on-disk layout of a parley data directory.
package workdir

import (
	"os"
	"path/filepath"
)

// Default returns ~/.parley, the data directory used when none is given.
func Default() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".parley")
}

// DBPath returns the app-owned parley.db path.
func DBPath(dir string) string {
	return filepath.Join(dir, "parley.db")
}

// UploadsDir returns the attachment storage directory.
func UploadsDir(dir string) string {
	return filepath.Join(dir, "uploads")
}

// LogDir returns the log directory.
func LogDir(dir string) string {
	return filepath.Join(dir, "logs")
}

// LogPath returns the daemon log file path.
func LogPath(dir string) string {
	return filepath.Join(LogDir(dir), "parleyd.log")
}

// ConfigPath returns the config file path.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// EnsureDirs creates the data directory tree with proper permissions.
func EnsureDirs(dir string) error {
	dirs := []string{
		dir,
		UploadsDir(dir),
		LogDir(dir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
