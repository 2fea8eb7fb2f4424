package fs

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default directory for review records.
// Uses XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/gtcheck,
// or system temp directory if home is unavailable.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "gtcheck")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "gtcheck")
	}
	return filepath.Join(home, ".local", "share", "gtcheck")
}
