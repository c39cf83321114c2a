//go:build !windows

package packages

import (
	"os"
	"path/filepath"
)

// LocalAppData returns the per-user local application data folder. Outside
// Windows it follows the XDG data home, as the .NET runtime does.
func LocalAppData() (string, error) {
	if env := os.Getenv("LOCALAPPDATA"); env != "" {
		return env, nil
	}

	if env := os.Getenv("XDG_DATA_HOME"); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}
