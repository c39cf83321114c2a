//go:build windows

package packages

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// LocalAppData returns the per-user local application data folder.
func LocalAppData() (string, error) {
	path, err := windows.KnownFolderPath(windows.FOLDERID_LocalAppData, 0)
	if err == nil && path != "" {
		return path, nil
	}

	if env := os.Getenv("LOCALAPPDATA"); env != "" {
		return env, nil
	}

	if err == nil {
		err = errors.New("local application data folder is not set")
	}
	return "", err
}
