package packages

import (
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// ListSubdirectories returns the directories directly under path whose name
// matches pattern. Missing or unreadable paths give an empty result.
func ListSubdirectories(path, pattern string) []string {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil
	}

	dir, err := os.ReadDir(path)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, d := range dir {
		if !g.Match(d.Name()) {
			continue
		}

		full := filepath.Join(path, d.Name())
		if !d.IsDir() {
			// follow links and junctions
			if d.Type()&(os.ModeSymlink|os.ModeIrregular) == 0 {
				continue
			}
			fi, err := os.Stat(full)
			if err != nil || !fi.IsDir() {
				continue
			}
		}

		dirs = append(dirs, full)
	}

	return dirs
}
