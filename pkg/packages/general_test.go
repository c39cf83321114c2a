package packages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func TestListSubdirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "17.0_abc", "17.0_def", "16.0_123", "170.1", "Extensions")
	require.NoError(t, os.WriteFile(filepath.Join(root, "17.0_file"), []byte("x"), 0o644))

	tests := []struct {
		name    string
		path    string
		pattern string
		want    []string
	}{
		{
			name:    "major version wildcard",
			path:    root,
			pattern: "17.*",
			want: []string{
				filepath.Join(root, "17.0_abc"),
				filepath.Join(root, "17.0_def"),
			},
		},
		{
			name:    "everything",
			path:    root,
			pattern: "*",
			want: []string{
				filepath.Join(root, "16.0_123"),
				filepath.Join(root, "17.0_abc"),
				filepath.Join(root, "17.0_def"),
				filepath.Join(root, "170.1"),
				filepath.Join(root, "Extensions"),
			},
		},
		{
			name:    "no match",
			path:    root,
			pattern: "15.*",
		},
		{
			name:    "missing path",
			path:    filepath.Join(root, "does", "not", "exist"),
			pattern: "*",
		},
		{
			name:    "path is a file",
			path:    filepath.Join(root, "17.0_file"),
			pattern: "*",
		},
		{
			name:    "bad pattern",
			path:    root,
			pattern: "[",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListSubdirectories(tt.path, tt.pattern)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestListSubdirectoriesFollowsLinks(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks not available: %v", err)
	}

	got := ListSubdirectories(root, "*")
	assert.Equal(t, []string{filepath.Join(root, "linked")}, got)
}
