package packages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAppData lays out <root>/Microsoft/VisualStudio/<version>/Extensions/<ext>
// with a manifest.json whose id is the extension folder name.
func newAppData(t *testing.T, layout map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	vs := filepath.Join(root, "Microsoft", "VisualStudio")

	for versionDir, exts := range layout {
		require.NoError(t, os.MkdirAll(filepath.Join(vs, versionDir, "Extensions"), 0o755))
		for _, ext := range exts {
			dir := filepath.Join(vs, versionDir, "Extensions", ext)
			require.NoError(t, os.MkdirAll(dir, 0o755))
			manifest := `{"id":"` + ext + `","version":"1.0"}`
			require.NoError(t, os.WriteFile(filepath.Join(dir, jsonManifest), []byte(manifest), 0o644))
		}
	}

	return root
}

func ids(pkgs []*Package) []string {
	var out []string
	for _, p := range pkgs {
		out = append(out, p.ID)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := newAppData(t, map[string][]string{
		"17.0_aaaa":     {"ext-a", "ext-b"},
		"17.0_bbbbExp":  {"ext-c"},
		"16.0_cccc":     {"old"},
		"170.0_dddd":    {"wrong-major"},
		"17.4_specific": {"ext-d"},
	})

	tests := []struct {
		name    string
		version string
		want    []string
	}{
		{
			name:    "major version only",
			version: "17.4.1",
			want:    []string{"ext-a", "ext-b", "ext-c", "ext-d"},
		},
		{
			name:    "full vendor version",
			version: "17.4.33103.184",
			want:    []string{"ext-a", "ext-b", "ext-c", "ext-d"},
		},
		{
			name:    "older major",
			version: "16.11.5",
			want:    []string{"old"},
		},
		{
			name:    "no folders for version",
			version: "15.9",
		},
		{
			name:    "unparseable version",
			version: "not-a-version",
		},
		{
			name:    "single component",
			version: "17",
		},
		{
			name:    "prerelease",
			version: "17.4-pre",
		},
		{
			name:    "build metadata",
			version: "17.4+abc",
		},
		{
			name:    "too many components",
			version: "17.4.1.2.3",
		},
		{
			name:    "v prefix",
			version: "v17.4",
		},
		{
			name:    "empty version",
			version: "",
		},
	}

	d := NewDiscoverer(root)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Discover(tt.version)
			assert.Equal(t, tt.want, ids(got))
			for _, p := range got {
				assert.True(t, p.IsExtension)
				assert.Equal(t, OriginUser, p.Origin)
			}
		})
	}
}

func TestDiscoverSkipsBadFolders(t *testing.T) {
	root := newAppData(t, map[string][]string{
		"17.0_aaaa": {"good"},
	})
	exts := filepath.Join(root, "Microsoft", "VisualStudio", "17.0_aaaa", "Extensions")

	// neither manifest
	require.NoError(t, os.MkdirAll(filepath.Join(exts, "empty"), 0o755))

	// malformed manifest
	broken := filepath.Join(exts, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, jsonManifest), []byte(`{`), 0o644))

	// stray file next to the extension folders
	require.NoError(t, os.WriteFile(filepath.Join(exts, "extensions.configurationchanged"), nil, 0o644))

	got := NewDiscoverer(root).Discover("17.2")
	assert.Equal(t, []string{"good"}, ids(got))
}

func TestDiscoverMissingRoot(t *testing.T) {
	d := NewDiscoverer(filepath.Join(t.TempDir(), "nothing-here"))
	assert.Empty(t, d.Discover("17.0"))
}

func TestDiscoverRescans(t *testing.T) {
	root := newAppData(t, map[string][]string{
		"17.0_aaaa": {"first"},
	})
	d := NewDiscoverer(root)
	assert.Equal(t, []string{"first"}, ids(d.Discover("17.0")))

	dir := filepath.Join(root, "Microsoft", "VisualStudio", "17.0_aaaa", "Extensions", "second")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, jsonManifest), []byte(`{"id":"second"}`), 0o644))

	assert.Equal(t, []string{"first", "second"}, ids(d.Discover("17.0")))
}
