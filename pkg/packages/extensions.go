package packages

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/kvesta/vsdetect/config"
)

// Discoverer finds user-installed extensions for a Visual Studio version.
type Discoverer struct {
	// Root is <LocalAppData>/Microsoft/VisualStudio.
	Root string
}

// NewDiscoverer returns a Discoverer rooted in the given local application
// data folder.
func NewDiscoverer(localAppData string) *Discoverer {
	return &Discoverer{
		Root: filepath.Join(localAppData, "Microsoft", "VisualStudio"),
	}
}

// parseVSVersion accepts two to four dot-separated numeric components.
func parseVSVersion(s string) (*version.Version, error) {
	v, err := version.NewVersion(s)
	if err != nil {
		return nil, err
	}

	if v.Prerelease() != "" || v.Metadata() != "" || strings.HasPrefix(s, "v") {
		return nil, fmt.Errorf("%q is not a numeric version", s)
	}
	if n := strings.Count(s, ".") + 1; n < 2 || n > 4 {
		return nil, fmt.Errorf("%q must have two to four components", s)
	}

	return v, nil
}

// Discover returns the extensions installed for the major version of
// vsVersion, in scan order. An unparseable version gives no result.
func (d *Discoverer) Discover(vsVersion string) []*Package {
	v, err := parseVSVersion(vsVersion)
	if err != nil {
		config.Logger.Debug("Unparseable Visual Studio version", "version", vsVersion, "err", err)
		return nil
	}

	pattern := fmt.Sprintf("%d.*", v.Segments()[0])

	var exts []*Package
	for _, versionDir := range ListSubdirectories(d.Root, pattern) {
		extensionsDir := filepath.Join(versionDir, "Extensions")

		for _, folder := range ListSubdirectories(extensionsDir, "*") {
			p := ReadExtension(folder)
			if p == nil {
				continue
			}
			exts = append(exts, p)
		}
	}

	config.Logger.Debug("Extension scan finished", "root", d.Root, "pattern", pattern, "found", len(exts))
	return exts
}
