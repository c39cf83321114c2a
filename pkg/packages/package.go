package packages

// Origin records where a package reference came from.
type Origin int

const (
	// OriginVendor marks references reported by the setup configuration API.
	OriginVendor Origin = iota
	// OriginUser marks extensions discovered under the user's application data.
	OriginUser
)

func (o Origin) String() string {
	switch o {
	case OriginVendor:
		return "vendor"
	case OriginUser:
		return "user"
	}
	return "unknown"
}

// Package describes one component or extension of a Visual Studio instance.
type Package struct {
	ID          string `yaml:"id,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Chip        string `yaml:"chip,omitempty"`
	Language    string `yaml:"language,omitempty"`
	Branch      string `yaml:"branch,omitempty"`
	Type        string `yaml:"type,omitempty"`
	UniqueID    string `yaml:"uniqueId,omitempty"`
	IsExtension bool   `yaml:"isExtension"`

	// Only set when the reference also describes a product.
	IsInstalled        *bool `yaml:"isInstalled,omitempty"`
	SupportsExtensions *bool `yaml:"supportsExtensions,omitempty"`

	Origin Origin `yaml:"-"`
}

// Valid reports whether any of the string fields carries data.
func (p *Package) Valid() bool {
	if p == nil {
		return false
	}

	for _, s := range []string{p.ID, p.Version, p.Chip, p.Language,
		p.Branch, p.Type, p.UniqueID} {
		if s != "" {
			return true
		}
	}

	return false
}
