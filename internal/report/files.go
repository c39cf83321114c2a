package report

import (
	"k8s.io/apimachinery/pkg/util/json"

	"github.com/kvesta/vsdetect/pkg/packages"
)

// packageJSON fixes the key set and order of a serialized package. Nil
// pointers render as null so no key is ever dropped.
type packageJSON struct {
	ID                         *string `json:"Id"`
	Version                    *string `json:"Version"`
	Chip                       *string `json:"Chip"`
	Language                   *string `json:"Language"`
	Branch                     *string `json:"Branch"`
	Type                       *string `json:"Type"`
	UniqueID                   *string `json:"UniqueId"`
	IsExtension                bool    `json:"IsExtension"`
	ProductIsInstalled         *bool   `json:"ProductIsInstalled"`
	Product2SupportsExtensions *bool   `json:"Product2SupportsExtensions"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toPackageJSON(p *packages.Package) packageJSON {
	return packageJSON{
		ID:                         nullable(p.ID),
		Version:                    nullable(p.Version),
		Chip:                       nullable(p.Chip),
		Language:                   nullable(p.Language),
		Branch:                     nullable(p.Branch),
		Type:                       nullable(p.Type),
		UniqueID:                   nullable(p.UniqueID),
		IsExtension:                p.IsExtension,
		ProductIsInstalled:         p.IsInstalled,
		Product2SupportsExtensions: p.SupportsExtensions,
	}
}

// PackageToJSON serializes one package reference; nil gives "null".
func PackageToJSON(p *packages.Package) (string, error) {
	if p == nil {
		return "null", nil
	}

	data, err := json.Marshal(toPackageJSON(p))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PropertiesToJSON serializes a property store; nil gives "null".
func PropertiesToJSON(props map[string]string) (string, error) {
	if props == nil {
		return "null", nil
	}

	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func packagesToJSON(exts []*packages.Package) ([]byte, error) {
	list := make([]packageJSON, 0, len(exts))
	for _, p := range exts {
		list = append(list, toPackageJSON(p))
	}

	return json.Marshal(list)
}
