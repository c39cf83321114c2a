package packages

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	forkedxml "github.com/michaelkedar/xml"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kvesta/vsdetect/config"
)

const (
	jsonManifest = "manifest.json"
	vsixManifest = "extension.vsixmanifest"
)

// packageManifest is the subset of the VSIX v2 manifest schema we read.
// Tags carry no namespace so any xmlns matches.
type packageManifest struct {
	Metadata struct {
		Identity *struct {
			ID       string `xml:"Id,attr"`
			Language string `xml:"Language,attr"`
			Version  string `xml:"Version,attr"`
		} `xml:"Identity"`
		DisplayName *string `xml:"DisplayName"`
	} `xml:"Metadata"`
	Installation struct {
		Targets []struct {
			ProductArchitecture *string `xml:"ProductArchitecture"`
		} `xml:"InstallationTarget"`
	} `xml:"Installation"`
}

// ReadExtension reads one extension folder and logs instead of failing.
func ReadExtension(folder string) *Package {
	p, err := ReadExtensionFolder(folder)
	if err != nil {
		config.Logger.Warn("Skipping extension folder", "folder", folder, "err", err)
		return nil
	}

	return p
}

// ReadExtensionFolder merges manifest.json and extension.vsixmanifest found in
// folder into a single package. Values from manifest.json win. It returns nil
// with no error when neither manifest yields any data.
func ReadExtensionFolder(folder string) (*Package, error) {
	p := &Package{
		IsExtension: true,
		Origin:      OriginUser,
	}

	var errs error
	if err := readJSONManifest(filepath.Join(folder, jsonManifest), p); err != nil {
		errs = multierr.Append(errs, err)
	}

	if err := readVsixManifest(filepath.Join(folder, vsixManifest), p); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, errs
	}

	if !p.Valid() {
		return nil, nil
	}

	return p, nil
}

func readJSONManifest(path string, p *Package) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", jsonManifest, err)
	}

	data, err = decodeText(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", jsonManifest, err)
	}

	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s is not valid JSON", jsonManifest)
	}

	fields := gjson.GetManyBytes(data, "id", "version", "type", "vsixId")
	p.ID = stringValue(fields[0])
	p.Version = stringValue(fields[1])
	p.Type = stringValue(fields[2])
	p.UniqueID = stringValue(fields[3])

	return nil
}

func stringValue(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func readVsixManifest(path string, p *Package) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", vsixManifest, err)
	}

	data, err = decodeText(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", vsixManifest, err)
	}

	m, err := parseVsixManifest(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", vsixManifest, err)
	}
	if m == nil {
		return nil
	}

	if id := m.Metadata.Identity; id != nil {
		if p.ID == "" {
			p.ID = id.ID
		}
		if p.Language == "" {
			p.Language = id.Language
		}
		if p.Version == "" {
			p.Version = id.Version
		}
	}

	if name := m.Metadata.DisplayName; name != nil {
		p.Branch = strings.TrimSpace(*name)
	}

	for _, t := range m.Installation.Targets {
		if t.ProductArchitecture != nil {
			p.Chip = strings.TrimSpace(*t.ProductArchitecture)
			break
		}
	}

	return nil
}

// decodeText drops a leading byte order mark. UTF-16 input with a BOM is
// transcoded to UTF-8; anything else passes through unchanged.
func decodeText(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	return out, err
}

// charsetReader converts declared non UTF-8 encodings. UTF-16 documents were
// already transcoded by decodeText.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(label)), "utf-16") {
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// parseVsixManifest decodes the document root. A root other than
// PackageManifest (e.g. the legacy Vsix schema) yields nil.
func parseVsixManifest(data []byte) (*packageManifest, error) {
	dec := forkedxml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	for {
		token, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("no root element")
		}
		if err != nil {
			return nil, err
		}

		start, ok := token.(forkedxml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "PackageManifest" {
			return nil, dec.Skip()
		}

		m := &packageManifest{}
		if err := dec.DecodeElement(m, &start); err != nil {
			return nil, err
		}
		return m, nil
	}
}
