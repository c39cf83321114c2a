package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/kvesta/vsdetect/config"
	"github.com/kvesta/vsdetect/pkg/packages"
	"github.com/kvesta/vsdetect/pkg/setup"
)

// Lines formats one instance followed by the extensions discovered for it.
// The last line is empty and separates instances.
func Lines(inst *setup.Instance, exts []*packages.Package) ([]string, error) {
	lines := []string{
		line("Id", inst.ID),
		line("Name", inst.Name),
		line("DisplayName", inst.DisplayName),
		line("Location", inst.Path),
		line("Version", inst.Version),
	}

	if ext := inst.Extended; ext != nil {
		props, err := PropertiesToJSON(ext.Properties)
		if err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}

		product, err := PackageToJSON(ext.Product)
		if err != nil {
			return nil, fmt.Errorf("product: %w", err)
		}

		lines = append(lines,
			line("State", ext.State.String()),
			line("Properties", props),
			line("Product", product),
			line("ProductPath", ext.ProductPath),
			line("EnginePath", ext.EnginePath),
		)

		for _, p := range ext.Packages {
			data, err := PackageToJSON(p)
			if err != nil {
				return nil, fmt.Errorf("package %s: %w", p.ID, err)
			}
			lines = append(lines, line("Package", data))
		}
	}

	for _, p := range exts {
		data, err := PackageToJSON(p)
		if err != nil {
			return nil, fmt.Errorf("extension %s: %w", p.ID, err)
		}
		lines = append(lines, line("Extension", data))
	}

	return append(lines, ""), nil
}

func line(label, value string) string {
	return label + ": " + value
}

// Write prints the lines of one instance to w.
func Write(w io.Writer, inst *setup.Instance, exts []*packages.Package) error {
	lines, err := Lines(inst, exts)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteExtensions renders a list of discovered extensions as a table, a JSON
// array or YAML.
func WriteExtensions(w io.Writer, format string, exts []*packages.Package) error {
	switch strings.ToLower(format) {
	case "", "table":
		return extensionsTable(w, exts)
	case "json":
		data, err := packagesToJSON(exts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if exts == nil {
			exts = []*packages.Package{}
		}
		if err := enc.Encode(exts); err != nil {
			return err
		}
		return enc.Close()
	}

	return fmt.Errorf("unknown output format %q", format)
}

func extensionsTable(w io.Writer, exts []*packages.Package) error {
	fmt.Fprintf(w, "\nDetected %s extensions\n\n", config.Yellow(len(exts)))

	if len(exts) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Version", "Language", "Chip", "Type"})
	table.SetRowLine(true)

	for _, p := range exts {
		table.Append([]string{
			p.ID, p.Branch, p.Version, p.Language, p.Chip, p.Type,
		})
	}

	table.Render()

	return nil
}
