// Package catalog loads descriptor catalogs and renders them into the
// text that replaces the marked region of a target file.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/assetfill/internal/models"
)

// Region framing around the rendered list.
const (
	prefix = "\n"
	suffix = ";\n"
)

// Load reads and parses the YAML catalog at path.
func Load(path string) ([]models.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a YAML sequence of descriptors and checks required fields.
// An empty document yields an empty catalog.
func Parse(data []byte) ([]models.Descriptor, error) {
	var ds []models.Descriptor
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for i, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, d.URL, err)
		}
	}
	if ds == nil {
		ds = []models.Descriptor{}
	}
	return ds, nil
}

// Render serializes ds as a two-space indented JSON array framed by a
// leading newline and a trailing ";\n". HTML characters are not escaped.
func Render(ds []models.Descriptor) ([]byte, error) {
	if ds == nil {
		ds = []models.Descriptor{}
	}
	var buf bytes.Buffer
	buf.WriteString(prefix)

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return nil, fmt.Errorf("catalog: render: %w", err)
	}
	// Encode terminates with a newline; the suffix supplies its own.
	buf.Truncate(buf.Len() - 1)
	buf.WriteString(suffix)
	return buf.Bytes(), nil
}
