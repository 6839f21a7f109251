// Package models defines the domain types for assetfill.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Descriptor keys, as used in catalogs and in the rendered region.
const (
	KeyName         = "name"
	KeyInfo         = "info"
	KeyURL          = "url"
	KeyAuthor       = "author"
	KeySize         = "size"
	KeyDateModified = "dateModified"
)

// canonicalKeys is the emit order for fields that were never explicitly Set.
var canonicalKeys = []string{KeyName, KeyInfo, KeyURL, KeyAuthor, KeySize, KeyDateModified}

// Descriptor is the metadata record of one referenceable asset file.
// URL is the identity key, resolved relative to the asset root.
type Descriptor struct {
	URL          string
	Info         string
	Author       string
	Name         string
	Size         string
	DateModified string

	// keys records the order in which fields were first set.
	keys []string
}

// Get returns the value stored under key.
func (d Descriptor) Get(key string) string {
	switch key {
	case KeyURL:
		return d.URL
	case KeyInfo:
		return d.Info
	case KeyAuthor:
		return d.Author
	case KeyName:
		return d.Name
	case KeySize:
		return d.Size
	case KeyDateModified:
		return d.DateModified
	}
	return ""
}

// Set stores value under key and remembers the key's position.
func (d *Descriptor) Set(key, value string) error {
	switch key {
	case KeyURL:
		d.URL = value
	case KeyInfo:
		d.Info = value
	case KeyAuthor:
		d.Author = value
	case KeyName:
		d.Name = value
	case KeySize:
		d.Size = value
	case KeyDateModified:
		d.DateModified = value
	default:
		return fmt.Errorf("models: unknown descriptor key %q", key)
	}
	if !slices.Contains(d.keys, key) {
		d.keys = append(d.keys, key)
	}
	return nil
}

// Clone returns a copy that shares no state with d.
func (d Descriptor) Clone() Descriptor {
	c := d
	c.keys = slices.Clone(d.keys)
	return c
}

// Keys returns the keys to emit, in order: explicitly set keys first, then
// any remaining non-empty fields in canonical order.
func (d Descriptor) Keys() []string {
	out := slices.Clone(d.keys)
	for _, k := range canonicalKeys {
		if d.Get(k) != "" && !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// Validate checks that the required fields are present.
func (d Descriptor) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.Required),
		validation.Field(&d.Info, validation.Required),
		validation.Field(&d.Author, validation.Required),
	)
}

// UnmarshalYAML decodes a mapping node, keeping the key order of the source.
func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("models: line %d: descriptor must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var value string
		if err := valNode.Decode(&value); err != nil {
			return fmt.Errorf("models: line %d: field %q: %w", valNode.Line, keyNode.Value, err)
		}
		if err := d.Set(keyNode.Value, value); err != nil {
			return fmt.Errorf("line %d: %w", keyNode.Line, err)
		}
	}
	return nil
}

// MarshalJSON writes the fields as an object in Keys order.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	var out bytes.Buffer
	out.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			out.WriteByte(',')
		}
		buf.Reset()
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
		out.WriteByte(':')
		buf.Reset()
		if err := enc.Encode(d.Get(k)); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the source.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("models: descriptor must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("models: field %q: %w", key, err)
		}
		if err := d.Set(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
