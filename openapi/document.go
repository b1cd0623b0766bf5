package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// Document is an OpenAPI document tree.
type Document map[string]any

// Format selects the encoding used by Encode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// defaultTemplate is the starting point of every generated document. It is
// never handed out; Base returns deep copies.
var defaultTemplate = Document{
	"openapi": "3.0.0",
	"info": map[string]any{
		"title":   "Unnamed API",
		"version": "1.0.0",
	},
	"servers":    []any{},
	"paths":      map[string]any{},
	"webhooks":   map[string]any{},
	"components": map[string]any{},
	"security":   []any{},
	"tags":       []any{},
}

// Base returns a deep copy of the default document template.
func Base() Document {
	return deepcopy.Copy(defaultTemplate).(Document)
}

// copyObject returns a deep copy of m. A nil map stays nil.
func copyObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return deepcopy.Copy(m).(map[string]any)
}

// merge returns a new object holding the keys of dst overlaid with the keys
// of src. Nested values are not merged.
func merge(dst map[string]any, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	maps.Copy(out, dst)
	maps.Copy(out, src)
	return out
}

// object returns doc[key] as an object, creating it when missing or when
// the existing value is not an object.
func (d Document) object(key string) map[string]any {
	if m, ok := d[key].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	d[key] = m
	return m
}

// Encode writes the document in the given format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("openapi: unknown format %q", format)
	}
}

// Decode reads a JSON or YAML document, such as an override document.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := Document{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return doc, nil
	}

	if trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &doc)
	} else {
		err = yaml.Unmarshal(trimmed, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: decode document: %w", err)
	}

	return doc, nil
}
