package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3gen"
)

// SchemaConverter converts a named schema descriptor into a JSON Schema
// object for components.schemas.
type SchemaConverter interface {
	ConvertSchema(model any) (map[string]any, error)
}

// SchemaConverterFunc adapts a function to the SchemaConverter interface.
type SchemaConverterFunc func(model any) (map[string]any, error)

// ConvertSchema calls f(model).
func (f SchemaConverterFunc) ConvertSchema(model any) (map[string]any, error) {
	return f(model)
}

// KinConverter generates schemas from Go values by reflection using
// kin-openapi's openapi3gen. A map[string]any descriptor is taken as a
// ready-made schema and copied as is.
type KinConverter struct {
	Options []openapi3gen.Option
}

// ConvertSchema implements SchemaConverter.
func (c KinConverter) ConvertSchema(model any) (map[string]any, error) {
	if raw, ok := model.(map[string]any); ok {
		return copyObject(raw), nil
	}

	ref, err := openapi3gen.NewSchemaRefForValue(model, nil, c.Options...)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ref)
	if err != nil {
		return nil, err
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("openapi: schema for %T is not an object: %w", model, err)
	}
	return schema, nil
}
