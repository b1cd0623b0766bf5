package openapi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vitalvas/autoroute/discovery"
	"github.com/vitalvas/autoroute/router"
)

const (
	defaultDescription         = "No description specified."
	defaultResponseDescription = "No responses were specified."
)

// Source provides the mounted routers. *autorouter.AutoRouter implements it.
type Source interface {
	ExportInfo(ctx context.Context) (*router.Router, []discovery.Entry, error)
}

// Config configures document generation. The zero value generates tags,
// reformats templates and adds a default response.
type Config struct {
	// DisableTags stops tagging operations with their mount path.
	DisableTags bool

	// DisableTemplateReformat keeps route patterns as registered instead of
	// rewriting parameters to the {name} form.
	DisableTemplateReformat bool

	// DisableDefaultResponse leaves generated responses empty.
	DisableDefaultResponse bool

	// PathParameters adds generated "in: path" parameters for every
	// template variable to the generated defaults.
	PathParameters bool

	// CollectTags fills the top-level tags list from the tags used by
	// operations, sorted by name.
	CollectTags bool

	// Converter converts named schemas (default: KinConverter{}).
	Converter SchemaConverter

	// Logger receives debug output (default: slog.Default()).
	Logger *slog.Logger
}

// Generator builds OpenAPI documents from the routers of a Source.
type Generator struct {
	src      Source
	schemas  map[string]any
	override Document
	cfg      Config
}

// NewGenerator returns a generator for the routers of src. Named schemas are
// converted into components.schemas and override is merged over the result
// as the last step.
func NewGenerator(src Source, schemas map[string]any, override Document, cfg Config) *Generator {
	if cfg.Converter == nil {
		cfg.Converter = KinConverter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Generator{
		src:      src,
		schemas:  schemas,
		override: override,
		cfg:      cfg,
	}
}

// Base returns a fresh copy of the default document template.
func (g *Generator) Base() Document {
	return Base()
}

// Generate builds a new document. Nothing is retained between calls.
func (g *Generator) Generate(ctx context.Context) (Document, error) {
	_, entries, err := g.src.ExportInfo(ctx)
	if err != nil {
		return nil, err
	}

	doc := g.Base()
	paths := doc.object("paths")

	for _, e := range entries {
		introduced := g.addRouter(paths, e)

		meta, ok := e.Router.Meta()
		if !ok {
			continue
		}
		for _, p := range introduced {
			item, _ := paths[p].(map[string]any)
			paths[p] = merge(item, copyObject(meta))
		}
	}

	schemas, err := g.convertSchemas()
	if err != nil {
		return nil, err
	}
	doc.object("components")["schemas"] = schemas

	if g.cfg.CollectTags {
		doc["tags"] = collectTags(paths)
	}

	for key, value := range copyObject(g.override) {
		doc[key] = value
	}

	return doc, nil
}

// addRouter writes the operations of one mounted router and returns the
// paths that did not exist before it.
func (g *Generator) addRouter(paths map[string]any, e discovery.Entry) []string {
	var introduced []string

	for _, route := range e.Router.Routes() {
		fullPath := "/" + e.Path + route.Pattern
		reformatted, vars := reformatPath(fullPath)
		if !g.cfg.DisableTemplateReformat {
			fullPath = reformatted
		}

		item, seen := paths[fullPath].(map[string]any)
		if !seen {
			item = make(map[string]any)
			paths[fullPath] = item
			introduced = append(introduced, fullPath)
		}

		for _, method := range route.Methods {
			item[strings.ToLower(method)] = g.defaultOperation(e.Path, vars)
		}

		for _, link := range route.Chain {
			meta, ok := link.Meta()
			if !ok {
				continue
			}
			for _, method := range route.Methods {
				key := strings.ToLower(method)
				op, _ := item[key].(map[string]any)
				item[key] = merge(op, copyObject(meta))
			}
		}

		g.cfg.Logger.Debug("added route", "mount", e.Path, "path", fullPath, "methods", route.Methods)
	}

	return introduced
}

// defaultOperation returns the generated operation for a method.
func (g *Generator) defaultOperation(mountPath string, vars []pathVar) map[string]any {
	responses := map[string]any{}
	if !g.cfg.DisableDefaultResponse {
		responses["default"] = map[string]any{"description": defaultResponseDescription}
	}

	op := map[string]any{
		"description": defaultDescription,
		"responses":   responses,
	}

	if !g.cfg.DisableTags {
		op["tags"] = []string{mountPath}
	}

	if g.cfg.PathParameters && len(vars) > 0 {
		op["parameters"] = pathParameters(vars)
	}

	return op
}

// convertSchemas converts every named schema in name order.
func (g *Generator) convertSchemas() (map[string]any, error) {
	names := make([]string, 0, len(g.schemas))
	for name := range g.schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(names))
	for _, name := range names {
		schema, err := g.cfg.Converter.ConvertSchema(g.schemas[name])
		if err != nil {
			return nil, fmt.Errorf("openapi: convert schema %q: %w", name, err)
		}
		out[name] = schema
	}
	return out, nil
}
