package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"plugin"

	"github.com/vitalvas/autoroute/router"
)

// PluginLoader loads modules built with "go build -buildmode=plugin".
type PluginLoader struct {
	// Symbol is the exported router variable or constructor
	// (default: "Router").
	Symbol string

	// SchemasSymbol is an optional exported map[string]any of named schemas
	// (default: "Schemas"). A module without it exports no schemas.
	SchemasSymbol string
}

func (l PluginLoader) symbol() string {
	if l.Symbol == "" {
		return "Router"
	}
	return l.Symbol
}

func (l PluginLoader) schemasSymbol() string {
	if l.SchemasSymbol == "" {
		return "Schemas"
	}
	return l.SchemasSymbol
}

// Load opens the plugin at d.Artifact and looks up its router symbol.
func (l PluginLoader) Load(_ context.Context, d Descriptor) (any, error) {
	if _, err := os.Stat(d.Artifact); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingModule, d.Artifact)
		}
		return nil, err
	}

	p, err := plugin.Open(d.Artifact)
	if err != nil {
		return nil, err
	}

	sym, err := p.Lookup(l.symbol())
	if err != nil {
		return nil, err
	}

	m := &pluginModule{value: sym}
	if s, err := p.Lookup(l.schemasSymbol()); err == nil {
		if schemas, ok := s.(*map[string]any); ok && schemas != nil {
			m.schemas = *schemas
		}
	}

	return m, nil
}

// pluginModule wraps the symbols looked up from one plugin.
type pluginModule struct {
	value   any
	schemas map[string]any
}

func (m *pluginModule) Router() *router.Router {
	return routerOf(m.value)
}

func (m *pluginModule) Schemas() map[string]any {
	return m.schemas
}
