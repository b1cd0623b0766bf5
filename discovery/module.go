package discovery

import (
	"context"

	"github.com/vitalvas/autoroute/router"
)

// Descriptor locates one discovered module.
type Descriptor struct {
	// MountPath is the logical mount path, e.g. "admin/users".
	MountPath string

	// Source is the source file path inside the scanned filesystem.
	Source string

	// Artifact is the build artifact path on disk.
	Artifact string
}

// Entry is a loaded module mounted at Path.
type Entry struct {
	Path    string
	Router  *router.Router
	Schemas map[string]any
}

// Loader loads the module value for a descriptor.
type Loader interface {
	Load(ctx context.Context, d Descriptor) (any, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, d Descriptor) (any, error)

// Load calls f(ctx, d).
func (f LoaderFunc) Load(ctx context.Context, d Descriptor) (any, error) {
	return f(ctx, d)
}

// Provider is implemented by module values that wrap their router.
// The wrapper is unwrapped exactly once.
type Provider interface {
	Router() *router.Router
}

// SchemaProvider is implemented by module values that export named schemas.
type SchemaProvider interface {
	Schemas() map[string]any
}

// unwrap extracts the router from a loaded module value.
func unwrap(v any) (*router.Router, error) {
	var r *router.Router
	if p, ok := v.(Provider); ok {
		r = p.Router()
	} else {
		r = routerOf(v)
	}

	if r == nil {
		return nil, ErrNotRouter
	}
	return r, nil
}

// routerOf accepts a router, a pointer to a router variable or a router
// constructor.
func routerOf(v any) *router.Router {
	switch m := v.(type) {
	case *router.Router:
		return m
	case **router.Router:
		if m != nil {
			return *m
		}
	case func() *router.Router:
		if m != nil {
			return m()
		}
	}
	return nil
}

// schemasOf returns the named schemas exported by a module value, if any.
func schemasOf(v any) map[string]any {
	if p, ok := v.(SchemaProvider); ok {
		return p.Schemas()
	}
	return nil
}
