// Package autorouter assembles discovered route modules into one root
// router whose layout mirrors the routes directory.
//
//	ar := autorouter.New(discovery.Config{Dir: "routes", Verbose: true})
//	root, err := ar.Generate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", root)
//
// Every module found at routes/<path>.go is mounted at "/<path>". The same
// AutoRouter feeds openapi.Generator through ExportInfo.
package autorouter

import (
	"context"
	"sync"

	"github.com/gorilla/mux"
	"github.com/vitalvas/autoroute/discovery"
	"github.com/vitalvas/autoroute/router"
)

// Resolver resolves the mount entries. *discovery.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context) ([]discovery.Entry, error)
}

// AutoRouter owns the root router and the discovered mount entries.
type AutoRouter struct {
	resolver Resolver

	mu   sync.Mutex
	root *router.Router
}

// New returns an AutoRouter discovering modules with the given config.
func New(cfg discovery.Config) *AutoRouter {
	return NewWithResolver(discovery.NewResolver(cfg))
}

// NewWithResolver returns an AutoRouter backed by a custom resolver.
func NewWithResolver(r Resolver) *AutoRouter {
	return &AutoRouter{
		resolver: r,
		root:     router.New(),
	}
}

// Use adds middleware to the root router.
func (a *AutoRouter) Use(mw ...mux.MiddlewareFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.root.Use(mw...)
}

// Root returns the root router without resolving or mounting anything.
func (a *AutoRouter) Root() *router.Router {
	return a.root
}

// Generate resolves the modules if needed and mounts every entry on the root
// router at "/" + its mount path.
//
// Mounting is additive: every call mounts all entries again, so a second
// call registers each module twice on the same root router.
func (a *AutoRouter) Generate(ctx context.Context) (*router.Router, error) {
	entries, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range entries {
		a.root.Mount("/"+e.Path, e.Router)
	}

	return a.root, nil
}

// ExportInfo returns the root router and the ordered mount entries for
// specification generation. It resolves the modules if needed but never
// mounts them.
func (a *AutoRouter) ExportInfo(ctx context.Context) (*router.Router, []discovery.Entry, error) {
	entries, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a.root, entries, nil
}

// Schemas returns the union of the named schemas exported by the modules.
// On a name collision the module later in mount order wins.
func (a *AutoRouter) Schemas(ctx context.Context) (map[string]any, error) {
	entries, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	schemas := make(map[string]any)
	for _, e := range entries {
		for name, s := range e.Schemas {
			schemas[name] = s
		}
	}
	return schemas, nil
}
