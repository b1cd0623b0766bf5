// Package router is the routing layer route modules register against.
//
// A Router keeps an ordered route table of (pattern, methods, handler chain)
// entries and dispatches requests through github.com/gorilla/mux. Handler
// chains are explicit lists of Handler links, so a link can carry an OpenAPI
// fragment next to (or instead of) its runtime behavior:
//
//	r := router.New()
//	r.Get("/widgets/:id",
//	    router.Meta(router.Fragment{"description": "Get widget"}),
//	    router.HandleFunc(getWidget),
//	)
//
// A metadata link passes control to the next link unchanged; only the
// specification generator reads the fragment.
//
// # Router Metadata
//
// SetMeta attaches a path-item fragment to the router itself. The generator
// merges it into every path the router introduces:
//
//	r.SetMeta(router.Fragment{"summary": "Widgets"})
//
// # Patterns
//
// Patterns use colon parameters ("/widgets/:id"). Brace templates
// ("/widgets/{id:[0-9]+}") are passed to gorilla/mux as is. The route table
// always keeps the pattern as registered.
//
// # Mounting
//
// Mount attaches any http.Handler (usually another Router) under a prefix.
// The mounted handler sees the request path with the prefix stripped:
//
//	root := router.New()
//	root.Mount("/widgets", widgets)
//
// Mounting is additive: mounting the same handler twice registers it twice.
package router
