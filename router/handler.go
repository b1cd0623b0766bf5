package router

import "net/http"

// Fragment is a partial OpenAPI object (operation or path item) attached to
// a handler or a router. It is stored verbatim and never validated.
type Fragment map[string]any

// Handler is one link of a route's handler chain.
type Handler struct {
	wrap func(next http.Handler) http.Handler
	meta Fragment
}

// Meta returns a link that passes the request to the next link unchanged and
// carries the given fragment for openapi.Generator.
func Meta(f Fragment) Handler {
	return Handler{meta: f}
}

// Middleware returns a link that wraps the remainder of the chain.
func Middleware(mw func(next http.Handler) http.Handler) Handler {
	return Handler{wrap: mw}
}

// Handle returns a terminal link. Links registered after it never run.
func Handle(h http.Handler) Handler {
	return Handler{wrap: func(http.Handler) http.Handler { return h }}
}

// HandleFunc returns a terminal link for a handler function.
func HandleFunc(f func(http.ResponseWriter, *http.Request)) Handler {
	return Handle(http.HandlerFunc(f))
}

// WithMeta returns a copy of the link carrying the given fragment.
func (h Handler) WithMeta(f Fragment) Handler {
	h.meta = f
	return h
}

// Meta returns the fragment carried by the link, if any.
func (h Handler) Meta() (Fragment, bool) {
	return h.meta, h.meta != nil
}

// chain composes links into a single http.Handler. Falling off the end of
// the chain responds with 404 Not Found.
func chain(links []Handler) http.Handler {
	next := http.NotFoundHandler()
	for i := len(links) - 1; i >= 0; i-- {
		if links[i].wrap != nil {
			next = links[i].wrap(next)
		}
	}
	return next
}
