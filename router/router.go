package router

import (
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gorilla/mux"
)

// colonParamRegexp matches a colon parameter anywhere outside a brace
// template.
var colonParamRegexp = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// Route is a route table entry.
type Route struct {
	// Pattern is the path pattern as registered, e.g. "/widgets/:id".
	Pattern string

	// Methods lists the upper-case HTTP methods the route responds to.
	Methods []string

	// Chain is the ordered handler chain.
	Chain []Handler
}

// Mount is a handler attached under a path prefix.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Router registers routes and mounts and dispatches requests to them.
//
// It implements the http.Handler interface.
type Router struct {
	mux    *mux.Router
	routes []Route
	mounts []Mount
	meta   Fragment
}

// New returns a new router instance.
func New() *Router {
	return &Router{mux: mux.NewRouter()}
}

// ServeHTTP dispatches the request to the matching route or mount.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// http.StripPrefix hands a router "" for a request on the exact prefix.
	r.mux.ServeHTTP(w, withPath(req, req.URL.Path))
}

// SetMeta attaches a path-item fragment to the router.
func (r *Router) SetMeta(f Fragment) {
	r.meta = f
}

// Meta returns the router-level fragment, if any.
func (r *Router) Meta() (Fragment, bool) {
	return r.meta, r.meta != nil
}

// Use appends router-level middleware. Middleware runs for matched routes
// and mounts only.
func (r *Router) Use(mw ...mux.MiddlewareFunc) {
	r.mux.Use(mw...)
}

// Handle registers a route for the given methods with an ordered handler
// chain.
func (r *Router) Handle(pattern string, methods []string, links ...Handler) {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}

	r.routes = append(r.routes, Route{
		Pattern: pattern,
		Methods: upper,
		Chain:   slices.Clone(links),
	})

	r.mux.Handle(muxTemplate(pattern), chain(links)).Methods(upper...)
}

// Get registers a GET route.
func (r *Router) Get(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodGet}, links...)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodPost}, links...)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodPut}, links...)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodPatch}, links...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodDelete}, links...)
}

// Head registers a HEAD route.
func (r *Router) Head(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodHead}, links...)
}

// Options registers an OPTIONS route.
func (r *Router) Options(pattern string, links ...Handler) {
	r.Handle(pattern, []string{http.MethodOptions}, links...)
}

// Mount attaches h under prefix. Requests for prefix itself and for any path
// below it reach h with the prefix stripped. Mounting is additive.
//
// A mounted Router (or *mux.Router) only takes a request it has a route
// for; otherwise matching continues with the routes and mounts registered
// after it, so "/admin" and "/admin/users" can be mounted side by side.
func (r *Router) Mount(prefix string, h http.Handler) {
	prefix = "/" + strings.Trim(prefix, "/")
	r.mounts = append(r.mounts, Mount{Prefix: prefix, Handler: h})

	if prefix == "/" {
		r.mux.PathPrefix("/").MatcherFunc(mountMatcher("", h)).Handler(h)
		return
	}

	stripped := stripPrefix(prefix, h)
	r.mux.Path(prefix).MatcherFunc(mountMatcher(prefix, h)).Handler(stripped)
	r.mux.PathPrefix(prefix + "/").MatcherFunc(mountMatcher(prefix, h)).Handler(stripped)
}

// matcher is implemented by *Router and *mux.Router.
type matcher interface {
	Match(req *http.Request, match *mux.RouteMatch) bool
}

// Match reports whether a route or mount of r accepts req. It implements
// the gorilla/mux matcher contract, so a Router can be mounted on a
// *mux.Router too.
func (r *Router) Match(req *http.Request, match *mux.RouteMatch) bool {
	return r.mux.Match(withPath(req, req.URL.Path), match)
}

// mountMatcher accepts a request when h accepts it with prefix stripped.
// Handlers that cannot report a match accept everything below the prefix.
func mountMatcher(prefix string, h http.Handler) mux.MatcherFunc {
	m, ok := h.(matcher)
	if !ok {
		return func(*http.Request, *mux.RouteMatch) bool { return true }
	}

	return func(req *http.Request, _ *mux.RouteMatch) bool {
		return m.Match(withPath(req, trimPrefix(req.URL.Path, prefix)), &mux.RouteMatch{})
	}
}

// Routes returns a copy of the route table in registration order.
func (r *Router) Routes() []Route {
	return slices.Clone(r.routes)
}

// Mounts returns a copy of the mount list in registration order.
func (r *Router) Mounts() []Mount {
	return slices.Clone(r.mounts)
}

// stripPrefix removes prefix from the request path, leaving at least "/".
func stripPrefix(prefix string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.ServeHTTP(w, withPath(req, trimPrefix(req.URL.Path, prefix)))
	})
}

func trimPrefix(p, prefix string) string {
	p = strings.TrimPrefix(p, prefix)
	if p == "" {
		return "/"
	}
	return p
}

// withPath returns a copy of req for path p. An empty path becomes "/".
func withPath(req *http.Request, p string) *http.Request {
	if p == "" {
		p = "/"
	}
	if p == req.URL.Path && req.URL.RawPath == "" {
		return req
	}

	u := *req.URL
	u.Path = p
	u.RawPath = ""
	req = req.Clone(req.Context())
	req.URL = &u
	return req
}

// muxTemplate converts colon parameters into gorilla/mux variables. Brace
// templates are kept as written.
func muxTemplate(pattern string) string {
	var b strings.Builder
	depth, start := 0, 0

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			if depth == 0 {
				b.WriteString(colonParamRegexp.ReplaceAllString(pattern[start:i], "{$1}"))
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				b.WriteString(pattern[start : i+1])
				start = i + 1
			}
		}
	}

	if depth > 0 {
		b.WriteString(pattern[start:])
	} else {
		b.WriteString(colonParamRegexp.ReplaceAllString(pattern[start:], "{$1}"))
	}

	return b.String()
}
