package mux

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vitalvas/strela/constraint"
)

// Router registers routes to be matched and dispatches a handler.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/products/{id:int}", handler).Methods(http.MethodGet)
//	if err := r.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", r)
//
// Routes are registered during startup. Validate compiles the routing table
// once; afterwards the router is read-only and safe for concurrent use.
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	// Corresponds to 404 Not Found per RFC 7231 Section 6.5.4.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// Per RFC 7231 Section 6.5.5, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	routes      []*Route
	namedRoutes map[string]*Route
	middlewares []MiddlewareFunc
	constraints *constraint.Registry
	configErr   error

	caseInsensitive bool
	skipClean       bool
	useEncodedPath  bool

	compileOnce sync.Once
	compileErr  error
	compiled    atomic.Bool
	// ordered is the dispatch order computed by Validate.
	ordered []*Route
}

// NewRouter returns a new router using a registry with the built-in
// constraints.
func NewRouter() *Router {
	return &Router{
		namedRoutes: make(map[string]*Route),
		constraints: constraint.NewRegistry(),
	}
}

// WithConstraints replaces the constraint registry. It must be called before
// any route is registered.
func (r *Router) WithConstraints(reg *constraint.Registry) *Router {
	if len(r.routes) > 0 {
		r.configErr = errors.Join(r.configErr, errors.New("mux: WithConstraints called after routes were registered"))
		return r
	}

	if reg == nil {
		r.configErr = errors.Join(r.configErr, errors.New("mux: nil constraint registry"))
		return r
	}

	r.constraints = reg

	return r
}

// Constraints returns the registry used to resolve template constraints.
func (r *Router) Constraints() *constraint.Registry {
	return r.constraints
}

// CaseInsensitive makes literal segments match regardless of case.
// Constraint evaluation is unaffected.
func (r *Router) CaseInsensitive() *Router {
	r.caseInsensitive = true
	return r
}

// SkipClean disables removal of dot segments from request paths.
func (r *Router) SkipClean(value bool) *Router {
	r.skipClean = value
	return r
}

// UseEncodedPath tells the router to split the percent-encoded original path
// (RFC 3986 Section 2.1) into segments before decoding them, so that an
// encoded slash stays inside its segment.
func (r *Router) UseEncodedPath() *Router {
	r.useEncodedPath = true
	return r
}

// Validate compiles the routing table. It reports route configuration
// errors and ambiguous routes, seals the constraint registry and freezes
// the router. Only the first call does work; later
// calls return the same result.
func (r *Router) Validate() error {
	r.compileOnce.Do(func() {
		r.compileErr = r.compile()
	})

	return r.compileErr
}

func (r *Router) compile() error {
	r.compiled.Store(true)
	r.constraints.Seal()

	errs := []error{r.configErr}

	for _, route := range r.routes {
		switch {
		case route.err != nil:
			errs = append(errs, fmt.Errorf("route %s: %w", route, route.err))
		case route.tpl == nil:
			errs = append(errs, fmt.Errorf("route %s: %w", route, ErrNoPath))
		case route.handler == nil:
			errs = append(errs, fmt.Errorf("route %s: %w", route, ErrNoHandler))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	ordered := slices.Clone(r.routes)
	slices.SortStableFunc(ordered, compareRoutes)

	for i, a := range ordered {
		for _, b := range ordered[i+1:] {
			if a.order != b.order {
				continue
			}
			if methodsOverlap(a, b) && a.tpl.overlaps(b.tpl, r.caseInsensitive) {
				errs = append(errs, fmt.Errorf("%w: %s and %s", ErrAmbiguousRoute, a, b))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, route := range ordered {
		route.wrapped = r.applyMiddleware(route.handler)
		if len(route.tpl.varsN) == 0 {
			route.staticCtx = &routeContext{route: route}
		}
	}

	r.ordered = ordered

	return nil
}

// compareRoutes orders by explicit order, then registration. Routes sharing
// an order never overlap once compile has passed, so registration only
// breaks ties between routes that cannot both match.
func compareRoutes(a, b *Route) int {
	if a.order != b.order {
		if a.order < b.order {
			return -1
		}
		return 1
	}

	return a.index - b.index
}

// ServeHTTP dispatches the handler registered in the matched route.
// Implements http.Handler per RFC 7230 Section 3.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Validate(); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var match RouteMatch
	var handler http.Handler

	if r.Match(req, &match) {
		handler = match.Handler
		req = setRouteContext(req, match.Route, match.Vars)
	} else if match.MatchErr == ErrMethodMismatch {
		// RFC 7231 Section 6.5.5: the origin server MUST generate an
		// Allow header field in a 405 response.
		w.Header().Set("Allow", strings.Join(match.allowed, ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = defaultMethodNotAllowedHandler
		}
	} else {
		handler = r.NotFoundHandler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
	}

	handler.ServeHTTP(w, req)
}

// Match resolves the request against the compiled routing table. Routes are
// tried by ascending order; the first route whose template
// and constraints fit the path and whose methods contain the request method
// wins. On failure MatchErr distinguishes ErrNotFound from
// ErrMethodMismatch. Match does not modify the request and may be called
// any number of times with the same result.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	if err := r.Validate(); err != nil {
		match.MatchErr = ErrNotFound
		return false
	}

	segs, ok := r.requestSegments(req)
	if !ok {
		match.MatchErr = ErrNotFound
		return false
	}

	var allowed []string

	for _, route := range r.ordered {
		if !route.tpl.match(segs, r.caseInsensitive, nil) {
			continue
		}

		if !route.matchMethod(req.Method) {
			allowed = appendMethods(allowed, route.methods)
			continue
		}

		match.Route = route
		match.Handler = route.wrapped
		match.Vars = route.tpl.vars(segs, r.caseInsensitive)
		match.MatchErr = nil

		return true
	}

	if len(allowed) > 0 {
		slices.Sort(allowed)
		match.MatchErr = ErrMethodMismatch
		match.allowed = allowed
		return false
	}

	match.MatchErr = ErrNotFound

	return false
}

// requestSegments returns the cleaned path of req split into segments.
func (r *Router) requestSegments(req *http.Request) ([]string, bool) {
	p := req.URL.Path
	if r.useEncodedPath {
		p = req.URL.EscapedPath()
	}

	if !r.skipClean {
		p = cleanPath(p)
	}

	return splitPath(p, r.useEncodedPath)
}

// --- Route factory methods ---

// NewRoute creates an empty route for configuration.
func (r *Router) NewRoute() *Route {
	route := &Route{
		router: r,
		index:  len(r.routes),
	}

	if r.compiled.Load() {
		route.err = ErrRouterCompiled
	}

	r.routes = append(r.routes, route)

	return route
}

// Handle registers a new route with a path template and handler.
func (r *Router) Handle(tpl string, handler http.Handler) *Route {
	return r.NewRoute().Path(tpl).Handler(handler)
}

// HandleFunc registers a new route with a path template and handler
// function.
func (r *Router) HandleFunc(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.NewRoute().Path(tpl).HandlerFunc(f)
}

// Path registers a new route with a path template.
func (r *Router) Path(tpl string) *Route {
	return r.NewRoute().Path(tpl)
}

// Methods registers a new route with a matcher for HTTP methods.
func (r *Router) Methods(methods ...string) *Route {
	return r.NewRoute().Methods(methods...)
}

// Get returns a route registered with the given name.
func (r *Router) Get(name string) *Route {
	return r.namedRoutes[name]
}

// Walk calls walkFn for each route in registration order. The first
// error returned by walkFn stops the walk and is returned.
func (r *Router) Walk(walkFn WalkFunc) error {
	for _, route := range r.routes {
		if err := walkFn(route, r); err != nil {
			return err
		}
	}
	return nil
}

// applyMiddleware wraps the handler with all registered middleware.
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i].Middleware(handler)
	}
	return handler
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only, wrapped once by Validate; middleware added
// afterwards has no effect.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
}
