package mux

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Route stores information to match a request and build URLs.
type Route struct {
	router  *Router
	handler http.Handler
	tpl     *routeTemplate
	methods []string
	order   int
	name    string
	err     error

	// index is the registration position, the order among equal-order routes.
	index int

	// wrapped is the handler with router middleware applied, set by
	// Router.Validate.
	wrapped http.Handler
	// staticCtx is shared by every request to a route without variables.
	staticCtx *routeContext
}

// Match matches this route alone against the request. Router.Match should
// be preferred, as it applies route order across routes.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil || r.tpl == nil {
		return false
	}

	segs, ok := r.router.requestSegments(req)
	if !ok || !r.tpl.match(segs, r.router.caseInsensitive, nil) {
		return false
	}

	if !r.matchMethod(req.Method) {
		match.MatchErr = ErrMethodMismatch
		match.allowed = appendMethods(match.allowed, r.methods)
		return false
	}

	match.Route = r
	match.Handler = r.handler
	match.Vars = r.tpl.vars(segs, r.router.caseInsensitive)
	match.MatchErr = nil

	return true
}

// matchMethod reports whether the route accepts method, ignoring case. A
// route without methods accepts every method.
func (r *Route) matchMethod(method string) bool {
	if len(r.methods) == 0 {
		return true
	}

	for _, m := range r.methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}

	return false
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// GetHandler returns the handler for the route, if any.
func (r *Route) GetHandler() http.Handler {
	return r.handler
}

// Name sets the name for the route, used to build URLs.
// Names must be unique per router.
func (r *Route) Name(name string) *Route {
	if r.name != "" {
		r.err = fmt.Errorf("mux: route already has name %q, can't set %q", r.name, name)
		return r
	}

	if r.err != nil {
		return r
	}

	if _, ok := r.router.namedRoutes[name]; ok {
		r.err = fmt.Errorf("%w: %q", ErrDuplicateName, name)
		return r
	}

	r.name = name
	r.router.namedRoutes[name] = r

	return r
}

// GetName returns the name for the route, if any.
func (r *Route) GetName() string {
	return r.name
}

// Path sets the path template for the route. Constraint references are
// resolved against the router's registry immediately.
func (r *Route) Path(tpl string) *Route {
	if r.err != nil {
		return r
	}

	if r.tpl != nil {
		r.err = fmt.Errorf("mux: route already has path %q", r.tpl.template)
		return r
	}

	t, err := newRouteTemplate(tpl, r.router.constraints)
	if err != nil {
		r.err = err
		return r
	}

	r.tpl = t

	return r
}

// Methods sets the HTTP methods the route accepts. Methods are normalized
// to upper case. Calling Methods multiple times replaces the previous set.
func (r *Route) Methods(methods ...string) *Route {
	if r.err != nil {
		return r
	}

	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			r.err = fmt.Errorf("mux: empty method in %v", methods)
			return r
		}
		normalized = append(normalized, m)
	}

	r.methods = normalized

	return r
}

// Order sets the explicit priority of the route. Lower values are tried
// first. The default is 0.
func (r *Route) Order(order int) *Route {
	r.order = order
	return r
}

// GetOrder returns the explicit order of the route.
func (r *Route) GetOrder() int {
	return r.order
}

// URL builds a URL for the route per RFC 3986 Section 5.3. It accepts a
// sequence of key/value pairs for the route variables. Values are checked
// against the bound constraints.
func (r *Route) URL(pairs ...string) (*url.URL, error) {
	if r.err != nil {
		return nil, r.err
	}

	if r.tpl == nil {
		return nil, ErrNoPath
	}

	values, err := mapFromPairsToString(pairs...)
	if err != nil {
		return nil, err
	}

	path, err := r.tpl.build(values)
	if err != nil {
		return nil, err
	}

	return &url.URL{Path: path}, nil
}

// GetPathTemplate returns the normalized template for the route path.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.tpl == nil {
		return "", ErrNoPath
	}
	return r.tpl.template, nil
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.methods == nil {
		return nil, errors.New("mux: route doesn't have methods")
	}
	return r.methods, nil
}

// GetVarNames returns the variable names for the route.
func (r *Route) GetVarNames() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.tpl == nil {
		return nil, nil
	}
	return r.tpl.varsN, nil
}

// Segment describes one segment of a route template. Literal segments
// carry only Literal; variables carry Name and the raw constraint list.
type Segment struct {
	Literal     string
	Name        string
	Constraints string
	Optional    bool
	CatchAll    bool
}

// IsVar reports whether the segment binds a variable.
func (s Segment) IsVar() bool {
	return s.Name != ""
}

// GetSegments returns the parsed template segments in path order.
func (r *Route) GetSegments() ([]Segment, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.tpl == nil {
		return nil, ErrNoPath
	}

	out := make([]Segment, len(r.tpl.segments))
	for i, s := range r.tpl.segments {
		if s.kind == segmentLiteral {
			out[i] = Segment{Literal: s.literal}
			continue
		}

		out[i] = Segment{
			Name:        s.name,
			Constraints: s.spec,
			Optional:    s.optional,
			CatchAll:    s.kind == segmentCatchAll,
		}
	}

	return out, nil
}

// GetError returns any error that was set on the route.
func (r *Route) GetError() error {
	return r.err
}

// String describes the route as "METHODS /template".
func (r *Route) String() string {
	methods := "*"
	if len(r.methods) > 0 {
		methods = strings.Join(r.methods, ",")
	}

	tpl := "<no path>"
	if r.tpl != nil {
		tpl = r.tpl.template
	}

	return methods + " " + tpl
}

// methodsOverlap reports whether two routes accept a common method.
func methodsOverlap(a, b *Route) bool {
	if len(a.methods) == 0 || len(b.methods) == 0 {
		return true
	}

	for _, m := range a.methods {
		if matchInArray(b.methods, m) {
			return true
		}
	}

	return false
}
