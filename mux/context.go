package mux

import (
	"context"
	"errors"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store both route and vars.
var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted variables.
type routeContext struct {
	route *Route
	vars  map[string]string
}

// Vars returns the route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.vars
	}
	return nil
}

// VarGet returns the value of a single route variable by name and a boolean
// indicating whether the variable exists. An absent optional variable does
// not exist.
func VarGet(r *http.Request, name string) (string, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.vars != nil {
		val, exists := rc.vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
// This only works when called inside the handler of the matched route
// because the matched route is stored in the request context.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetURLVars(r *http.Request, val map[string]string) *http.Request {
	var route *Route
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		route = rc.route
	}
	return setRouteContext(r, route, val)
}

// setRouteContext stores both the matched route and vars in the request
// context using a single WithContext call. Routes without variables reuse
// the routeContext prepared by Validate.
func setRouteContext(r *http.Request, route *Route, vars map[string]string) *http.Request {
	var rc *routeContext
	if route != nil && vars == nil && route.staticCtx != nil {
		rc = route.staticCtx
	} else {
		rc = &routeContext{route: route, vars: vars}
	}
	ctx := context.WithValue(r.Context(), ctxKey, rc)
	return r.WithContext(ctx)
}

// RouteMatch stores information about a matched route.
type RouteMatch struct {
	// Route is the matched route, if any.
	Route *Route

	// Handler is the handler to use for the matched route.
	Handler http.Handler

	// Vars contains the extracted path variables from the matched route.
	Vars map[string]string

	// MatchErr is ErrNotFound when no route fits the path and
	// ErrMethodMismatch when at least one does but none accepts the
	// request method.
	MatchErr error

	// allowed is the sorted union of methods of the routes that fit the
	// path, used for the Allow header of a 405 response.
	allowed []string
}

// Allowed returns the methods that would have been accepted for the path
// when MatchErr is ErrMethodMismatch.
func (m *RouteMatch) Allowed() []string {
	return m.allowed
}

// MiddlewareFunc is a function which receives an http.Handler and returns
// another http.Handler. It can be used to wrap handlers with additional
// behavior such as logging, authentication, etc.
type MiddlewareFunc func(http.Handler) http.Handler

// Middleware allows MiddlewareFunc to implement the Middleware interface.
func (mw MiddlewareFunc) Middleware(handler http.Handler) http.Handler {
	return mw(handler)
}

// WalkFunc is the type of the function called for each route visited by Walk.
type WalkFunc func(route *Route, router *Router) error

// ErrMethodMismatch is returned when the method in the request does not match
// the method defined against the route. Triggers 405 Method Not Allowed
// per RFC 7231 Section 6.5.5.
var ErrMethodMismatch = errors.New("method is not allowed")

// ErrNotFound is returned when no route match is found. Triggers 404 Not Found
// per RFC 7231 Section 6.5.4.
var ErrNotFound = errors.New("no matching route was found")

var (
	// ErrAmbiguousRoute is returned by Router.Validate when two routes with
	// the same order can match the same path for a common method.
	ErrAmbiguousRoute = errors.New("mux: ambiguous routes")

	// ErrDuplicateName is set on a route whose name is already taken.
	ErrDuplicateName = errors.New("mux: duplicate route name")

	// ErrNoPath is reported for a route registered without a path template.
	ErrNoPath = errors.New("mux: route doesn't have a path")

	// ErrNoHandler is reported for a route registered without a handler.
	ErrNoHandler = errors.New("mux: route doesn't have a handler")

	// ErrRouterCompiled is set on routes registered after Validate.
	ErrRouterCompiled = errors.New("mux: router already compiled")
)
