package mux

import (
	"net/http"
	"strings"
)

// Group registers routes under a shared path prefix on the parent router.
// Routes of a group take part in the router's ordering like any other route.
//
//	products := r.Group("/products")
//	products.HandleFunc("/{id:int}", getProduct).Methods(http.MethodGet)
type Group struct {
	router *Router
	prefix string
}

// Group returns a group for prefix. The prefix is a literal or template
// path; its variables are available to every route of the group.
func (r *Router) Group(prefix string) *Group {
	return &Group{router: r, prefix: strings.TrimRight("/"+strings.Trim(prefix, "/"), "/")}
}

// Group returns a nested group.
func (g *Group) Group(prefix string) *Group {
	return &Group{router: g.router, prefix: strings.TrimRight(g.join(prefix), "/")}
}

// Prefix returns the group path prefix.
func (g *Group) Prefix() string {
	if g.prefix == "" {
		return "/"
	}
	return g.prefix
}

// Handle registers a route under the group prefix.
func (g *Group) Handle(tpl string, handler http.Handler) *Route {
	return g.router.Handle(g.join(tpl), handler)
}

// HandleFunc registers a route function under the group prefix.
func (g *Group) HandleFunc(tpl string, f func(http.ResponseWriter, *http.Request)) *Route {
	return g.router.HandleFunc(g.join(tpl), f)
}

// Path registers a route without handler under the group prefix.
func (g *Group) Path(tpl string) *Route {
	return g.router.Path(g.join(tpl))
}

func (g *Group) join(tpl string) string {
	tpl = strings.Trim(tpl, "/")
	if tpl == "" {
		return g.Prefix()
	}
	return g.prefix + "/" + tpl
}
