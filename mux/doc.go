// Package mux implements a request router and dispatcher that selects a
// route by path template, parameter constraints, explicit order and HTTP
// method.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics, successor to RFC 7231)
//   - RFC 3986 (URIs)
//
// # Router
//
// Create a router, register routes and compile it once at startup:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/products/{id:int:range(1000,3000)}", getProduct).
//		Methods(http.MethodGet).
//		Name("GetById")
//	if err := r.Validate(); err != nil {
//		return err
//	}
//
// Validate reports every configuration problem at once: malformed templates,
// unknown constraints, bad constraint arguments, duplicate names and
// ambiguous routes. ServeHTTP calls Validate lazily and answers 500 while
// the table is invalid.
//
// # Templates
//
// A template is a sequence of segments separated by '/'. A segment is
// either a literal or a variable that occupies the whole segment:
//
//	{name}                  any non-empty segment
//	{name:int}              constrained
//	{name:int:range(1,9)}   several constraints, all must accept
//	{name?}                 optional, only as trailing segments
//	{*rest}                 catch-all for the remaining path
//
// A trailing slash in the template or the request is insignificant, and
// request paths are cleaned of dot segments unless SkipClean is set.
// Literal segments compare case-sensitively unless the router was created
// with CaseInsensitive.
//
// # Constraints
//
// Constraint names are resolved against the router's constraint.Registry
// when the route is registered. Custom constraints are added to a registry
// before it is handed to the router:
//
//	reg := constraint.NewRegistry()
//	reg.MustRegister("widget", constraint.Enum("Bolt", "Screw", "Nut", "Motor"))
//	r := mux.NewRouter().WithConstraints(reg)
//	r.HandleFunc("/products/widget/{widget:widget}", getWidget)
//
// The registry is sealed by Validate.
//
// # Selection
//
// Among routes whose template and constraints fit the path, the route with
// the lowest Order wins. There is no secondary rule: two routes with equal
// order that can match the same path for a common method make Validate fail
// with ErrAmbiguousRoute, even when one is more specific than the other.
// Constraints are ignored by that check, so "/p/{id:int}" and "/p/{name}"
// need distinct orders.
//
//	r.HandleFunc("/orders/{id:length(8)}", getOrder).Order(2)
//	r.HandleFunc("/orders/{status:regex(^(?i)(new|complete|pending)$)}", listOrders).Order(1)
//
// When some route fits the path but none accepts the method, the router
// responds 405 with an Allow header listing the accepted methods.
// Otherwise it responds 404.
//
// # Groups
//
//	products := r.Group("/products")
//	products.HandleFunc("/", listProducts).Methods(http.MethodGet)
//	products.HandleFunc("/{id}/orders/{custid}", productOrders)
//
// # Path Variables
//
//	vars := mux.Vars(r)
//	id, ok := mux.VarGet(r, "id")
//
// # Middleware
//
// Router middleware wraps matched handlers only and is applied once by
// Validate:
//
//	r.Use(func(next http.Handler) http.Handler { ... })
//
// Pre-routing concerns such as method override belong in a
// pipeline.Pipeline in front of the router.
//
// # URL Building
//
//	u, err := r.Get("GetById").URL("id", "1001")
//
// Values are checked against the route's constraints.
package mux
