// Package constraint implements named route-parameter constraints used by
// the mux router to validate and disambiguate path segments.
//
// A constraint is referenced from a route template by name, optionally
// followed by an argument list in parentheses. Several references may be
// chained with colons and all of them must accept the value:
//
//	r.HandleFunc("/products/{id:int:range(1000,3000)}", handler)
//	r.HandleFunc("/orders/{status:regex(^(?i)(new|complete|pending)$)}", handler)
//	r.HandleFunc("/products/widget/{widget:enum(Bolt,Screw,Nut,Motor)}", handler)
//
// Each reference is resolved to a Factory in a Registry. The factory parses
// its argument string once, when the route is registered, and returns a
// Matcher that is evaluated for every request without further parsing.
// Malformed arguments and unknown names are reported at registration time.
//
// # Built-in constraints
//
//	int            - 32-bit signed integer
//	long           - 64-bit signed integer
//	bool           - "true" or "false", case-insensitive
//	decimal        - decimal number without exponent (e.g. -12.50)
//	double         - finite 64-bit floating point number
//	float          - finite 32-bit floating point number
//	datetime       - RFC 3339 timestamp or ISO 8601 date
//	guid, uuid     - RFC 4122 UUID in any form accepted by google/uuid
//	alpha          - ASCII letters
//	alphanum       - ASCII letters and digits
//	slug           - URL-safe slug (e.g. my-post-title)
//	hex            - hexadecimal string
//	date           - ISO 8601 date (e.g. 2024-01-15)
//	domain         - domain name per RFC 1123
//	base64         - base64 alphabet text (standard or URL-safe, optional padding)
//	min(n)         - integer >= n
//	max(n)         - integer <= n
//	range(a,b)     - integer in [a, b]
//	length(n)      - exactly n characters
//	length(a,b)    - between a and b characters
//	minlength(n)   - at least n characters
//	maxlength(n)   - at most n characters
//	regex(p)       - whole value matches p; use (?i) for case-insensitivity
//	enum(A,B,...)  - case-insensitive member of the listed set
//
// # Custom constraints
//
// Applications register their own factories before the router is compiled.
// Enum builds a factory for a fixed, named set:
//
//	reg := constraint.NewRegistry()
//	if err := reg.Register("widget", constraint.Enum("Bolt", "Screw", "Nut", "Motor")); err != nil {
//	    log.Fatal(err)
//	}
//	r := mux.NewRouter().WithConstraints(reg)
//	r.HandleFunc("/products/widget/{widget:widget}", handler)
//
// The registry is sealed when the router is validated; registering after
// that returns ErrSealed.
package constraint
