// Package openapi describes a mux.Router as an OpenAPI 3.2 document.
//
// The document is derived from the routing table alone: every route with a
// path and methods becomes an operation, and each path variable becomes a
// required path parameter. Constraints translate to JSON Schema keywords:
//
//	int, long               -> integer (int32, int64)
//	min, max, range         -> minimum, maximum
//	length, minlength, ...  -> minLength, maxLength
//	regex(p)                -> pattern "^(?:p)$"
//	enum(...) and named     -> enum
//	enums such as widget
//	guid, datetime, date    -> string formats
//
// Constraints without a schema equivalent are named in the parameter
// description. Methods outside the fixed OpenAPI set, such as VIEW, are
// listed under additionalOperations.
//
// Serve the document with Handle:
//
//	openapi.Handle(r, "/openapi", openapi.Info{Title: "Products", Version: "1.0.0"})
package openapi
