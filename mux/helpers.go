package mux

import (
	"fmt"
	"net/http"
	"path"
	"slices"
)

var (
	defaultNotFoundHandler         = http.NotFoundHandler()
	defaultMethodNotAllowedHandler = methodNotAllowedHandler()
)

// cleanPath returns the canonical path for p, eliminating . and .. elements
// per RFC 3986 Section 5.2.4 (remove dot segments).
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// checkPairs returns an error if the list of key/value pairs has odd length.
func checkPairs(pairs ...string) (int, error) {
	if len(pairs)%2 != 0 {
		return 0, fmt.Errorf("mux: number of parameters must be multiple of 2, got %v", pairs)
	}
	return len(pairs) / 2, nil
}

// mapFromPairsToString converts variadic string parameters to a string map.
func mapFromPairsToString(pairs ...string) (map[string]string, error) {
	length, err := checkPairs(pairs...)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, length)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m, nil
}

// matchInArray returns true if the given string value is in the array.
func matchInArray(arr []string, value string) bool {
	return slices.Contains(arr, value)
}

// appendMethods adds the methods not yet present in dst.
func appendMethods(dst, methods []string) []string {
	for _, m := range methods {
		if !matchInArray(dst, m) {
			dst = append(dst, m)
		}
	}
	return dst
}

// methodNotAllowed replies to the request with an HTTP 405 method not allowed.
// RFC 7231 Section 6.5.5: the Allow header is set by the caller (Router.ServeHTTP)
// before this handler is invoked.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// methodNotAllowedHandler returns a HandlerFunc that replies with 405.
func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(methodNotAllowed)
}
