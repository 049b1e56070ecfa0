package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/strela/mux"
)

// ErrInvalidHeaderName is returned when RemoveHeadersConfig.Headers holds a
// name that is not an HTTP token.
var ErrInvalidHeaderName = errors.New("remove headers: invalid header name")

// DefaultRemovedHeaders lists the server fingerprinting headers removed when
// RemoveHeadersConfig.Headers is nil.
var DefaultRemovedHeaders = []string{"X-Powered-By", "X-AspNet-Version", "Server"}

// RemoveHeadersConfig configures the RemoveHeaders middleware behaviour.
type RemoveHeadersConfig struct {
	// Headers are the response header names to delete.
	// Defaults to DefaultRemovedHeaders.
	Headers []string
}

// RemoveHeadersMiddleware returns a middleware that deletes the configured
// headers from the response header map after the rest of the chain returns.
//
// Deletion after next only affects headers that have not been sent: once
// an inner handler has written the status line or body, the headers are on
// the wire and removing them from the map has no effect on the response.
func RemoveHeadersMiddleware(cfg RemoveHeadersConfig) (mux.MiddlewareFunc, error) {
	headers := cfg.Headers
	if headers == nil {
		headers = DefaultRemovedHeaders
	}

	names := make([]string, 0, len(headers))
	for _, h := range headers {
		if !isToken(h) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderName, h)
		}

		names = append(names, http.CanonicalHeaderKey(h))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			if r.Context().Err() != nil {
				return
			}

			h := w.Header()
			for _, name := range names {
				h.Del(name)
			}
		})
	}, nil
}
