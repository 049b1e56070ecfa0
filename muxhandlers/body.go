package muxhandlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/vitalvas/strela/mux"
)

var (
	// ErrInvalidMaxSize is returned when JSONBodyConfig.MaxBytes is negative.
	ErrInvalidMaxSize = errors.New("json body: max size must not be negative")

	// ErrNoAllowedTypes is returned when JSONBodyConfig.AllowedTypes is
	// an empty non-nil slice.
	ErrNoAllowedTypes = errors.New("json body: at least one allowed content type is required")
)

// DefaultMaxBodyBytes is the body limit applied when JSONBodyConfig.MaxBytes
// is zero.
const DefaultMaxBodyBytes int64 = 1 << 20

// JSONBodyConfig configures the JSONBody middleware behaviour.
type JSONBodyConfig struct {
	// MaxBytes is the maximum request body size. Zero means
	// DefaultMaxBodyBytes.
	MaxBytes int64

	// AllowedTypes are the accepted media types, compared case-insensitively
	// without parameters. When nil, defaults to application/json.
	AllowedTypes []string

	// Methods that carry a body to check. When nil, defaults to
	// POST, PUT, PATCH.
	Methods []string
}

var defaultCheckedMethods = []string{
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
}

// JSONBodyMiddleware returns a route middleware for endpoints that decode
// JSON. For requests with a checked method and a non-empty body it answers
// 415 when the Content-Type is missing or not allowed, and caps the body
// at MaxBytes with http.MaxBytesReader. Requests without a body pass
// through untouched.
func JSONBodyMiddleware(cfg JSONBodyConfig) (mux.MiddlewareFunc, error) {
	if cfg.MaxBytes < 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	types := cfg.AllowedTypes
	if types == nil {
		types = []string{"application/json"}
	}

	if len(types) == 0 {
		return nil, ErrNoAllowedTypes
	}

	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	methods := cfg.Methods
	if methods == nil {
		methods = defaultCheckedMethods
	}

	checked := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		checked[strings.ToUpper(m)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := checked[r.Method]; !ok || !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				mux.ResponseError(w, http.StatusUnsupportedMediaType, "missing or malformed Content-Type")
				return
			}

			if _, ok := allowed[strings.ToLower(mediaType)]; !ok {
				mux.ResponseError(w, http.StatusUnsupportedMediaType, "unsupported Content-Type "+mediaType)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}, nil
}

func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}

	return r.ContentLength != 0 || len(r.TransferEncoding) > 0
}
