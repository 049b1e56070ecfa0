package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/pipeline"
)

var (
	// ErrInvalidOverrideMethod is returned when MethodOverrideConfig.AllowedMethods
	// or MethodOverrideConfig.OriginalMethods contains an empty, lower-case or
	// otherwise invalid method token.
	ErrInvalidOverrideMethod = errors.New("method override: methods must be upper-case HTTP tokens")

	// ErrInvalidOverrideHeader is returned when the header name is blank.
	ErrInvalidOverrideHeader = errors.New("method override: header name must not be empty")
)

// DefaultMethodOverrideHeader is the header read when
// MethodOverrideConfig.HeaderName is empty.
const DefaultMethodOverrideHeader = "X-HTTP-Method-Override"

// OriginalMethodKey is the Properties key under which the method before the
// override is recorded.
const OriginalMethodKey = "OriginalMethod"

// MethodViewVerb is the non-standard VIEW verb accepted as an override by
// default.
const MethodViewVerb = "VIEW"

// MethodOverrideConfig configures the Method Override middleware behaviour.
type MethodOverrideConfig struct {
	// HeaderName is the header carrying the override.
	// Defaults to DefaultMethodOverrideHeader.
	HeaderName string

	// OriginalMethods is the set of HTTP methods eligible for override.
	// When nil, defaults to [POST].
	OriginalMethods []string

	// AllowedMethods restricts which methods can be used as overrides.
	// When nil, defaults to PUT, DELETE, HEAD, PATCH, VIEW.
	AllowedMethods []string
}

var defaultOriginalMethods = []string{http.MethodPost}

var defaultOverrideMethods = []string{
	http.MethodPut,
	http.MethodDelete,
	http.MethodHead,
	http.MethodPatch,
	MethodViewVerb,
}

// MethodOverrideMiddleware returns a middleware that lets clients tunnel a
// method through POST. For a request whose method is in OriginalMethods:
//
//   - without the header, the request passes unchanged;
//   - with a value from AllowedMethods (any case), r.Method becomes the
//     upper-cased value, the original method is stored in Properties under
//     OriginalMethodKey and the header is removed;
//   - with any other value, including an empty one, the middleware answers
//     400 with a JSON error and does not call next.
//
// The request method is compared ignoring case, so "post" is eligible like
// POST. Requests with other methods are never inspected.
func MethodOverrideMiddleware(cfg MethodOverrideConfig) (mux.MiddlewareFunc, error) {
	header := cfg.HeaderName
	if header == "" {
		header = DefaultMethodOverrideHeader
	}

	if strings.TrimSpace(header) == "" || !isToken(header) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOverrideHeader, header)
	}

	header = http.CanonicalHeaderKey(header)

	originals := cfg.OriginalMethods
	if originals == nil {
		originals = defaultOriginalMethods
	}

	methods := cfg.AllowedMethods
	if methods == nil {
		methods = defaultOverrideMethods
	}

	originalSet, err := methodSet(originals)
	if err != nil {
		return nil, err
	}

	allowed, err := methodSet(methods)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := originalSet[strings.ToUpper(r.Method)]; !ok {
				next.ServeHTTP(w, r)
				return
			}

			values, present := r.Header[header]
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			var value string
			if len(values) > 0 {
				value = values[0]
			}

			override := strings.ToUpper(strings.TrimSpace(value))
			if _, ok := allowed[override]; !ok {
				mux.ResponseError(w, http.StatusBadRequest,
					fmt.Sprintf("%s: %q is not an allowed method override", header, value))
				return
			}

			props, r := pipeline.Ensure(r)
			props.Set(OriginalMethodKey, r.Method)

			r.Method = override
			r.Header.Del(header)

			next.ServeHTTP(w, r)
		})
	}, nil
}

// methodSet validates methods and returns them as a set.
func methodSet(methods []string) (map[string]struct{}, error) {
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidOverrideMethod)
	}

	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if m == "" || m != strings.ToUpper(m) || !isToken(m) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOverrideMethod, m)
		}

		set[m] = struct{}{}
	}

	return set, nil
}

// isToken reports whether s is an RFC 9110 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}

	return true
}
