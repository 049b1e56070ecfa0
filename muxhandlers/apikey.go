package muxhandlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/strela/mux"
)

// ErrNoKeySource is returned when APIKeyConfig has neither ValidateFunc nor
// Keys configured.
var ErrNoKeySource = errors.New("api key: at least one of ValidateFunc or Keys must be set")

// DefaultAPIKeyHeader is used when APIKeyConfig.HeaderName is empty.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyConfig configures the API key middleware behaviour. The decision
// whether a key is acceptable belongs to the caller.
type APIKeyConfig struct {
	// HeaderName carries the key. Defaults to DefaultAPIKeyHeader.
	HeaderName string

	// Realm is sent in the WWW-Authenticate challenge.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc decides dynamically whether key is accepted for r.
	// Takes priority over Keys when both are set.
	ValidateFunc func(r *http.Request, key string) bool

	// Keys is a static set of accepted keys, compared using SHA-256 hashed
	// constant-time comparison.
	Keys []string
}

// APIKeyMiddleware returns a middleware that rejects requests without an
// accepted API key with 401 Unauthorized and a JSON error body.
//
// It returns ErrNoKeySource if both ValidateFunc and Keys are empty.
func APIKeyMiddleware(cfg APIKeyConfig) (mux.MiddlewareFunc, error) {
	if cfg.ValidateFunc == nil && len(cfg.Keys) == 0 {
		return nil, ErrNoKeySource
	}

	header := cfg.HeaderName
	if header == "" {
		header = DefaultAPIKeyHeader
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	challenge := fmt.Sprintf("APIKey realm=%q, header=%q", realm, header)

	validate := cfg.ValidateFunc
	if validate == nil {
		hashes := make([][sha256.Size]byte, 0, len(cfg.Keys))
		for _, k := range cfg.Keys {
			hashes = append(hashes, sha256.Sum256([]byte(k)))
		}

		validate = func(_ *http.Request, key string) bool {
			return matchKey(hashes, key)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(header)
			if key == "" || !validate(r, key) {
				w.Header().Set("WWW-Authenticate", challenge)
				mux.ResponseError(w, http.StatusUnauthorized, "missing or invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// matchKey compares key against every stored hash without stopping early,
// so the position of a match does not leak through timing.
func matchKey(hashes [][sha256.Size]byte, key string) bool {
	sum := sha256.Sum256([]byte(key))

	found := 0
	for i := range hashes {
		found |= subtle.ConstantTimeCompare(sum[:], hashes[i][:])
	}

	return found == 1
}
