package muxhandlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/pipeline"
)

// RequestIDKey names the request ID in Properties.
const RequestIDKey = "RequestID"

// DefaultRequestIDHeader carries the ID unless RequestIDConfig.HeaderName
// says otherwise.
const DefaultRequestIDHeader = "X-Request-ID"

// MaxIncomingRequestIDLength bounds a client supplied ID. Longer values, or
// values with characters outside printable ASCII, are replaced.
const MaxIncomingRequestIDLength = 128

type requestIDKey struct{}

// RequestIDFromContext reads the ID attached by RequestIDMiddleware, or ""
// for a request that never passed the stage.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDConfig configures RequestIDMiddleware.
type RequestIDConfig struct {
	// HeaderName defaults to DefaultRequestIDHeader.
	HeaderName string

	// GenerateFunc mints IDs; GenerateUUIDv4 when nil. An empty result
	// leaves the request untagged.
	GenerateFunc func(r *http.Request) string

	// TrustIncoming keeps a well-formed ID sent by the client.
	TrustIncoming bool
}

// RequestIDMiddleware tags every request with an ID. The same value is
// written to the request and response headers, the context
// (RequestIDFromContext) and Properties under RequestIDKey, so later stages
// and log lines can correlate on it.
func RequestIDMiddleware(cfg RequestIDConfig) mux.MiddlewareFunc {
	header := cfg.HeaderName
	if header == "" {
		header = DefaultRequestIDHeader
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.TrustIncoming {
				if v := r.Header.Get(header); validIncomingID(v) {
					id = v
				}
			}

			if id == "" {
				id = generate(r)
			}

			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			r.Header.Set(header, id)
			w.Header().Set(header, id)

			props, r := pipeline.Ensure(r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
			props.Set(RequestIDKey, id)

			next.ServeHTTP(w, r)
		})
	}
}

func validIncomingID(id string) bool {
	if id == "" || len(id) > MaxIncomingRequestIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

// GenerateUUIDv4 mints a random ID (RFC 9562, section 5.4).
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.NewString()
}

// GenerateUUIDv7 mints a time-ordered ID (RFC 9562, section 5.7), so IDs
// sort by arrival in logs.
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
