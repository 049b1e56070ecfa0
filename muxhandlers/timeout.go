package muxhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalvas/strela/mux"
)

// ErrInvalidTimeout is returned when TimeoutConfig.Duration is not greater
// than zero.
var ErrInvalidTimeout = errors.New("timeout: duration must be greater than zero")

// TimeoutConfig configures the Timeout middleware behaviour.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the rest of the chain.
	Duration time.Duration

	// Message is the 503 response body. When empty, the standard library
	// default is used.
	Message string

	// Logger receives a warning for every expired request.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// TimeoutMiddleware returns a middleware that bounds the execution time of
// the rest of the chain with http.TimeoutHandler. On expiry the client gets
// 503 Service Unavailable and the continuation's context is canceled, so
// inner stages observe ctx.Err().
//
// It returns ErrInvalidTimeout if Duration is not greater than zero.
func TimeoutMiddleware(cfg TimeoutConfig) (mux.MiddlewareFunc, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidTimeout
	}

	duration := cfg.Duration
	message := cfg.Message

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, duration, message)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()

			th.ServeHTTP(sw, r)

			if sw.Status() == http.StatusServiceUnavailable && time.Since(start) >= duration {
				logger.WarnContext(r.Context(), "request timed out",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", duration),
				)
			}
		})
	}, nil
}
