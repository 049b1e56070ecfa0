package muxhandlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/strela/mux"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives recovered panics with their stack trace.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// LogFunc is an optional callback invoked with the request and the
	// recovered value in addition to Logger.
	LogFunc func(r *http.Request, err any)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers and answers 500 Internal Server Error.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logFunc := cfg.LogFunc

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}

				if err == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
					panic(err)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)

				if logFunc != nil {
					logFunc(r, err)
				}

				mux.ResponseError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
