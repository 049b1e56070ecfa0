package muxhandlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
		wantLog  bool
	}{
		{
			name: "no panic",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
			wantCode: http.StatusAccepted,
		},
		{
			name: "string panic",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				panic("boom")
			},
			wantCode: http.StatusInternalServerError,
			wantLog:  true,
		},
		{
			name: "error panic",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				panic(assert.AnError)
			},
			wantCode: http.StatusInternalServerError,
			wantLog:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := bufferLogger(slog.LevelInfo)

			var recovered any
			h := wrap(RecoveryMiddleware(RecoveryConfig{
				Logger: logger,
				LogFunc: func(_ *http.Request, err any) {
					recovered = err
				},
			}), tt.handler)

			w := serve(h, httptest.NewRequest(http.MethodGet, "/products/1001", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if !tt.wantLog {
				assert.Nil(t, recovered)
				assert.Empty(t, buf.String())
				return
			}

			assert.NotNil(t, recovered)
			assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeError(t, w))
			assert.Contains(t, buf.String(), `msg="panic recovered"`)
			assert.Contains(t, buf.String(), "path=/products/1001")
			assert.Contains(t, buf.String(), "stack=")
		})
	}

	t.Run("abort handler is re-raised", func(t *testing.T) {
		h := wrap(RecoveryMiddleware(RecoveryConfig{Logger: discardLogger()}), func(_ http.ResponseWriter, _ *http.Request) {
			panic(http.ErrAbortHandler)
		})

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})

	t.Run("request id in log", func(t *testing.T) {
		logger, buf := bufferLogger(slog.LevelInfo)

		recovery := RecoveryMiddleware(RecoveryConfig{Logger: logger})
		requestID := RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *http.Request) string { return "req-42" },
		})

		h := requestID(recovery(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			panic("boom")
		})))

		w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "req-42", w.Header().Get(DefaultRequestIDHeader))
		assert.Contains(t, buf.String(), "request_id=req-42")
	})
}

func BenchmarkRecoveryMiddleware(b *testing.B) {
	h := wrap(RecoveryMiddleware(RecoveryConfig{Logger: discardLogger()}), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
