package muxhandlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/strela/mux"
)

func TestJSONBodyMiddleware(t *testing.T) {
	t.Run("config validation", func(t *testing.T) {
		_, err := JSONBodyMiddleware(JSONBodyConfig{MaxBytes: -1})
		assert.ErrorIs(t, err, ErrInvalidMaxSize)

		_, err = JSONBodyMiddleware(JSONBodyConfig{AllowedTypes: []string{}})
		assert.ErrorIs(t, err, ErrNoAllowedTypes)
	})

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantCode    int
	}{
		{"json post", http.MethodPost, "application/json", `{"name":"bolt"}`, http.StatusOK},
		{"json with charset", http.MethodPut, "Application/JSON; charset=utf-8", `{}`, http.StatusOK},
		{"missing content type", http.MethodPost, "", `{}`, http.StatusUnsupportedMediaType},
		{"wrong content type", http.MethodPatch, "text/plain", `{}`, http.StatusUnsupportedMediaType},
		{"malformed content type", http.MethodPost, "application/", `{}`, http.StatusUnsupportedMediaType},
		{"empty body is not checked", http.MethodPost, "", "", http.StatusOK},
		{"get is not checked", http.MethodGet, "text/plain", "ignored", http.StatusOK},
	}

	mw, err := JSONBodyMiddleware(JSONBodyConfig{})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := wrap(mw, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/products", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := serve(h, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnsupportedMediaType {
				assert.NotEmpty(t, decodeError(t, w))
			}
		})
	}

	t.Run("body over limit", func(t *testing.T) {
		small, err := JSONBodyMiddleware(JSONBodyConfig{MaxBytes: 4})
		require.NoError(t, err)

		var readErr error
		h := wrap(small, func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
			if readErr != nil {
				mux.ResponseError(w, http.StatusRequestEntityTooLarge, readErr.Error())
			}
		})

		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"motor"}`))
		req.Header.Set("Content-Type", "application/json")

		w := serve(h, req)

		var maxErr *http.MaxBytesError
		require.True(t, errors.As(readErr, &maxErr))
		assert.Equal(t, int64(4), maxErr.Limit)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
