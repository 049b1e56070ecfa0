package muxhandlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitalvas/strela/mux"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})), buf
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func wrap(mw mux.MiddlewareFunc, h http.HandlerFunc) http.Handler {
	return mw(h)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body mux.ErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

	return body.Error
}
