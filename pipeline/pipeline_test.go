package pipeline

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracer records entry and exit of each handler.
type tracer struct {
	name  string
	calls *[]string
	stop  bool
}

func (h tracer) Name() string { return h.name }

func (h tracer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*h.calls = append(*h.calls, h.name+">")
		if h.stop {
			w.WriteHeader(http.StatusTeapot)
		} else {
			next.ServeHTTP(w, r)
		}
		*h.calls = append(*h.calls, "<"+h.name)
	})
}

type validatingTerminal struct {
	http.Handler
	err error
}

func (v validatingTerminal) Validate() error { return v.err }

func TestPipelineOrder(t *testing.T) {
	t.Run("outer to inner and back", func(t *testing.T) {
		var calls []string
		terminal := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			calls = append(calls, "terminal")
		})

		p, err := New(Config{
			Handlers: []Handler{
				tracer{name: "a", calls: &calls},
				tracer{name: "b", calls: &calls},
				tracer{name: "c", calls: &calls},
			},
			Terminal: terminal,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, p.Names())

		p.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"a>", "b>", "c>", "terminal", "<c", "<b", "<a"}, calls)
	})

	t.Run("short circuit skips inner handlers", func(t *testing.T) {
		var calls []string
		terminal := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			calls = append(calls, "terminal")
		})

		p, err := New(Config{
			Handlers: []Handler{
				tracer{name: "a", calls: &calls},
				tracer{name: "b", calls: &calls, stop: true},
				tracer{name: "c", calls: &calls},
			},
			Terminal: terminal,
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, []string{"a>", "b>", "<b", "<a"}, calls)
	})

	t.Run("empty chain", func(t *testing.T) {
		p, err := New(Config{Terminal: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "ok")
		})})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "ok", w.Body.String())
	})
}

func TestPipelineProperties(t *testing.T) {
	var seen []*Properties

	writer := Named("writer", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Set("stage", "writer")
			next.ServeHTTP(w, r)
		})
	})

	terminal := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		p := FromContext(r.Context())
		v, _ := Value[string](p, "stage")
		assert.Equal(t, "writer", v)
		seen = append(seen, p)
	})

	p, err := New(Config{Handlers: []Handler{writer}, Terminal: terminal})
	require.NoError(t, err)

	for range 2 {
		p.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestPipelinePanic(t *testing.T) {
	t.Run("converted to 500 and logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		p, err := New(Config{
			Terminal: http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				panic("boom")
			}),
			Logger: logger,
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, buf.String(), "pipeline panic")
		assert.Contains(t, buf.String(), "boom")
		assert.Contains(t, buf.String(), "/products")
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		p, err := New(Config{
			Terminal: http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				panic(http.ErrAbortHandler)
			}),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		require.NoError(t, err)

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			p.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestNewErrors(t *testing.T) {
	noop := func(next http.Handler) http.Handler { return next }
	terminal := http.NotFoundHandler()

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "nil terminal", cfg: Config{}, want: ErrNilTerminal},
		{name: "nil handler", cfg: Config{Handlers: []Handler{nil}, Terminal: terminal}, want: ErrNilHandler},
		{name: "nil middleware", cfg: Config{Handlers: []Handler{Named("x", nil)}, Terminal: terminal}, want: ErrNilHandler},
		{name: "empty name", cfg: Config{Handlers: []Handler{Named("", noop)}, Terminal: terminal}, want: ErrHandlerName},
		{name: "duplicate", cfg: Config{Handlers: []Handler{Named("x", noop), Named("x", noop)}, Terminal: terminal}, want: ErrDuplicateHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("terminal validation", func(t *testing.T) {
		bad := errors.New("ambiguous")

		_, err := New(Config{Terminal: validatingTerminal{Handler: terminal, err: bad}})
		assert.ErrorIs(t, err, bad)

		_, err = New(Config{Terminal: validatingTerminal{Handler: terminal}})
		assert.NoError(t, err)
	})
}

func TestExecute(t *testing.T) {
	t.Run("runs chain", func(t *testing.T) {
		var calls []string
		w := httptest.NewRecorder()

		err := Execute(w, httptest.NewRequest(http.MethodGet, "/", nil),
			[]Handler{tracer{name: "a", calls: &calls}},
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls = append(calls, "terminal")
				w.WriteHeader(http.StatusNoContent)
			}),
		)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"a>", "terminal", "<a"}, calls)
	})

	t.Run("configuration error", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Execute(w, httptest.NewRequest(http.MethodGet, "/", nil), nil, nil)

		assert.ErrorIs(t, err, ErrNilTerminal)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
