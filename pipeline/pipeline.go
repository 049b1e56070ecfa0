package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

var (
	// ErrNilTerminal is returned by New when no terminal handler is set.
	ErrNilTerminal = errors.New("pipeline: terminal handler is nil")

	// ErrNilHandler is returned by New when a handler is nil.
	ErrNilHandler = errors.New("pipeline: handler is nil")

	// ErrHandlerName is returned by New when a handler has an empty name.
	ErrHandlerName = errors.New("pipeline: handler name is empty")

	// ErrDuplicateHandler is returned by New when two handlers share a name.
	ErrDuplicateHandler = errors.New("pipeline: duplicate handler name")
)

// Handler is a named request/response interceptor. Middleware receives the
// continuation made of the remaining handlers and the terminal. Handlers hold
// immutable configuration only; per-request data belongs in Properties or
// the request context.
type Handler interface {
	Name() string
	Middleware(next http.Handler) http.Handler
}

type namedHandler struct {
	name string
	mw   func(http.Handler) http.Handler
}

func (h namedHandler) Name() string { return h.name }

func (h namedHandler) Middleware(next http.Handler) http.Handler { return h.mw(next) }

// Named adapts a middleware function, such as a mux.MiddlewareFunc, into a
// Handler. A nil mw yields a handler that New rejects.
func Named(name string, mw func(http.Handler) http.Handler) Handler {
	if mw == nil {
		return nil
	}

	return namedHandler{name: name, mw: mw}
}

// validator is implemented by terminals that check their configuration,
// such as *mux.Router.
type validator interface {
	Validate() error
}

// Config configures a Pipeline.
type Config struct {
	// Handlers in outer to inner order.
	Handlers []Handler

	// Terminal receives requests that pass every handler.
	Terminal http.Handler

	// Logger receives panics recovered by the executor.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Pipeline is a composed handler chain. It is safe for concurrent use.
type Pipeline struct {
	handler http.Handler
	names   []string
	logger  *slog.Logger
}

// New validates cfg and composes the chain. When the terminal implements
// Validate() error, it is called so that routing problems fail here.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Terminal == nil {
		return nil, ErrNilTerminal
	}

	seen := make(map[string]struct{}, len(cfg.Handlers))
	names := make([]string, 0, len(cfg.Handlers))

	for i, h := range cfg.Handlers {
		if h == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilHandler, i)
		}

		name := h.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: position %d", ErrHandlerName, i)
		}

		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHandler, name)
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	if v, ok := cfg.Terminal.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline: terminal: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		handler: compose(cfg.Handlers, cfg.Terminal),
		names:   names,
		logger:  logger,
	}, nil
}

// compose wraps terminal so that handlers[0] is the outermost layer.
func compose(handlers []Handler, terminal http.Handler) http.Handler {
	h := terminal
	for i := len(handlers) - 1; i >= 0; i-- {
		h = handlers[i].Middleware(h)
	}

	return h
}

// Names returns the handler names in execution order.
func (p *Pipeline) Names() []string {
	return append([]string(nil), p.names...)
}

// ServeHTTP attaches a fresh Properties to the request and runs the chain.
// A panic escaping the chain is logged and answered with 500, except
// http.ErrAbortHandler which is re-raised for net/http.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
			panic(rec)
		}

		p.logger.Error("pipeline panic",
			slog.Any("panic", rec),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("stack", string(debug.Stack())),
		)

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}()

	r = r.WithContext(WithProperties(r.Context(), NewProperties()))

	p.handler.ServeHTTP(w, r)
}

// Execute runs handlers and terminal once for a single request. It builds
// the chain on every call; long-lived servers should use New. The returned
// error is a configuration error, in which case 500 has been written.
func Execute(w http.ResponseWriter, r *http.Request, handlers []Handler, terminal http.Handler) error {
	p, err := New(Config{Handlers: handlers, Terminal: terminal})
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	p.ServeHTTP(w, r)

	return nil
}
