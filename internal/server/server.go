// Package server runs the strela HTTP listener with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/vitalvas/strela/internal/config"
)

// Server wraps an http.Server configured from config.ServerConfig.
type Server struct {
	cfg    config.ServerConfig
	srv    *http.Server
	logger *slog.Logger
}

// New returns a server for handler. With cfg.H2C the handler also accepts
// cleartext HTTP/2, which is meant for use behind a trusted proxy only.
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down,
// waiting up to ShutdownTimeout for in-flight requests. It returns nil
// after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening",
			slog.String("addr", ln.Addr().String()),
			slog.Bool("h2c", s.cfg.H2C),
		)

		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("server shutting down", slog.Duration("timeout", s.cfg.ShutdownTimeout))

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}

		return nil
	})

	return g.Wait()
}
