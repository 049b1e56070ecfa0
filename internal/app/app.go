// Package app assembles the strela request pipeline in front of the demo
// router.
package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitalvas/strela/internal/api"
	"github.com/vitalvas/strela/internal/config"
	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/muxhandlers"
	"github.com/vitalvas/strela/pipeline"
)

// Stage names of the assembled pipeline, outermost first.
const (
	StageRecovery       = "recovery"
	StageRequestID      = "requestid"
	StageTimingTotal    = "timing-total"
	StageRemoveHeaders  = "removeheaders"
	StageClientIP       = "clientip"
	StageAPIKey         = "apikey"
	StageMethodOverride = "methodoverride"
	StageTimeout        = "timeout"
	StageTimingDispatch = "timing-dispatch"
)

// NewHandler builds the router and the pipeline around it. The API key
// stage is present only when keys are configured and the timeout stage only
// for a positive request timeout. Metrics are registered on reg, which is
// also what the metrics endpoint exposes; a nil reg gets a private registry.
func NewHandler(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (*pipeline.Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	router, err := api.NewRouter(api.Config{
		Widgets:         cfg.Routing.Widgets,
		CaseInsensitive: cfg.Routing.CaseInsensitive,
		MaxBodyBytes:    cfg.Routing.MaxBodyBytes,
		MetricsPath:     cfg.Routing.MetricsPath,
		OpenAPIPath:     cfg.Routing.OpenAPIPath,
		Gatherer:        reg,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	handlers, err := stages(cfg.Pipeline, logger, reg)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Config{
		Handlers: handlers,
		Terminal: router,
		Logger:   logger,
	})
}

func stages(cfg config.PipelineConfig, logger *slog.Logger, reg prometheus.Registerer) ([]pipeline.Handler, error) {
	steps := []struct {
		name    string
		enabled bool
		build   func() (mux.MiddlewareFunc, error)
	}{
		{StageRecovery, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: logger}), nil
		}},
		{StageRequestID, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
				GenerateFunc:  muxhandlers.GenerateUUIDv7,
				TrustIncoming: cfg.TrustRequestID,
			}), nil
		}},
		{StageTimingTotal, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.TimingMiddleware(muxhandlers.TimingConfig{Stage: "total", Registerer: reg, Logger: logger})
		}},
		{StageRemoveHeaders, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.RemoveHeadersMiddleware(muxhandlers.RemoveHeadersConfig{Headers: cfg.RemoveHeaders})
		}},
		{StageClientIP, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.ClientIPMiddleware(muxhandlers.ClientIPConfig{TrustedProxies: cfg.TrustedProxies})
		}},
		{StageAPIKey, len(cfg.APIKeys) > 0, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.APIKeyMiddleware(muxhandlers.APIKeyConfig{HeaderName: cfg.APIKeyHeader, Keys: cfg.APIKeys})
		}},
		{StageMethodOverride, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.MethodOverrideMiddleware(muxhandlers.MethodOverrideConfig{
				HeaderName:     cfg.OverrideHeader,
				AllowedMethods: cfg.OverrideMethods,
			})
		}},
		{StageTimeout, cfg.RequestTimeout > 0, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.TimeoutMiddleware(muxhandlers.TimeoutConfig{Duration: cfg.RequestTimeout, Logger: logger})
		}},
		{StageTimingDispatch, true, func() (mux.MiddlewareFunc, error) {
			return muxhandlers.TimingMiddleware(muxhandlers.TimingConfig{Stage: "dispatch", Registerer: reg, Logger: logger})
		}},
	}

	handlers := make([]pipeline.Handler, 0, len(steps))
	for _, s := range steps {
		if !s.enabled {
			continue
		}

		mw, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("app: %s: %w", s.name, err)
		}

		handlers = append(handlers, pipeline.Named(s.name, mw))
	}

	return handlers, nil
}
