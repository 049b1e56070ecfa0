// Package api registers the strela demo endpoints: values, products and
// orders, plus the Prometheus metrics endpoint and the OpenAPI document.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalvas/strela/constraint"
	"github.com/vitalvas/strela/mux"
	"github.com/vitalvas/strela/muxhandlers"
	"github.com/vitalvas/strela/openapi"
)

// RouteGetByID names the single-product route used to build Location
// headers.
const RouteGetByID = "GetById"

// Config configures the demo router.
type Config struct {
	// Widgets are the members of the widget constraint.
	Widgets []string

	CaseInsensitive bool

	// MaxBodyBytes limits JSON request bodies. Zero uses the middleware
	// default.
	MaxBodyBytes int64

	// MetricsPath serves Gatherer in the Prometheus text format. Empty
	// disables the endpoint.
	MetricsPath string
	Gatherer    prometheus.Gatherer

	// OpenAPIPath serves the routing table as <path>.json and <path>.yaml.
	// Empty disables the documents.
	OpenAPIPath string
	Version     string

	Logger *slog.Logger
}

// NewRouter builds and validates the demo routing table. Every routing
// problem, including ambiguous routes, is reported here.
func NewRouter(cfg Config) (*mux.Router, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := constraint.NewRegistry()
	if err := reg.Register("widget", constraint.Enum(cfg.Widgets...)); err != nil {
		return nil, fmt.Errorf("api: widget constraint: %w", err)
	}

	router := mux.NewRouter().WithConstraints(reg)
	if cfg.CaseInsensitive {
		router.CaseInsensitive()
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mux.ResponseError(w, http.StatusNotFound, "no route matches the request path")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ResponseError(w, http.StatusMethodNotAllowed, r.Method+" is not allowed for this path")
	})

	body, err := muxhandlers.JSONBodyMiddleware(muxhandlers.JSONBodyConfig{MaxBytes: cfg.MaxBodyBytes})
	if err != nil {
		return nil, err
	}
	router.Use(body)

	h := &handlers{router: router, logger: logger, widgets: cfg.Widgets}

	h.registerValues(router.Group("/api/values"))
	h.registerProducts(router, router.Group("/products"))
	h.registerOrders(router.Group("/orders"))

	if cfg.MetricsPath != "" {
		gatherer := cfg.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}

		router.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
		})).Methods(http.MethodGet)
	}

	if cfg.OpenAPIPath != "" {
		version := cfg.Version
		if version == "" {
			version = "dev"
		}

		openapi.Handle(router, cfg.OpenAPIPath, openapi.Info{
			Title:       "strela demo API",
			Description: "Values, products and orders served through the strela pipeline.",
			Version:     version,
		})
	}

	if err := router.Validate(); err != nil {
		return nil, err
	}

	return router, nil
}

type handlers struct {
	router  *mux.Router
	logger  *slog.Logger
	widgets []string
}
