package muxhandlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitalvas/strela/mux"
)

// ErrInvalidStage is returned when TimingConfig.Stage is empty.
var ErrInvalidStage = errors.New("timing: stage name must not be empty")

// TimingMetricName is the histogram observed by TimingMiddleware.
const TimingMetricName = "strela_handler_duration_seconds"

// CanceledCode is the code label recorded for requests whose context was
// canceled before the inner stages returned.
const CanceledCode = "canceled"

// TimingConfig configures the Timing middleware behaviour.
type TimingConfig struct {
	// Stage labels the measurement, so several timing handlers can be
	// stacked around different parts of the chain.
	Stage string

	// Registerer receives the duration histogram. When nil, no metric is
	// recorded and only the debug log entry is written. Timing handlers
	// sharing a registerer share one histogram.
	Registerer prometheus.Registerer

	// Buckets defaults to prometheus.DefBuckets.
	Buckets []float64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// TimingMiddleware returns a middleware that measures the wall-clock time
// spent in the rest of the chain. It never alters the status or body.
func TimingMiddleware(cfg TimingConfig) (mux.MiddlewareFunc, error) {
	if cfg.Stage == "" {
		return nil, ErrInvalidStage
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var observer *prometheus.HistogramVec
	if cfg.Registerer != nil {
		var err error
		if observer, err = registerHistogram(cfg.Registerer, cfg.Buckets); err != nil {
			return nil, err
		}
	}

	stage := cfg.Stage

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)

			code := strconv.Itoa(sw.Status())
			if r.Context().Err() != nil {
				code = CanceledCode
			}

			if observer != nil {
				observer.WithLabelValues(stage, r.Method, code).Observe(elapsed.Seconds())
			}

			logger.DebugContext(r.Context(), "request timing",
				slog.String("stage", stage),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("code", code),
				slog.Duration("duration", elapsed),
			)
		})
	}, nil
}

// registerHistogram registers the duration histogram, reusing the collector
// already registered by another timing stage.
func registerHistogram(reg prometheus.Registerer, buckets []float64) (*prometheus.HistogramVec, error) {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    TimingMetricName,
		Help:    "Time spent in the handler chain below a timing stage.",
		Buckets: buckets,
	}, []string{"stage", "method", "code"})

	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("timing: register histogram: %w", err)
		}

		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("timing: %s registered with another type", TimingMetricName)
		}

		return existing, nil
	}

	return vec, nil
}
