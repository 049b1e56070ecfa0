// Package config loads the strela service configuration from an optional
// YAML file and STRELA_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "STRELA"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Routing  RoutingConfig  `yaml:"routing" envconfig:"ROUTING"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string        `yaml:"addr" envconfig:"ADDR"`
	H2C               bool          `yaml:"h2c" envconfig:"H2C"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT"`
	ReadTimeout       time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" envconfig:"LEVEL"`
	// Format is one of text, json, logfmt.
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// PipelineConfig configures the handler chain in front of the router.
type PipelineConfig struct {
	OverrideHeader  string        `yaml:"override_header" envconfig:"OVERRIDE_HEADER"`
	OverrideMethods []string      `yaml:"override_methods" envconfig:"OVERRIDE_METHODS"`
	TrustedProxies  []string      `yaml:"trusted_proxies" envconfig:"TRUSTED_PROXIES"`
	RemoveHeaders   []string      `yaml:"remove_headers" envconfig:"REMOVE_HEADERS"`
	TrustRequestID  bool          `yaml:"trust_request_id" envconfig:"TRUST_REQUEST_ID"`
	APIKeyHeader    string        `yaml:"api_key_header" envconfig:"API_KEY_HEADER"`
	APIKeys         []string      `yaml:"api_keys" envconfig:"API_KEYS"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// RoutingConfig configures the router and the demo endpoints.
type RoutingConfig struct {
	CaseInsensitive bool     `yaml:"case_insensitive" envconfig:"CASE_INSENSITIVE"`
	Widgets         []string `yaml:"widgets" envconfig:"WIDGETS"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	// MetricsPath exposes Prometheus metrics; empty disables the endpoint.
	MetricsPath string `yaml:"metrics_path" envconfig:"METRICS_PATH"`
	// OpenAPIPath serves <path>.json and <path>.yaml; empty disables them.
	OpenAPIPath string `yaml:"openapi_path" envconfig:"OPENAPI_PATH"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Pipeline: PipelineConfig{
			OverrideHeader:  "X-HTTP-Method-Override",
			OverrideMethods: []string{"PUT", "DELETE", "HEAD", "PATCH", "VIEW"},
			RemoveHeaders:   []string{"X-Powered-By", "X-AspNet-Version", "Server"},
			APIKeyHeader:    "X-API-Key",
			RequestTimeout:  30 * time.Second,
		},
		Routing: RoutingConfig{
			Widgets:      []string{"Bolt", "Screw", "Nut", "Motor"},
			MaxBodyBytes: 1 << 20,
			MetricsPath:  "/metrics",
			OpenAPIPath:  "/openapi",
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is
// not empty, then STRELA_* environment variables, and validates the result.
// Unknown YAML keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}

		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error

	invalid := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s=%v", ErrInvalid, field, v))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		invalid("server.addr", c.Server.Addr)
	}

	for name, d := range map[string]time.Duration{
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"pipeline.request_timeout":   c.Pipeline.RequestTimeout,
	} {
		if d < 0 {
			invalid(name, d)
		}
	}

	if c.Server.ShutdownTimeout <= 0 {
		invalid("server.shutdown_timeout", c.Server.ShutdownTimeout)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid("logging.level", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json", "logfmt":
	default:
		invalid("logging.format", c.Logging.Format)
	}

	if len(c.Routing.Widgets) == 0 {
		invalid("routing.widgets", c.Routing.Widgets)
	}

	if c.Routing.MaxBodyBytes < 0 {
		invalid("routing.max_body_bytes", c.Routing.MaxBodyBytes)
	}

	if c.Routing.MetricsPath != "" && !strings.HasPrefix(c.Routing.MetricsPath, "/") {
		invalid("routing.metrics_path", c.Routing.MetricsPath)
	}

	if c.Routing.OpenAPIPath != "" && !strings.HasPrefix(c.Routing.OpenAPIPath, "/") {
		invalid("routing.openapi_path", c.Routing.OpenAPIPath)
	}

	return errors.Join(errs...)
}
