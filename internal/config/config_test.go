package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "strela.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "X-HTTP-Method-Override", cfg.Pipeline.OverrideHeader)
	assert.Equal(t, []string{"Bolt", "Screw", "Nut", "Motor"}, cfg.Routing.Widgets)
	assert.Equal(t, "/metrics", cfg.Routing.MetricsPath)
	assert.Equal(t, "/openapi", cfg.Routing.OpenAPIPath)
}

func TestLoad(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := Load(writeFile(t, ""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(writeFile(t, `
server:
  addr: "127.0.0.1:9000"
  h2c: true
  shutdown_timeout: 3s
logging:
  level: debug
  format: json
pipeline:
  trusted_proxies: ["10.0.0.0/8"]
  api_keys: [secret]
routing:
  widgets: [Gear]
  metrics_path: ""
`))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
		assert.True(t, cfg.Server.H2C)
		assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Pipeline.TrustedProxies)
		assert.Equal(t, []string{"secret"}, cfg.Pipeline.APIKeys)
		assert.Equal(t, []string{"Gear"}, cfg.Routing.Widgets)
		assert.Empty(t, cfg.Routing.MetricsPath)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("STRELA_SERVER_ADDR", ":7000")
		t.Setenv("STRELA_PIPELINE_API_KEYS", "k1,k2")
		t.Setenv("STRELA_PIPELINE_REQUEST_TIMEOUT", "250ms")
		t.Setenv("STRELA_ROUTING_CASE_INSENSITIVE", "true")

		cfg, err := Load(writeFile(t, "server:\n  addr: \":9000\"\n"))
		require.NoError(t, err)

		assert.Equal(t, ":7000", cfg.Server.Addr)
		assert.Equal(t, []string{"k1", "k2"}, cfg.Pipeline.APIKeys)
		assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.RequestTimeout)
		assert.True(t, cfg.Routing.CaseInsensitive)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "server:\n  port: 80\n"))
		assert.ErrorContains(t, err, "port")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad environment value", func(t *testing.T) {
		t.Setenv("STRELA_SERVER_H2C", "maybe")

		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := Load(writeFile(t, "logging:\n  level: loud\n"))
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"blank addr", func(c *Config) { c.Server.Addr = " " }, "server.addr"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.read_timeout"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "server.shutdown_timeout"},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"no widgets", func(c *Config) { c.Routing.Widgets = nil }, "routing.widgets"},
		{"negative body limit", func(c *Config) { c.Routing.MaxBodyBytes = -1 }, "routing.max_body_bytes"},
		{"relative metrics path", func(c *Config) { c.Routing.MetricsPath = "metrics" }, "routing.metrics_path"},
		{"relative openapi path", func(c *Config) { c.Routing.OpenAPIPath = "openapi" }, "routing.openapi_path"},
		{"negative request timeout", func(c *Config) { c.Pipeline.RequestTimeout = -1 }, "pipeline.request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.field)
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "trace"
		cfg.Logging.Format = "xml"

		err := cfg.Validate()
		assert.ErrorContains(t, err, "logging.level")
		assert.ErrorContains(t, err, "logging.format")
	})

	t.Run("level is case-insensitive", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "WARN"
		assert.NoError(t, cfg.Validate())
	})
}
