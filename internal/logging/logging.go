// Package logging builds the service *slog.Logger on top of a
// charmbracelet/log handler.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vitalvas/strela/internal/config"
)

var (
	// ErrInvalidLevel is returned for a level other than debug, info, warn
	// or error.
	ErrInvalidLevel = errors.New("logging: invalid level")

	// ErrInvalidFormat is returned for a format other than text, json or
	// logfmt.
	ErrInvalidFormat = errors.New("logging: invalid format")
)

// New returns a logger writing to w with the configured level and format.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	formatter, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return slog.New(handler), nil
}

// ParseLevel maps a configuration level name to a log.Level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

func parseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}
