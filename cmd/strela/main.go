package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vitalvas/strela/internal/app"
	"github.com/vitalvas/strela/internal/config"
	"github.com/vitalvas/strela/internal/logging"
	"github.com/vitalvas/strela/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := app.NewHandler(cfg, logger, reg)
	if err != nil {
		return err
	}

	logger.Info("pipeline ready", slog.Any("stages", handler.Names()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, handler, logger).Run(ctx)
}
