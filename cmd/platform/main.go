// Package main implements the platform entry point: it loads the
// configuration, assembles the wiring, binds the reference components,
// and runs the node until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/matteriben/hedera-services/config"
	"github.com/matteriben/hedera-services/diagnostics"
	"github.com/matteriben/hedera-services/event/preconsensus"
	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/platform"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "platform"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("platform failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file (defaults apply when empty)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	validateOnly := flag.Bool("validate", false, "validate the configuration and exit")
	flag.Parse()

	logger := setupLogger(*logLevel, *logFormat)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
	}
	if *validateOnly {
		logger.Info("configuration is valid")
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()

	wiring := platform.NewWiring(logger, cfg, metricsRegistry)
	components := platform.DefaultComponents(logger, cfg, wiring)
	wiring.Bind(components)

	if err := wiring.Start(); err != nil {
		return fmt.Errorf("start wiring model: %w", err)
	}
	defer wiring.Stop()

	// Metrics documentation is generated at startup so operator docs
	// cannot drift from the code.
	if doc, err := metricsRegistry.GenerateDocumentation(); err == nil {
		logger.Info("metrics documentation generated", "metrics", len(doc))
		logger.Debug("metrics inventory\n" + doc)
	}
	logger.Debug("wiring diagram\n" + wiring.GenerateWiringDiagram())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var diagServer *diagnostics.Server
	if cfg.Diagnostics.Enabled {
		diagServer = diagnostics.NewServer(logger, cfg.Diagnostics.Address, metricsRegistry, wiring)
		diagServer.RegisterHealthCheck("intakeQueue", func() error {
			if size := wiring.IntakeQueueSize(); size > cfg.Intake.EventHasherUnhandledCapacity {
				return fmt.Errorf("intake queue depth %d over capacity", size)
			}
			return nil
		})
		if err := diagServer.Start(ctx); err != nil {
			return fmt.Errorf("start diagnostics server: %w", err)
		}
		defer func() { _ = diagServer.Stop() }()
	}

	// Replay the durable preconsensus stream (empty for a fresh node),
	// then begin gossiping.
	wiring.ReplayPces(preconsensus.NewSliceIterator(nil))
	wiring.StartGossip()

	logger.Info("platform running",
		"app", appName,
		"version", Version,
		"node", cfg.Node.ID)

	<-ctx.Done()
	logger.Info("shutting down")
	wiring.StopGossip()
	return nil
}
