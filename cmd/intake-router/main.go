/**
 * intake-router — ingest-and-routing pipeline entry point.
 *
 * Watches an intake directory for scanned financial-onboarding documents,
 * OCRs and parses each one, and routes it into the fully-indexed,
 * partially-indexed, or failed bucket.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/ocr"
	"github.com/adverant/intake-router/internal/pipeline"
	"github.com/adverant/intake-router/internal/sink"
	"github.com/adverant/intake-router/internal/watcher"
)

var (
	rootFlag          string
	debounceMsFlag    int
	settleMsFlag      int
	sweepIntervalFlag int
	sinkModeFlag      string
	logLevelFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "intake-router",
	Short: "Watch an intake directory, OCR and route scanned documents",
	Long: "intake-router watches a directory for scanned financial-onboarding\n" +
		"documents, extracts a name and account number from each via OCR, and\n" +
		"routes it into fully-indexed, partially-indexed, or failed buckets.",
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&rootFlag, "root", "", "root directory (overrides INTAKE_ROOT)")
	rootCmd.Flags().IntVar(&debounceMsFlag, "debounce", 0, "debounce interval in ms (overrides DEBOUNCE_INTERVAL_MS)")
	rootCmd.Flags().IntVar(&settleMsFlag, "settle", 0, "settle delay in ms (overrides SETTLE_DELAY_MS)")
	rootCmd.Flags().IntVar(&sweepIntervalFlag, "sweep-interval", 0, "stale-file sweep interval in ms (overrides STALE_SWEEP_INTERVAL_MS)")
	rootCmd.Flags().StringVar(&sinkModeFlag, "sink", "", "event sink backend: log|redis|postgres (overrides SINK_MODE)")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "log level: debug|info|warn|error (overrides LOG_LEVEL)")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not found, using system environment variables")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Printf("intake-router starting...")
	log.Printf("Configuration loaded: Root=%s, Intake=%s, Sink=%s", cfg.Root, cfg.IntakeDir, cfg.SinkMode)

	log.Printf("Probing OCR backend...")
	engine, err := ocr.NewEngine(cfg.ResolvedTesseractPath())
	if err != nil {
		return fmt.Errorf("failed to initialize OCR engine: %w", err)
	}
	rasterizer := ocr.NewRasterizer(cfg.RasterizerPath, cfg.RasterizerDPI)
	log.Printf("OCR engine ready")

	eventSink, closeSink, err := buildSink(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize event sink: %w", err)
	}
	defer closeSink()
	log.Printf("Event sink ready (%s)", cfg.SinkMode)

	proc := pipeline.New(engine, rasterizer, cfg)
	w := watcher.New(cfg, proc, eventSink)

	sweepScheduler, sweepServer, err := startSweep(cfg, w)
	if err != nil {
		return fmt.Errorf("failed to initialize stale-file sweep: %w", err)
	}
	if sweepScheduler != nil {
		defer sweepScheduler.Shutdown()
		defer sweepServer.Shutdown()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErrCh := make(chan error, 1)
	go func() {
		watchErrCh <- w.Run(ctx)
	}()

	log.Printf("===========================================")
	log.Printf("intake-router is READY")
	log.Printf("===========================================")
	log.Printf("Watching: %s", cfg.IntakeDir)
	log.Printf("Buckets: %s | %s | %s", cfg.FullyIndexedDir, cfg.PartiallyIndexedDir, cfg.FailedDir)
	log.Printf("===========================================")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		<-watchErrCh
	case err := <-watchErrCh:
		if err != nil {
			return fmt.Errorf("watcher stopped: %w", err)
		}
	}

	log.Printf("Shutdown complete")
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if rootFlag != "" {
		cfg.Root = rootFlag
		for _, d := range []struct {
			env, sub string
			dst      *string
		}{
			{"INTAKE_DIR", "incoming-scan", &cfg.IntakeDir},
			{"FULLY_INDEXED_DIR", "fully_indexed", &cfg.FullyIndexedDir},
			{"PARTIALLY_INDEXED_DIR", "partially_indexed", &cfg.PartiallyIndexedDir},
			{"FAILED_DIR", "failed", &cfg.FailedDir},
		} {
			if os.Getenv(d.env) == "" {
				*d.dst = filepath.Join(rootFlag, d.sub)
			}
		}
	}
	if debounceMsFlag > 0 {
		cfg.DebounceInterval = time.Duration(debounceMsFlag) * time.Millisecond
	}
	if settleMsFlag > 0 {
		cfg.SettleDelay = time.Duration(settleMsFlag) * time.Millisecond
	}
	if sweepIntervalFlag > 0 {
		cfg.StaleSweepInterval = time.Duration(sweepIntervalFlag) * time.Millisecond
	}
	if sinkModeFlag != "" {
		cfg.SinkMode = sinkModeFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
}

// buildSink wires the configured event-sink backend (§4.8 / D1) and, when a
// Redis URL is configured, fronts it with D2's async delivery queue so a
// slow or unreachable backend cannot add latency to routing: Emit enqueues
// onto asynq and a separate server drains the queue into the backend.
func buildSink(cfg *config.Config) (watcher.EventSink, func(), error) {
	var backend sink.EventSink
	var closeFn func() error

	switch cfg.SinkMode {
	case "redis":
		s, err := sink.NewRedisSink(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		backend, closeFn = s, s.Close
	case "postgres":
		s, err := sink.NewPostgresSink(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		backend, closeFn = s, s.Close
	default:
		backend = sink.NewLogSink()
		closeFn = func() error { return nil }
	}

	if cfg.RedisURL == "" {
		noop := func() {
			if closeFn != nil {
				closeFn()
			}
		}
		return backend, noop, nil
	}

	asyncSink, err := sink.NewAsyncSink(cfg.RedisURL)
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, nil, err
	}

	server, mux, err := sink.NewAsyncServer(cfg.RedisURL, backend)
	if err != nil {
		asyncSink.Close()
		if closeFn != nil {
			closeFn()
		}
		return nil, nil, err
	}

	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("async delivery server stopped: %v", err)
		}
	}()

	cleanup := func() {
		server.Shutdown()
		asyncSink.Close()
		if closeFn != nil {
			closeFn()
		}
	}
	return asyncSink, cleanup, nil
}

// startSweep wires D3's periodic stale-file sweep, a no-op when no Redis URL
// is configured to back the asynq scheduler.
func startSweep(cfg *config.Config, w *watcher.Watcher) (*watcher.SweepScheduler, *watcher.SweepServer, error) {
	if cfg.RedisURL == "" {
		return nil, nil, nil
	}

	server, err := watcher.NewSweepServer(cfg.RedisURL, w)
	if err != nil {
		return nil, nil, err
	}
	if err := server.Start(); err != nil {
		return nil, nil, err
	}

	scheduler, err := watcher.NewSweepScheduler(cfg.RedisURL, cfg.StaleSweepInterval)
	if err != nil {
		server.Shutdown()
		return nil, nil, err
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("sweep scheduler stopped: %v", err)
		}
	}()

	return scheduler, server, nil
}
