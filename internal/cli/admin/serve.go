package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/concierge/internal/config"
	"github.com/cloo-solutions/concierge/internal/jobs"
	"github.com/cloo-solutions/concierge/internal/logging"
	"github.com/cloo-solutions/concierge/internal/server"
	"github.com/cloo-solutions/concierge/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second

	classifierRefreshInterval = time.Hour
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		Long:  "Start the concierge chat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}

	closeLogs := setupLogging(cfg)
	defer closeLogs.Close()

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	app, err := server.NewApp(cfg)
	if err != nil {
		return err
	}

	refresher := jobs.NewWorker("classifier-refresh",
		jobs.NewClassifierRefreshTask(app.Classifier, time.Now), classifierRefreshInterval)
	go refresher.Start(context.Background())
	defer refresher.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.SearchTimeout + cfg.ModelTimeout + 10*time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// loadConfig reads the environment. Commands that call a model pass
// requireModel so a missing key fails before anything starts.
func loadConfig(requireModel bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if requireModel {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) io.Closer {
	return logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Debug:  cfg.Debug,
	})
}

// initTelemetry starts Sentry when a DSN is configured. It samples 10% of
// traces outside development.
func initTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.WithError(err).Warn("telemetry init failed (continuing without tracing)")
		return func() {}
	}
	return shutdown
}
