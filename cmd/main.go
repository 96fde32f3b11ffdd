package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/landmap/internal/api"
	"github.com/UnknownOlympus/landmap/internal/backend"
	"github.com/UnknownOlympus/landmap/internal/config"
	"github.com/UnknownOlympus/landmap/internal/geolocation"
	"github.com/UnknownOlympus/landmap/internal/mapview"
	"github.com/UnknownOlympus/landmap/internal/metrics"
	"github.com/UnknownOlympus/landmap/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Create the landmark backend client.
	client, err := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.URL,
		Session:   cfg.Backend.Session,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	// Create geolocation provider using factory pattern based on configuration.
	locator, err := geolocation.NewProvider(geolocation.ProviderConfig{
		Type:      geolocation.ProviderType(cfg.Geolocation.Provider),
		APIKey:    cfg.Geolocation.APIKey,
		RateLimit: cfg.Geolocation.RateLimit,
		Address:   cfg.Geolocation.Address,
		Coordinates: models.Coordinates{
			Latitude:  cfg.Geolocation.Lat,
			Longitude: cfg.Geolocation.Lon,
		},
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geolocation provider: %v", err)
	}
	defer stop()

	logger.InfoContext(ctx, "Geolocation provider initialized", "type", cfg.Geolocation.Provider)

	// Favorites need an authenticated session on the backend.
	view := mapview.NewMapView(logger, client, locator, appMetrics, mapview.Options{
		Width:        cfg.View.Width,
		Height:       cfg.View.Height,
		FetchMinZoom: cfg.View.FetchMinZoom,
		LocateZoom:   cfg.View.LocateZoom,
		Favorites:    client.HasSession(),
		TileURL:      cfg.View.TileURL,
	})

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	go view.Init(ctx)

	router := api.NewRouter(logger, view, reg, api.Options{
		CORSOrigins: cfg.API.CORSOrigins,
		RateLimit:   cfg.API.RateLimit,
	})

	if err := runServer(ctx, logger, router, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Control server failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// runServer serves the control API until the context is canceled and then
// shuts the server down gracefully.
//
// Parameters:
// - ctx: A context.Context whose cancellation stops the server.
// - log: A logger for logging server events and errors.
// - handler: The HTTP handler of the control API.
// - port: The port number on which the server will listen.
func runServer(ctx context.Context, log *slog.Logger, handler http.Handler, port int) error {
	readTimeout := 5
	writeTimeout := 30
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Starting control server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Log that a shutdown signal has been received.
	log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownTimeout := 10
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down control server: %w", err)
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
