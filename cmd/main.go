package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harapeko-bot/harapeko/internal/bot"
	"github.com/harapeko-bot/harapeko/internal/config"
	"github.com/harapeko-bot/harapeko/internal/metrics"
	"github.com/harapeko-bot/harapeko/internal/places"
	"github.com/harapeko-bot/harapeko/internal/server"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"googlemaps.github.io/maps"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// placesRateLimit is the request-per-second budget for the places search API.
const placesRateLimit = 10

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the places search client with a bounded per-request timeout.
	mapsClient, err := places.NewGoogleClient(
		cfg.PlacesKey,
		placesRateLimit,
		maps.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)
	if err != nil {
		log.Fatalf("Failed to create places client: %v", err)
	}
	searchClient := places.NewSearchClient(mapsClient, cfg.MaxResults, logger)

	// Initialize the photo resolver with its own rate limit; the photo endpoint
	// is not covered by the maps client's limiter.
	resolver := places.NewPhotoResolver(
		cfg.PlacesKey, cfg.PhotoMaxWidth, cfg.PhotoRateLimit, cfg.HTTPTimeout, logger,
	)

	// Initialize the messaging clients for replies and media content.
	botClient, err := messaging_api.NewMessagingApiAPI(
		cfg.ChannelToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	)
	if err != nil {
		log.Fatalf("Failed to create messaging client: %v", err)
	}
	blobClient, err := messaging_api.NewMessagingApiBlobAPI(cfg.ChannelToken)
	if err != nil {
		log.Fatalf("Failed to create messaging blob client: %v", err)
	}

	composer := bot.NewComposer(resolver, cfg.MaxResults, appMetrics, logger)
	dispatcher := bot.NewDispatcher(
		searchClient,
		composer,
		blobClient,
		cfg.SearchRadius,
		cfg.VenueType,
		cfg.Language,
		appMetrics,
		logger,
	)

	webhookServer := server.New(cfg.ChannelSecret, botClient, dispatcher, appMetrics, logger)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the webhook server in a goroutine to allow main to listen for signals.
	httpServer := newHTTPServer(webhookServer, reg, cfg.Port)
	go func() {
		logger.InfoContext(ctx, "Starting webhook server", "port", cfg.Port)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.ErrorContext(ctx, "Webhook server failed", "error", serveErr)
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownTimeout := 5 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down webhook server gracefully", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newHTTPServer builds the HTTP server with the webhook, health check, and
// metrics endpoints mounted.
func newHTTPServer(webhookServer *server.Server, reg *prometheus.Registry, port int) *http.Server {
	mux := http.NewServeMux()
	webhookServer.Routes(mux, reg)

	readTimeout := 5
	writeTimeout := 30
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
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
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
