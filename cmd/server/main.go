package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/vokinneberg/parcel-assistant/internal/config"
	"github.com/vokinneberg/parcel-assistant/internal/llm"
	"github.com/vokinneberg/parcel-assistant/internal/parcel"
	"github.com/vokinneberg/parcel-assistant/internal/relay"
	"github.com/vokinneberg/parcel-assistant/internal/watson"

	httphandler "github.com/vokinneberg/parcel-assistant/internal/http"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	// Initialize conversation backend
	backend, err := newBackend(cfg)
	if err != nil {
		slog.Error("Failed to create conversation backend", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("Initialized conversation backend", "backend", cfg.Backend)

	// Initialize parcel locator and relay
	locator := parcel.NewLocator()

	messageRelay, err := relay.NewRelay(cfg.WorkspaceID, backend, locator, cfg.BackendTimeout)
	if err != nil {
		slog.Error("Failed to create message relay", "error", err)
		os.Exit(1)
	}
	if !messageRelay.Configured() {
		slog.Warn("WORKSPACE_ID is not set, every message will receive setup guidance")
	}

	// Initialize HTTP handlers
	handler := httphandler.NewHandlers(messageRelay, locator)

	// Create router
	r := httphandler.NewRouter(handler, httphandler.RouterConfig{
		MetricsEnabled:     cfg.MetricsEnabled,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:          cfg.StaticDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server running", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func newBackend(cfg *config.Config) (relay.ConversationService, error) {
	switch cfg.Backend {
	case config.BackendWatson:
		client, err := watson.NewClient(
			cfg.ConversationURL,
			cfg.ConversationUsername,
			cfg.ConversationPassword,
			watson.WithAPIKey(cfg.ConversationAPIKey),
			watson.WithVersionDate(cfg.ConversationVersion),
			watson.WithTimeout(cfg.BackendTimeout),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendOpenAI:
		opts := []option.RequestOption{option.WithRequestTimeout(cfg.BackendTimeout)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
