package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/randomtoy/oracle-go/internal/adapters/decks"
	httpadapter "github.com/randomtoy/oracle-go/internal/adapters/http"
	"github.com/randomtoy/oracle-go/internal/app"
	"github.com/randomtoy/oracle-go/internal/config"
	"github.com/randomtoy/oracle-go/internal/prompt"
	"github.com/randomtoy/oracle-go/internal/provider"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int    { return rand.IntN(n) }
func (stdRNG) Float64() float64 { return rand.Float64() }

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	registry, err := provider.Bootstrap(cfg, provider.Builders, logger)
	if err != nil {
		logger.Warn("provider bootstrap", "error", err)
	}
	if registry.Active() == "" {
		logger.Error("no active provider", "provider", cfg.LLMProvider)
		os.Exit(1)
	}
	logger.Info("providers ready", "active", registry.Active(), "registered", registry.Names())

	svc := app.NewReadingService(decks.NewEmbeddedStore(), registry, stdRNG{}, app.Options{
		DefaultMode:       prompt.Mode(cfg.DefaultMode),
		DefaultLang:       cfg.DefaultLang,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		FollowUpMaxTokens: cfg.FollowUpMaxTokens,
	}, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(svc, app.NewReadingStore(), logger)
	handler.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
