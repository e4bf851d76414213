package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aaronzipp/among-llms/internal/archive"
	"github.com/aaronzipp/among-llms/internal/config"
	"github.com/aaronzipp/among-llms/internal/decision"
	"github.com/aaronzipp/among-llms/internal/handlers"
	"github.com/aaronzipp/among-llms/internal/logging"
	"github.com/aaronzipp/among-llms/internal/persona"
	"github.com/aaronzipp/among-llms/internal/scheduler"
	"github.com/aaronzipp/among-llms/internal/session"
	"github.com/aaronzipp/among-llms/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "among-llms:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	arch, err := archive.Open(cfg.ArchiveDSN)
	if err != nil {
		return err
	}
	defer arch.Close()

	h := &handlers.Context{
		Sessions:   store.NewSessionStore(),
		Archive:    arch,
		Logger:     logger,
		NewSession: sessionFactory(cfg, provider, logger),
		Base:       ctx,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelDebug, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.CORS())
	h.RegisterRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "model", cfg.ModelMode)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server did not shut down gracefully", "err", err)
	}
	for _, sess := range h.Sessions.Drain() {
		sess.Shutdown()
	}
	h.Wait()
	logger.Info("stopped")
	return nil
}

func newProvider(ctx context.Context, cfg config.Config, logger *slog.Logger) (decision.Provider, error) {
	if cfg.ModelMode == config.ModeCanned {
		return decision.NewCanned(uint64(time.Now().UnixNano())), nil
	}
	chatModel, err := decision.NewChatModel(ctx, decision.ModelConfig{
		Provider: cfg.ModelMode,
		BaseURL:  cfg.ModelBaseURL,
		Model:    cfg.ModelName,
		APIKey:   cfg.ModelAPIKey,
	})
	if err != nil {
		return nil, err
	}
	return decision.NewLLM(chatModel, cfg.ModelRetries, logger), nil
}

func sessionFactory(cfg config.Config, provider decision.Provider, logger *slog.Logger) func() *session.Session {
	return func() *session.Session {
		seed := uint64(time.Now().UnixNano())
		return session.New(session.Options{
			Provider:     provider,
			Generator:    persona.New(seed),
			Logger:       logger,
			AgentCount:   cfg.AgentCount,
			Lookback:     cfg.Lookback,
			VoteDuration: cfg.VoteDuration,
			Quorum:       cfg.Quorum,
			Turns: scheduler.Config{
				MinDelay: cfg.MinDelay,
				MaxDelay: cfg.MaxDelay,
				Tick:     cfg.Tick,
				Seed:     seed,
			},
		})
	}
}
