package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/stubapi"
	"github.com/utafrali/storefront/pkg/logger"
)

// apiPrefix matches the path of the default STOREFRONT_API_URL.
const apiPrefix = "/api"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("storefront-stub", cfg.LogLevel)
	log.Info("starting storefront stub API",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.StubPort),
	)

	seed := stubapi.DefaultSeed()
	srv := stubapi.New(session.NewManager(cfg.StubJWTSecret, cfg.StubTokenTTL), log, stubapi.WithSeed(seed))

	for _, u := range seed.Users {
		token, err := srv.IssueToken(u.ID)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", u.ID, err)
		}
		log.Info("seeded shopper",
			slog.String("user_id", u.ID),
			slog.String("name", u.Name),
			slog.String("token", token),
		)
	}

	mux := http.NewServeMux()
	mux.Handle(apiPrefix+"/", http.StripPrefix(apiPrefix, srv.Handler()))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.StubPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	log.Info("storefront stub API stopped")
	return nil
}
