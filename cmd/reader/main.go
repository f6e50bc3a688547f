package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stream-scorer/internal/config"
	"stream-scorer/internal/reader"
	"stream-scorer/internal/store"
)

func init() {
	if os.Getenv("RUNNING_IN_DOCKER") == "" {
		if err := godotenv.Load(".env"); err != nil {
			slog.Info("no .env file found (this is fine in Docker)")
		}
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.SetupReader(ctx)
	if err != nil {
		slog.Error("could not set up configuration", "err", err)
		os.Exit(1)
	}
	defer cfg.Close()

	// Both services run migrations so either can start first.
	if err := store.Migrate(cfg.PostgresURL); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.ReaderAddr,
		Handler:      reader.NewServer(store.New(cfg.Pool), cfg.Redis).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("reader starting", "addr", cfg.ReaderAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)
}
