package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stream-scorer/internal/config"
	"stream-scorer/internal/event"
	"stream-scorer/internal/processor"
	"stream-scorer/internal/rules"
	"stream-scorer/internal/scoring"
	"stream-scorer/internal/sentiment"
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

	cfg, err := config.SetupProcessor(ctx)
	if err != nil {
		slog.Error("could not set up configuration", "err", err)
		os.Exit(1)
	}
	defer cfg.Close()

	// Schema creation is idempotent and runs on every startup.
	if err := store.Migrate(cfg.PostgresURL); err != nil {
		slog.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	loader, err := rules.NewLoader(cfg.RulesPath)
	if err != nil {
		slog.Error("could not load scoring rules", "path", cfg.RulesPath, "err", err)
		os.Exit(1)
	}
	rc := loader.Config()

	fraud := scoring.NewFraudScorer(rc.Fraud)
	sent := scoring.NewSentimentScorer(sentiment.NewLexicon(), rc.Sentiment)

	loader.OnChange(func(c *rules.Config) {
		fraud.SetConfig(c.Fraud)
		sent.SetConfig(c.Sentiment)
		slog.Info("scoring rules reloaded", "path", cfg.RulesPath)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("rules watcher unavailable (hot reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	registry := scoring.NewRegistry()
	registry.Register(event.DomainTransaction, fraud)
	registry.Register(event.DomainMessage, sent)

	st := store.New(cfg.Pool)
	proc := processor.New(st, registry, cfg.FailLimit)
	consumer := processor.NewConsumer(cfg.Kafka, proc, cfg.Topics)

	if err := consumer.Run(ctx); err != nil {
		slog.Error("consumer stopped with error", "err", err)
		os.Exit(1)
	}
	slog.Info("shut down cleanly")
}
