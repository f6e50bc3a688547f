package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stream-scorer/internal/config"
	"stream-scorer/internal/env"
	"stream-scorer/internal/event"
	"stream-scorer/internal/generator"
)

func init() {
	if os.Getenv("RUNNING_IN_DOCKER") == "" {
		if err := godotenv.Load(".env"); err != nil {
			slog.Info("no .env file found (this is fine in Docker)")
		}
	}
}

func main() {
	count := flag.Int("count", 0, "Number of events to produce (0 = until interrupted)")
	interval := flag.Duration("interval",
		env.GetEnvDuration("GENERATOR_INTERVAL", time.Second), "Delay between events")
	domainFlag := flag.String("domain", "both", "Which payloads to produce: transaction, message, or both")
	seed := flag.Uint64("seed", 0, "Faker seed (0 = random)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	domains := pickDomains(*domainFlag)
	if domains == nil {
		slog.Error("invalid -domain value", "value", *domainFlag)
		os.Exit(1)
	}

	cfg, err := config.SetupGenerator()
	if err != nil {
		slog.Error("could not set up configuration", "err", err)
		os.Exit(1)
	}
	defer cfg.Close()

	topicFor := make(map[event.Domain]string, len(cfg.Topics))
	for topic, domain := range cfg.Topics {
		topicFor[domain] = topic
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := generator.New(cfg.Kafka, *seed)
	slog.Info("generator started", "interval", *interval, "domains", *domainFlag)

	produced := 0
	for *count == 0 || produced < *count {
		for _, domain := range domains {
			if err := gen.Produce(ctx, topicFor[domain], domain); err != nil {
				slog.Error("produce failed", "domain", domain, "err", err)
				continue
			}
			produced++
		}

		select {
		case <-ctx.Done():
			slog.Info("generator stopped", "produced", produced)
			return
		case <-time.After(*interval):
		}
	}
	slog.Info("generator finished", "produced", produced)
}

func pickDomains(s string) []event.Domain {
	switch s {
	case "transaction":
		return []event.Domain{event.DomainTransaction}
	case "message":
		return []event.Domain{event.DomainMessage}
	case "both":
		return []event.Domain{event.DomainTransaction, event.DomainMessage}
	}
	return nil
}
