package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// The worker has two jobs: roll overdue subscription anchors forward on an
// interval, and drain ledger events into the balance_history audit table.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - running roll-forward only")
	}

	subscriptions := services.NewSubscriptionService(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Run once on startup, then on the interval.
		rollForward(ctx, subscriptions)

		ticker := time.NewTicker(cfg.RollForwardInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				rollForward(ctx, subscriptions)
			}
		}
	})

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeLedgerEvents(ctx, func(ev *amqp.LedgerEvent) error {
				return repo.AppendBalanceHistory(ctx, storage.HistoryEntry{
					EventType:  ev.Type,
					EntityKind: ev.EntityKind,
					EntityID:   ev.EntityID,
					Balance:    core.Money{Cents: ev.BalanceCents},
					OccurredAt: ev.Timestamp,
				})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func rollForward(ctx context.Context, subscriptions *services.SubscriptionService) {
	advanced, err := subscriptions.RollForward(ctx, core.DateOf(time.Now()))
	if err != nil {
		slog.ErrorContext(ctx, "Subscription roll-forward failed", "error", err)
		return
	}
	if advanced > 0 {
		slog.InfoContext(ctx, "Subscription roll-forward completed", "advanced", advanced)
	}
}
