// Package main provides the outbox publisher that polls unpublished
// assignment events and relays them to a Redis stream.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/rueidis"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/config"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/database"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/logger"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("publisher stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if cfg.StoreDriver != config.StorePostgres {
		return fmt.Errorf("publisher requires STORE_DRIVER=%s", config.StorePostgres)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	outboxService := service.NewOutboxService(
		repository.NewOutboxRepository(pool),
		service.NewRedisStreamPublisher(redisClient, cfg.OutboxStream),
		log,
	)

	log.Info("starting outbox publisher",
		"stream", cfg.OutboxStream,
		"poll_interval", cfg.PublisherPollEvery,
		"batch_size", cfg.PublisherBatchSize,
	)
	runPublisherLoop(ctx, log, outboxService, cfg.PublisherPollEvery, cfg.PublisherBatchSize)
	return nil
}

func runPublisherLoop(
	ctx context.Context,
	log *slog.Logger,
	outboxService *service.OutboxService,
	pollInterval time.Duration,
	batchSize int,
) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("publisher stopped")
			return
		case <-ticker.C:
			n, err := outboxService.ProcessUnpublishedEvents(ctx, batchSize)
			if err != nil {
				log.Error("error processing outbox events", "error", err)
				continue
			}
			if n > 0 {
				log.Info("published outbox events", "count", n)
			}
		}
	}
}
