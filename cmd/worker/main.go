package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"campusride/internal/config"
	"campusride/internal/logging"
	"campusride/internal/notify"
	"campusride/internal/queue"
	"campusride/internal/store"
)

// Worker drains the notification queue into structured logs.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != "redis" {
		log.Fatalf("worker needs QUEUE_BACKEND=redis, got %q", cfg.QueueBackend)
	}

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.StorePrefix)
	defer func() { _ = redisClient.Close() }()
	if !redisClient.Healthy(ctx) {
		logger.Warn("redis not reachable yet", slog.String("addr", cfg.RedisAddr))
	}

	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)

	logger.Info("worker started, waiting for notifications", slog.String("queue", cfg.QueueKey))
	handled, err := notify.Relay(ctx, q, logger)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}
	logger.Info("worker stopped", slog.Int("handled", handled))
}
