// Command audit-worker drains the auth.events queue into an append-only
// audit log file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/finance-account-api/internal/config"
	"github.com/iliyamo/finance-account-api/internal/logger"
	"github.com/iliyamo/finance-account-api/internal/queue"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	log := logger.WithComponent(logger.New(level, config.IsCloudEnv(env)), "audit-worker")
	defer func() { _ = log.Sync() }()

	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if url == "" {
		log.Error("RABBITMQ_URL is not set")
		os.Exit(1)
	}
	dir := os.Getenv("AUDIT_LOG_DIR")
	if dir == "" {
		dir = "logs"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := queue.NewAuditLog(dir)
	log.Info("consuming", zap.String("queue", queue.AuthQueueName), zap.String("file", out.Path()))
	if err := queue.StartAuditConsumer(ctx, url, out, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("stopped")
}
