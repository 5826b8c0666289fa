// Command predictlog consumes prediction events and appends them to a
// rotating log file.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/iris-prediction-api/internal/config"
	"github.com/iliyamo/iris-prediction-api/internal/logger"
	"github.com/iliyamo/iris-prediction-api/internal/queue"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := logger.New(cfg.Log, cfg.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	out := logger.RotatingFile(cfg.Events.LogFile, cfg.Log)
	defer func() { _ = out.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.Events.URL, Queue: cfg.Events.Queue, Out: out, Log: zl}
	zl.Info("consuming prediction events", zap.String("queue", cfg.Events.Queue), zap.String("file", cfg.Events.LogFile))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("prediction consumer stopped", zap.Error(err))
	}
}
