package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/iris-prediction-api/internal/cache"
	"github.com/iliyamo/iris-prediction-api/internal/classifier"
	"github.com/iliyamo/iris-prediction-api/internal/config"
	"github.com/iliyamo/iris-prediction-api/internal/handler"
	"github.com/iliyamo/iris-prediction-api/internal/logger"
	"github.com/iliyamo/iris-prediction-api/internal/model"
	"github.com/iliyamo/iris-prediction-api/internal/router"
	"github.com/iliyamo/iris-prediction-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	zl, err := logger.New(cfg.Log, cfg.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	forest, err := classifier.Load(config.ModelPath)
	if err != nil {
		zl.Fatal("cannot load model", zap.String("path", config.ModelPath), zap.Error(err))
	}
	if forest.NumFeatures() != len(model.FeatureNames) {
		zl.Fatal("model expects a different feature vector",
			zap.Int("model_features", forest.NumFeatures()), zap.Int("api_features", len(model.FeatureNames)))
	}
	if n := len(forest.Classes()); n != len(model.ClassNames) {
		zl.Fatal("model class count does not match the label table", zap.Int("model_classes", n))
	}
	zl.Info("model loaded",
		zap.String("path", config.ModelPath),
		zap.String("fingerprint", forest.Fingerprint()),
		zap.Strings("classes", forest.Classes()))

	opts := service.Options{
		Fingerprint: forest.Fingerprint(),
		CachePrefix: cfg.Cache.Prefix,
		Log:         zl,
	}
	if cfg.Cache.Enabled {
		store, err := newCache(cfg.Cache, zl)
		if err != nil {
			zl.Fatal("cannot build prediction cache", zap.Error(err))
		}
		opts.Cache = store
	}
	var publisher *service.QueuePublisher
	if cfg.Events.Enabled {
		publisher = service.NewQueuePublisher(cfg.Events.URL, cfg.Events.Queue)
		opts.Events = publisher
		zl.Info("prediction events enabled", zap.String("queue", cfg.Events.Queue))
	}

	predictor := service.NewPredictor(forest, opts)
	h := handler.NewPredictHandler(predictor, handler.ModelInfo{
		Fingerprint: forest.Fingerprint(),
		Classes:     forest.Classes(),
	}, zl)
	e := router.New(h, zl)

	addr := ":" + config.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	predictor.Wait()
	if publisher != nil {
		_ = publisher.Close()
	}
}

// newCache always has an in-process tier; Redis is added when reachable.
func newCache(cfg config.CacheConfig, zl *zap.Logger) (cache.Store, error) {
	local, err := cache.NewLRUStore(cfg.LRUSize)
	if err != nil {
		return nil, err
	}
	tiered := &cache.Tiered{Local: local}
	if cfg.Redis.Addr != "" {
		if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
			tiered.Shared = cache.NewRedisStore(rdb, cfg.TTL, zl)
			zl.Info("prediction cache uses redis", zap.String("addr", cfg.Redis.Addr))
		} else {
			zl.Warn("redis unreachable, prediction cache is process-local", zap.String("addr", cfg.Redis.Addr))
		}
	}
	return tiered, nil
}
