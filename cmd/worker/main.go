// Package main runs the background generation worker: it consumes queued
// generation jobs, drives the creative pipeline and persists the results.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adforge/backend/config"
	"github.com/adforge/backend/internal/ai"
	"github.com/adforge/backend/internal/bundles"
	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/pipeline"
	"github.com/adforge/backend/internal/progress"
	"github.com/adforge/backend/internal/render"
	"github.com/adforge/backend/internal/scrape"
	"github.com/adforge/backend/internal/selector"
	"github.com/adforge/backend/internal/worker"
	"github.com/adforge/backend/pkg/database"
	"github.com/adforge/backend/pkg/queue"
	"github.com/adforge/backend/pkg/redis"
	"github.com/adforge/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		AssetsBucket:    cfg.AWS.AssetsBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	aiClient, err := ai.NewHTTPClient(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("ai client", zap.Error(err))
	}
	scraper := scrape.NewHTTPScraper(cfg.Scraper.BaseURL, cfg.Scraper.Timeout, logger)

	cat := catalog.Default()
	sel := selector.New(cat, logger)

	hookSeed := cfg.Pipeline.HookSeed
	if hookSeed == 0 {
		hookSeed = time.Now().UnixNano()
	}
	gen := copygen.NewGenerator(copygen.NewRandHookSource(hookSeed), logger)
	enr := copygen.NewEnricher(aiClient, logger)

	raster, err := render.NewRasterCompositor(cfg.Render.FontPath, logger)
	if err != nil {
		logger.Fatal("raster compositor", zap.Error(err))
	}
	htmlBackend := render.NewHTMLImageClient(cfg.Render.HTMLServiceURL, cfg.Render.StaticTimeout, logger)
	videoBackend := render.NewVideoClient(cfg.Render.VideoServiceURL, cfg.Render.VideoTimeout, logger)

	dispatcher, err := render.NewDispatcher(cat, render.DefaultFamilies(), htmlBackend, raster, videoBackend, s3Client, logger)
	if err != nil {
		logger.Fatal("dispatcher", zap.Error(err))
	}
	dispatcher.SetTimeouts(cfg.Render.StaticTimeout, cfg.Render.VideoTimeout)

	reporter := progress.NewReporter(progress.NewRedisPubSub(rdb.Client, logger), logger)
	pl := pipeline.New(scraper, aiClient, sel, gen, enr, dispatcher, reporter,
		pipeline.Options{CopyVariants: cfg.Pipeline.CopyVariants}, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	bundleRepo := bundles.NewRepository(pool)
	processor := worker.NewGenerationProcessor(bundleRepo, pl, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
