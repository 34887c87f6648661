package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/blob"
	"github.com/spec-kit/linkbio-service/internal/config"
	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/observability"
	"github.com/spec-kit/linkbio-service/internal/persistence"
	"github.com/spec-kit/linkbio-service/internal/queue"
	"github.com/spec-kit/linkbio-service/internal/repository"
	"github.com/spec-kit/linkbio-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)

	var blobs blob.Store
	if client := redis.ClientHandle(); client != nil {
		blobs = blob.NewRedisStore(client, cfg.Blob.KeyPrefix)
	}

	metrics := observability.NewMetrics()
	processor := jobs.NewProcessor(
		jobs.NewBackupService(userRepo, blobs, logger),
		jobs.NewClickService(linkRepo),
		jobs.NewQRCacheService(blobs, userRepo, nil, cfg.Blob.PublicBaseURL, logger),
		metrics,
		logger,
	)

	consumer := queue.NewConsumer(
		redis.ClientHandle(),
		cfg.Queue.Key,
		cfg.Queue.BatchSize,
		time.Duration(cfg.Queue.BlockSeconds)*time.Second,
	)

	publisher := queue.NewPublisher(redis.ClientHandle(), cfg.Queue.Key)
	scheduler := jobs.NewScheduler(publisher, cfg.Backup.BackupInterval(), logger)

	runner := worker.NewRunner(consumer, processor, scheduler, logger)
	runner.Start(ctx)

	waitForShutdown(logger)
	cancel()
	runner.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
