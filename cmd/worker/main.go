package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapsaver/media-downloader/internal/config"
	"github.com/snapsaver/media-downloader/internal/downloads/repository"
	"github.com/snapsaver/media-downloader/internal/extractor"
	"github.com/snapsaver/media-downloader/internal/scheduler"
	"github.com/snapsaver/media-downloader/pkg/db/aws"
	"github.com/snapsaver/media-downloader/pkg/db/postgres"
	"github.com/snapsaver/media-downloader/pkg/db/redis"
	"github.com/snapsaver/media-downloader/pkg/logger"
)

func main() {
	log.Println("Starting download worker")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Workers: %d", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Worker.WorkerCount)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	defer psqlDB.Close()

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	defer redisClient.Close()

	s3Client, preSignClient, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	downloadRepo := repository.NewDownloadsRepo(psqlDB)
	redisRepo := repository.NewDownloadsRedisRepo(redisClient, cfg.Redis.ProgressKey)
	awsRepo := repository.NewAwsRepository(s3Client, preSignClient, cfg.S3.ArtifactBucket)
	registry := extractor.NewRegistry(cfg, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
		<-quit
		appLogger.Info("shutdown signal received")
		cancel()
	}()

	janitor := scheduler.NewJanitor(cfg, appLogger, downloadRepo, awsRepo)
	go janitor.Run(ctx)

	worker := scheduler.NewWorker(cfg, appLogger, downloadRepo, redisRepo, awsRepo, registry)
	if err = worker.Run(ctx); err != nil {
		appLogger.Fatalf("worker exited: %s", err)
	}
}
