package main

import (
	"context"

	"autotrade/internal/app/config"
	"autotrade/internal/app/dsn"
	"autotrade/internal/app/handler"
	"autotrade/internal/app/middleware"
	"autotrade/internal/app/notify"
	"autotrade/internal/app/redis"
	"autotrade/internal/app/repository"
	"autotrade/internal/app/settlement"
	"autotrade/internal/app/storage"
	"autotrade/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @title AutoTrade Settlement API
// @version 1.0
// @description API подсистемы назначения сборов и итогового расчёта по контрактам перепродажи автомобилей
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logrus.Info("App start")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatalf("Error connecting to database: %v", err)
	}

	ctx := context.Background()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logrus.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// MinIO опционален: без него завершение контрактов работает, но
	// снимки расчётов не архивируются
	var archiver settlement.SnapshotArchiver
	minioClient, err := storage.NewMinIOClient(
		cfg.Minio.Endpoint,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.Bucket,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logrus.Warnf("MinIO unavailable, settlement archiving disabled: %v", err)
		minioClient = nil
	} else {
		archiver = minioClient
	}

	notifier := notify.NewGatewayNotifier(cfg.Notify.GatewayURL)

	settlementService := settlement.NewService(repo, redisClient, notifier, archiver, cfg.PublicBaseURL)

	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, settlementService, minioClient, authHandler)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	router := gin.Default()
	app := pkg.NewApp(cfg, router, apiHandler, authMiddleware)
	app.RunApp()

	logrus.Info("App terminated")
}
