package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lneuendorf/cfbsim/internal/api/handlers"
	"github.com/lneuendorf/cfbsim/internal/cache"
	"github.com/lneuendorf/cfbsim/internal/config"
	"github.com/lneuendorf/cfbsim/internal/core/oracle"
	"github.com/lneuendorf/cfbsim/internal/oracleload"
	"github.com/lneuendorf/cfbsim/internal/websocket"
	"github.com/lneuendorf/cfbsim/pkg/database"
	"github.com/lneuendorf/cfbsim/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, "cfbsim-server")
	logger.WithService().WithFields(logrus.Fields{
		"version":     "1.0.0",
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("starting replay server")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithService().WithError(err).Warn("failed to connect to database, batch history will not be persisted")
		db = nil
	} else {
		defer db.Close()
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService().Fatalf("failed to parse redis url: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService().Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	replayCache, err := cache.NewReplayCache(cfg.RedisURL, structuredLogger)
	if err != nil {
		logger.WithService().Fatalf("failed to initialize replay cache: %v", err)
	}
	defer replayCache.Close()

	// oracles are immutable once built and shared read-only across every
	// worker in every batch; NewDefaultSet is the built-in fallback served
	// until cfg.OracleArtifactDir's trained artifacts are (re)loaded on the
	// ORACLE_RELOAD_CRON schedule.
	reloader := oracleload.NewReloader(cfg.OracleArtifactDir, oracle.NewDefaultSet(), logger.WithService())
	if err := reloader.Reload(); err != nil {
		logger.WithService().WithError(err).Warn("initial oracle artifact load failed, running on fallback models")
	}
	reloadCron, err := oracleload.Start(reloader, cfg.OracleReloadCron)
	if err != nil {
		logger.WithService().Fatalf("failed to schedule oracle artifact reload: %v", err)
	}
	defer func() { <-reloadCron.Stop().Done() }()

	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	replayHandler := handlers.NewReplayHandler(db, replayCache, reloader.Current, wsHub, cfg, structuredLogger)
	healthHandler := handlers.NewHealthHandler(db, redisClient, structuredLogger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/replays", replayHandler.RunReplayBatch)
		apiV1.GET("/replays/:id", replayHandler.GetReplayBatch)
	}

	router.GET("/ws/replays/:id", wsHub.HandleWebSocket)

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.GET("/metrics", healthHandler.GetMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithService().WithField("port", cfg.Port).Info("replay server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService().Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService().Info("shutting down replay server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService().Fatalf("replay server forced to shutdown: %v", err)
	}

	logger.WithService().Info("replay server exited")
}
