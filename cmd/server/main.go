package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-retail/internal/auth"
	"go-pos-retail/internal/config"
	"go-pos-retail/internal/database"
	"go-pos-retail/internal/handlers"
	"go-pos-retail/internal/logger"
	"go-pos-retail/internal/services"
	"go-pos-retail/internal/utils"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	if err := database.Seed(db, log, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	redisClient := database.ConnectRedis(ctx, cfg.RedisAddr, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 2. Invoice numbers, tokens, permissions
	if cfg.SnowflakeNode < 0 {
		cfg.SnowflakeNode = utils.NodeID()
	}
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		log.Fatal("invalid SNOWFLAKE_NODE", zap.Int64("node", cfg.SnowflakeNode), zap.Error(err))
	}
	tokens := auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	perms, err := services.NewPermissionService(ctx, db, log)
	if err != nil {
		log.Fatal("permissions unavailable", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Warn("upload dir not writable", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	// 3. HTTP
	deps := handlers.NewDeps(db, cfg, log, node, tokens, perms)
	router := handlers.NewRouter(deps, handlers.RouterOptions{
		Log:               log,
		Tokens:            tokens,
		CORSOrigins:       cfg.CORSOrigins,
		AllowRegistration: cfg.AllowRegistration,
		Redis:             redisClient,
		LoginRateLimit:    cfg.LoginRateLimit,
		UploadDir:         cfg.UploadDir,
		WebDir:            cfg.WebDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server starting",
			zap.String("base_url", cfg.BaseURL),
			zap.String("commit_mode", cfg.CommitMode),
			zap.String("points_cap_mode", cfg.PointsCapMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
