package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"controlnest-backend/config"
	"controlnest-backend/internal/api"
	"controlnest-backend/internal/auth"
	"controlnest-backend/internal/db"
	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/media"
	"controlnest-backend/internal/metrics"
	"controlnest-backend/internal/notification"
	"controlnest-backend/internal/service"
	"controlnest-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./config/config.yaml"); err == nil {
			configPath = "./config/config.yaml"
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Info().Str("path", configPath).Msg("configuration loaded")

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create token issuer")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to get sql.DB")
	}
	defer sqlDB.Close()
	metrics.Init(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	mediaSvc, err := media.NewS3(ctx, cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize media host")
	}

	var notifier service.StatusNotifier
	webpushOptions := notification.Options(cfg.Push)
	if webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool, appStore, webpushOptions)
		pool.Start(ctx)
		notifier = pool
		logging.Info().Int("workers", cfg.WorkerPool.Size).Msg("push notifications enabled")
	} else {
		logging.Warn().Msg("VAPID keys not configured, push notifications disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(cfg.Server, api.Deps{
		Store:     appStore,
		Users:     service.NewUserService(appStore, tokens),
		Locations: service.NewLocationService(appStore),
		Devices:   service.NewDeviceService(appStore, mediaSvc, notifier),
		Tokens:    tokens,
		WebPush:   webpushOptions,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Int("port", cfg.Server.Port).Msg("ControlNest Server is listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logging.Info().Msg("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server Shutdown")
	}

	logging.Info().Msg("server gracefully stopped")
}
