package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trustlens/internal/api"
	"trustlens/internal/config"
	apphttp "trustlens/internal/http"
	"trustlens/internal/notify"
	"trustlens/internal/session"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// El almacenamiento durable de la sesion: redis si esta configurado,
	// archivo local en caso contrario.
	storage := session.NewFileStorage(cfg.SessionFile)
	limiter := session.NewLoginRateLimiter(time.Minute, cfg.LoginMaxTries)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using file storage", zap.Error(err))
		} else {
			storage = session.NewRedisStorage(redisClient, "")
			limiter = session.NewRedisLoginRateLimiter(redisClient, time.Minute, cfg.LoginMaxTries)
		}
		cancel()
	}

	feed := notify.NewFeed(10, logger)
	apiClient := api.NewClient(cfg.APIBaseURL, logger)
	store := session.NewStore(logger, apiClient, storage, feed, limiter)
	// La credencial se lee del Store en cada request saliente.
	apiClient.SetTokenSource(store.Token)

	// Restaurar la sesion persistida antes de atender rutas.
	store.Restore(ctx)

	router := apphttp.NewRouter(logger, store, feed)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("port", cfg.HTTPPort),
		zap.String("api", cfg.APIBaseURL),
		zap.Bool("session_restored", store.IsAuthenticated()),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
