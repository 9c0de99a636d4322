package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tilp-connect/common/database"
	"tilp-connect/common/logger"
	"tilp-connect/common/redis"
	"tilp-connect/internal/config"
	httpapi "tilp-connect/internal/http"
	"tilp-connect/internal/media"
	"tilp-connect/internal/repository"
	"tilp-connect/internal/service"
	"tilp-connect/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "tilp-connect")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	// Sessions
	var kv store.KV
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		if c, err := redis.NewRedisClient(&cfg.Redis); err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
		} else {
			log.Warn("Redis enabled but connection failed, sessions are kept in memory", zap.Error(err))
		}
	}
	if kv == nil {
		kv = store.NewMemoryKV()
	}

	seed := repository.SeedOptions{Admin: cfg.Seed.Admin, Demo: cfg.Seed.Demo}

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err = repository.InitSchema(ctx, d, seed)
			cancel()
			if err != nil {
				log.Error("Schema init failed, falling back to memory store", zap.Error(err))
				_ = d.Close()
			} else {
				db = d
				log.Info("DB enabled for tilp-connect", zap.String("host", cfg.Database.Host))
			}
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}

	var st repository.Store
	if db != nil {
		st = repository.NewPostgresStore(db)
	} else {
		mem := repository.NewMemoryStore()
		mem.Seed(seed)
		st = mem
	}

	mediaStorage, err := media.NewLocalStorage(cfg.Media.Dir, cfg.Media.MaxBytes)
	if err != nil {
		// entries are still recorded, without attachments
		log.Error("Media storage unavailable", zap.String("dir", cfg.Media.Dir), zap.Error(err))
		mediaStorage = nil
	}
	var trackerMedia service.MediaStore
	if mediaStorage != nil {
		trackerMedia = mediaStorage
	}

	auth := service.NewAuthService(st, kv, cfg.Session.TTL, log)
	router := httpapi.NewRouter(auth, log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(auth, log))
	router.RegisterTrackerRoutes(httpapi.NewTrackerHandler(service.NewTrackerService(st, trackerMedia, log), cfg.Media.MaxBytes+(1<<20), log))
	router.RegisterPlannerRoutes(httpapi.NewPlannerHandler(service.NewPlannerService(st, log), log))
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(service.NewDashboardService(st, log), mediaStorage, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(service.NewAdminService(st, auth, log), log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}

	if err := srv.StopWithin(5 * time.Second); err != nil {
		log.Warn("HTTP server did not drain in time", zap.Error(err))
	}
	_ = redis.Close(redisClient)
	_ = database.Close(db)
}
