package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nithin9585/ipdr-vsr/config"
	"github.com/Nithin9585/ipdr-vsr/internal/bootstrap"
	cronjob "github.com/Nithin9585/ipdr-vsr/internal/cron"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/detect"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/history"
	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var redisClient *redis.Client
	var db *sql.DB
	var store history.Store

	switch cfg.History.Backend {
	case "redis":
		redisClient, err = bootstrap.OpenRedis(ctx, cfg.History.RedisAddr)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		store = history.NewRedisStore(redisClient, cfg.History.Limit)
	case "postgres":
		db, err = bootstrap.OpenSQL(ctx, cfg.History.DBDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		store = history.NewPostgresStore(db, cfg.History.Limit)
	default:
		log.Println("history store disabled")
	}

	detector := detect.NewClient(
		cfg.Detector.BaseURL,
		time.Duration(cfg.Detector.TimeoutSec)*time.Second,
		time.Duration(cfg.Detector.FallbackDelayMs)*time.Millisecond,
	)
	dashboard := service.NewDashboard(detector)

	scheduler := cronjob.NewScheduler(store)
	scheduler.Start()
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  "ipdr-vsr",
		Version:      cfg.App.Version,
		APIKey:       cfg.Server.APIKey,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Dashboard:    dashboard,
		HistoryStore: store,
		Redis:        redisClient,
		DB:           db,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
