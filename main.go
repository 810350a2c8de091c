package main

import (
	"context"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"paper-trader/auth"
	"paper-trader/config"
	"paper-trader/database"
	"paper-trader/handlers"
	"paper-trader/portfolio"
	"paper-trader/quotes"
	"paper-trader/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	provider := quotes.NewAlphaVantage(cfg.QuoteAPIKey, cfg.QuoteTimeout)
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	users := auth.NewStore(db)
	svc := portfolio.NewService(db, provider)

	h := handlers.New(users, svc, provider, sessions, cfg.SessionTTL)
	router := handlers.Router(h, sessions, "templates/*.tmpl")

	log.Infof("listening on %s", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
