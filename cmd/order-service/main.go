package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/restohub/restaurant-orders/internal/config"
	"github.com/restohub/restaurant-orders/internal/database"
	"github.com/restohub/restaurant-orders/internal/events"
	"github.com/restohub/restaurant-orders/internal/httpx"
	"github.com/restohub/restaurant-orders/internal/order"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := database.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// The service stays up without Redis; events are just dropped.
	pub := events.NewRedisPublisher(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}))
	if err := pub.Ping(ctx); err != nil {
		log.Printf("[events] redis unavailable, events will be dropped: %v", err)
	}

	svc := order.NewService(order.NewPGRepo(pool), pub)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), httpx.Recovery())
	registerRoutes(r, svc)

	log.Printf("order-service listening on %s", cfg.OrderSvcAddr)
	log.Fatal(r.Run(cfg.OrderSvcAddr))
}
