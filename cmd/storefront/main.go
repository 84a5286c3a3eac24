package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tientrn/laptopstore/internal/cart"
	"github.com/tientrn/laptopstore/internal/checkout"
	"github.com/tientrn/laptopstore/internal/guard"
	"github.com/tientrn/laptopstore/internal/httpapi"
	"github.com/tientrn/laptopstore/internal/orderapi"
	"github.com/tientrn/laptopstore/internal/storage"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("storefront starting...")

	// Configuration
	httpPort := getEnv("HTTP_PORT", "8080")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	boltPath := getEnv("BOLT_PATH", "./storefront.db")
	apiBaseURL := getEnv("ORDER_API_BASE_URL", "http://localhost:3000/api")
	sessionID := getEnv("SESSION_ID", uuid.New().String())
	requestTimeout := 5 * time.Second

	// Session store for the live cart
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	sessionStore := storage.NewRedisStore(redisClient, sessionID)
	log.Printf("Connected to redis at %s (session %s)", redisAddr, sessionID)

	// Durable store for staged checkout and pending records
	durableStore, err := storage.NewBoltStore(boltPath)
	if err != nil {
		log.Fatalf("Failed to open durable store: %v", err)
	}
	defer durableStore.Close()
	log.Printf("Durable store open at %s", boltPath)

	// Wire the core
	cartService := cart.NewService(sessionStore)
	pendingGuard := guard.NewGuard(durableStore)
	apiClient := orderapi.NewClient(apiBaseURL, requestTimeout)
	orchestrator := checkout.NewOrchestrator(apiClient, cartService, pendingGuard, durableStore)

	handler := httpapi.NewHandler(cartService, orchestrator)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", httpPort),
		Handler: otelhttp.NewHandler(handler.Routes(), "storefront"),
	}

	go func() {
		log.Printf("Storefront listening on :%s", httpPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	log.Println("Storefront stopped")
}
