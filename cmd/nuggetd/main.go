package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"nuggets/internal/config"
	"nuggets/internal/db"
	"nuggets/internal/enrich"
	"nuggets/internal/event"
	"nuggets/internal/nugget"
	"nuggets/internal/tag"
)

func main() {
	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[nuggetd] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// Mongo
	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("failed to connect to db: %v", err)
	}
	dbInstance := mongoClient.Database(cfg.MongoDBName)

	// Redis (optional unfurl cache)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = db.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		logger.Println("unfurl cache enabled")
	}

	// Repositories and services
	repo, err := nugget.NewMongoRepository(dbInstance, logger)
	if err != nil {
		logger.Fatalf("failed to init repository: %v", err)
	}
	logger.Println("nugget repository initialised")

	tagService, err := tag.NewService(dbInstance, logger)
	if err != nil {
		logger.Fatalf("failed to init tag service: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	unfurler := enrich.NewUnfurler(httpClient, redisClient, logger)
	normalizer := nugget.NewNormalizer(unfurler, logger)

	// Event publisher (optional)
	var publisher event.Publisher
	if cfg.RabbitURI != "" {
		rabbit, err := event.NewRabbitPublisher(
			cfg.RabbitURI,
			cfg.RabbitExchange,
			cfg.RabbitRoutingKey,
			logger,
		)
		if err != nil {
			logger.Fatalf("failed to init rabbit publisher: %v", err)
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	server := &Server{
		repo:       repo,
		normalizer: normalizer,
		tags:       tagService,
		publisher:  publisher,
		logger:     logger,
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(mux.NewRouter()),
	}

	go func() {
		logger.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	logger.Println("service started")

	// Block until we receive a signal / ctx cancelled
	<-ctx.Done()
	logger.Println("shutdown signal received, shutting down...")

	// Unified shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Printf("redis close error: %v", err)
		}
	}

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Printf("mongo disconnect error: %v", err)
	}

	logger.Println("shutdown complete")
}
