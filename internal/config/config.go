package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI         string
	MongoDBName      string
	RedisAddr        string // empty disables the unfurl cache
	ListenAddr       string
	Timeout          time.Duration
	RabbitURI        string // empty disables event publishing
	RabbitExchange   string
	RabbitRoutingKey string
}

const (
	MongoURIEnv         = "MONGO_URI"
	MongoDBNameEnv      = "MONGO_DB_NAME"
	RedisAddrEnv        = "REDIS_ADDR"
	ListenAddrEnv       = "LISTEN_ADDR"
	TimeoutEnv          = "TIMEOUT"
	RabbitURIEnv        = "RABBIT_URI"
	RabbitExchangeEnv   = "RABBIT_EXCHANGE"
	RabbitRoutingKeyEnv = "RABBIT_ROUTING_KEY"
)

func FromEnv() (Config, error) {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	var cfg Config

	cfg.MongoURI = getEnv(MongoURIEnv, "mongodb://localhost:27017")
	cfg.MongoDBName = getEnv(MongoDBNameEnv, "nuggetsdb")
	cfg.RedisAddr = getEnv(RedisAddrEnv, "")
	cfg.ListenAddr = getEnv(ListenAddrEnv, ":8080")
	cfg.RabbitURI = getEnv(RabbitURIEnv, "")
	cfg.RabbitExchange = getEnv(RabbitExchangeEnv, "nuggets")
	cfg.RabbitRoutingKey = getEnv(RabbitRoutingKeyEnv, "nugget.normalized")

	var err error
	timeoutStr := getEnv(TimeoutEnv, "10s")
	if cfg.Timeout, err = time.ParseDuration(timeoutStr); err != nil {
		return cfg, fmt.Errorf("invalid %v: %w", TimeoutEnv, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
