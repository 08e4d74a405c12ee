package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"yawlit/config"
)

// ContextCacheClient is the dedicated client for conversation snapshots.
var ContextCacheClient *redis.Client

// InitContextCache initializes the Redis client that holds conversation
// context snapshots, kept in its own DB so a cache flush never drops an
// in-progress booking conversation.
func InitContextCache() {
	ContextCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisContextDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ContextCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Context Cache): %v", err)
	}
}

// GetContextCacheClient returns the Redis client for conversation snapshots.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		InitContextCache()
	}
	return ContextCacheClient
}
