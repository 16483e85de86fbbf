// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"concierge/config"

	"github.com/go-redis/redis/v8"
)

// ReminderQueueClient is the Redis client for the reminder queue database.
// The task queue itself is owned by asynq; this client exists for health
// monitoring and operational checks against the same database.
var ReminderQueueClient *redis.Client

// InitReminderQueueCache initializes the Redis client for the reminder queue DB.
func InitReminderQueueCache() {
	ReminderQueueClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ReminderQueueClient.Ping(ctx).Result(); err != nil {
		log.Printf("Redis (reminder queue) unreachable at startup: %v", err)
	}
}

// GetReminderQueueClient returns the reminder queue Redis client.
func GetReminderQueueClient() *redis.Client {
	if ReminderQueueClient == nil {
		InitReminderQueueCache()
	}
	return ReminderQueueClient
}
