// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"bikeserve/config"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient backs sessions, wizard drafts and confirm locks.
var SessionCacheClient *redis.Client

// InitCache connects the session cache client and verifies it with a ping.
func InitCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis (sessions): %w", err)
	}
	SessionCacheClient = client
	return nil
}

// GetSessionCacheClient returns the session cache client, or nil before InitCache succeeds.
func GetSessionCacheClient() *redis.Client {
	return SessionCacheClient
}
