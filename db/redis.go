package db

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const (
	RegenerateQueueKey = "kelly:queue:regenerate"
	dismissedKeyPrefix = "kelly:dismissed:"
)

func ConnectRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		slog.Warn("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// PushRegeneration enqueues an owner whose insight caches should be rebuilt.
func PushRegeneration(ownerID string) error {
	return Redis.LPush(Ctx, RegenerateQueueKey, ownerID).Err()
}

func PopRegeneration(timeout time.Duration) (string, error) {
	result, err := Redis.BRPop(Ctx, timeout, RegenerateQueueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func DismissedKey(ownerID string) string {
	return dismissedKeyPrefix + ownerID
}
