package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// NewRedisLocker connects to REDIS_ADDRESS and returns a distributed lock
// client for the outbox dispatcher. Redis is optional: when the address is
// unset (local dev, tests) both return values are nil and the dispatcher
// falls back to database-claim-only coordination.
func NewRedisLocker() (*redis.Client, *redislock.Client) {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unreachable at %s: %v; continuing without redis lock", address, err)
		return nil, nil
	}

	return rdb, redislock.New(rdb)
}
