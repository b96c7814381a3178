package cache

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultCacheTTL  = time.Minute
	redisPingTimeout = 5 * time.Second
)

// newRedisClient connects and pings so a misconfigured cache is caught at startup.
func newRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			log.Debug().Err(cerr).Str("addr", opts.Addr).Msg("redis close after failed ping")
		}
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}
	return client, nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.AlertTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.AlertTTLSeconds) * time.Second
}

// buildRedisOptions prefers REDIS_URL and falls back to host/port settings.
func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(cmp.Or(cfg.RedisHost, "127.0.0.1"), cmp.Or(cfg.RedisPort, "6379")),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// getJSON decodes the entry at key into dest. A missing key is a miss, not an error.
func getJSON(ctx context.Context, client *redis.Client, key string, dest any) (bool, error) {
	payload, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s failed: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, client *redis.Client, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

// deleteKeysWithPrefix removes every key under prefix, batchSize keys at a time.
func deleteKeysWithPrefix(ctx context.Context, client *redis.Client, prefix string, batchSize int64) error {
	iter := client.Scan(ctx, 0, prefix+"*", batchSize).Iterator()

	batch := make([]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if int64(len(batch)) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}
