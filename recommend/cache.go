package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed recommendations under content-addressed keys. A
// snapshot change yields a new key, so entries never go stale.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisCache keeps recommendation payloads in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps client. ttl <= 0 stores entries without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "jobmatrimony:rec:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("recommend: cache get: %w", err)
	}
	return raw, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("recommend: cache set: %w", err)
	}
	return nil
}

// Fingerprint hashes kind, the result limit and the JSON form of snap.
// Engines with different limits never share an entry.
func Fingerprint(kind string, limit int, snap Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("recommend: fingerprint: %w", err)
	}
	sum := sha256.New()
	sum.Write([]byte(kind))
	sum.Write([]byte{0})
	sum.Write([]byte(strconv.Itoa(limit)))
	sum.Write([]byte{0})
	sum.Write(raw)
	return hex.EncodeToString(sum.Sum(nil)), nil
}
