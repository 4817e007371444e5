package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache caches generated answers in redis. Every cache key embeds a
// corpus version counter that ingestion bumps on each change, so an answer
// computed over an older corpus can never be served again; the MySQL scan
// stays authoritative.
type AnswerCache struct {
	client    *redisv9.Client
	answerTTL time.Duration
}

func NewAnswerCache(client *redisv9.Client, answerTTL time.Duration) *AnswerCache {
	if answerTTL <= 0 {
		answerTTL = 5 * time.Minute
	}
	return &AnswerCache{
		client:    client,
		answerTTL: answerTTL,
	}
}

func (c *AnswerCache) Get(ctx context.Context, query string, topK int) (string, bool, error) {
	version, err := c.version(ctx)
	if err != nil {
		return "", false, err
	}
	raw, err := c.client.Get(ctx, c.answerKey(version, query, topK)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get answer failed: %w", err)
	}
	return raw, true, nil
}

func (c *AnswerCache) Set(ctx context.Context, query string, topK int, answer string) error {
	version, err := c.version(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.answerKey(version, query, topK), answer, c.answerTTL).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// BumpVersion invalidates all cached answers by moving the key namespace.
// Stale entries expire via their TTL.
func (c *AnswerCache) BumpVersion(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("redis bump corpus version failed: %w", err)
	}
	return nil
}

func (c *AnswerCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey()).Int64()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get corpus version failed: %w", err)
	}
	return v, nil
}

func (c *AnswerCache) answerKey(version int64, query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("query:answer:v%d:k%d:%x", version, topK, sum[:16])
}

func (c *AnswerCache) versionKey() string {
	return "corpus:version"
}
