package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codearena/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache is a generic JSON key-value store with per-entry expiry. Domain
// callers go through TestCaseCache instead of using this directly.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err // Includes redis.Nil if not found
	}
	return json.Unmarshal([]byte(val), dest)
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// testCaseTTL bounds staleness after a problem's cases change out of band.
const testCaseTTL = 1 * time.Hour

// TestCaseCache stores the full per-problem test-case set. It owns the key
// namespace and the TTL so the repository and any future writers cannot
// disagree about either. Misses and decode failures are indistinguishable to
// callers: both just mean "go to the database".
type TestCaseCache struct {
	kv Cache
}

func NewTestCaseCache(kv Cache) *TestCaseCache {
	return &TestCaseCache{kv: kv}
}

func testCaseKey(problemID int) string {
	return fmt.Sprintf("problem:%d:testcases", problemID)
}

func (c *TestCaseCache) Get(ctx context.Context, problemID int) ([]models.TestCase, bool) {
	var testCases []models.TestCase
	if err := c.kv.Get(ctx, testCaseKey(problemID), &testCases); err != nil {
		return nil, false
	}
	return testCases, true
}

func (c *TestCaseCache) Put(ctx context.Context, problemID int, testCases []models.TestCase) error {
	return c.kv.Set(ctx, testCaseKey(problemID), testCases, testCaseTTL)
}

// Invalidate drops a problem's cached cases, e.g. after its test data is
// edited. A missing entry is not an error.
func (c *TestCaseCache) Invalidate(ctx context.Context, problemID int) error {
	return c.kv.Delete(ctx, testCaseKey(problemID))
}
