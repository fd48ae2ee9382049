package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"codearena/internal/models"
)

// memoryCache is an in-process Cache recording the expirations it was given.
type memoryCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.entries[key]
	if !ok {
		return errors.New("cache: key not found")
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.ttls[key] = expiration
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

func sampleCases(problemID int) []models.TestCase {
	return []models.TestCase{
		{ID: 1, ProblemID: problemID, Input: "[2,7,11,15]\n9", ExpectedOutput: "[0,1]", IsSample: true},
		{ID: 2, ProblemID: problemID, Input: "[3,2,4]\n6", ExpectedOutput: "[1,2]"},
	}
}

func TestTestCaseCacheRoundTrip(t *testing.T) {
	kv := newMemoryCache()
	cache := NewTestCaseCache(kv)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	want := sampleCases(1)
	if err := cache.Put(ctx, 1, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := cache.Get(ctx, 1)
	if !ok {
		t.Fatal("expected a hit after put")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestTestCaseCacheKeysAreNamespacedPerProblem(t *testing.T) {
	kv := newMemoryCache()
	cache := NewTestCaseCache(kv)
	ctx := context.Background()

	if err := cache.Put(ctx, 1, sampleCases(1)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := cache.Get(ctx, 2); ok {
		t.Error("problem 2 must not see problem 1's cases")
	}

	if _, stored := kv.entries["problem:1:testcases"]; !stored {
		t.Errorf("unexpected key layout: %v", keysOf(kv.entries))
	}
}

func TestTestCaseCacheOwnsTTL(t *testing.T) {
	kv := newMemoryCache()
	cache := NewTestCaseCache(kv)

	if err := cache.Put(context.Background(), 7, sampleCases(7)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if ttl := kv.ttls["problem:7:testcases"]; ttl != testCaseTTL {
		t.Errorf("expected TTL %v, got %v", testCaseTTL, ttl)
	}
}

func TestTestCaseCacheInvalidate(t *testing.T) {
	kv := newMemoryCache()
	cache := NewTestCaseCache(kv)
	ctx := context.Background()

	if err := cache.Put(ctx, 3, sampleCases(3)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := cache.Invalidate(ctx, 3); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.Get(ctx, 3); ok {
		t.Error("expected a miss after invalidation")
	}
}

func TestTestCaseCacheCorruptEntryIsAMiss(t *testing.T) {
	kv := newMemoryCache()
	kv.entries["problem:4:testcases"] = []byte("{not json")

	cache := NewTestCaseCache(kv)
	if _, ok := cache.Get(context.Background(), 4); ok {
		t.Error("undecodable entry must read as a miss")
	}
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
