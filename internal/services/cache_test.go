package services

import (
	"codearena/internal/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	if err := cache.Set(ctx, "problem:1", payload{ID: 1, Name: "Sum of Two Numbers"}, time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	if err := cache.Get(ctx, "problem:1", &got); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != 1 || got.Name != "Sum of Two Numbers" {
		t.Errorf("Get = %+v, want stored payload", got)
	}
}

// Cached test cases must keep their expected outputs: a blank expected
// output is judged leniently, so losing it in the cache encoding would
// accept any submission once the cache is warm.
func TestCacheRoundTripsTestCaseExpectedOutput(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	stored := []models.TestCase{
		{ID: 11, ProblemID: 1, Name: "basic", InputData: "5 3", ExpectedOutput: "8"},
		{ID: 12, ProblemID: 1, Name: "negatives", InputData: "-5 3", ExpectedOutput: "-2"},
	}
	if err := cache.Set(ctx, "problem:1:testcases", stored, time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var loaded []models.TestCase
	if err := cache.Get(ctx, "problem:1:testcases", &loaded); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d test cases, want 2", len(loaded))
	}
	for i, tc := range loaded {
		if tc.ExpectedOutput != stored[i].ExpectedOutput {
			t.Errorf("test case %d expected output = %q after round-trip, want %q",
				tc.ID, tc.ExpectedOutput, stored[i].ExpectedOutput)
		}
	}
}

func TestCacheGetMissing(t *testing.T) {
	cache, _ := newTestCache(t)

	var dest string
	err := cache.Get(context.Background(), "absent", &dest)
	if !errors.Is(err, redis.Nil) {
		t.Errorf("Get on missing key = %v, want redis.Nil", err)
	}
}

func TestCacheDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var dest string
	if err := cache.Get(ctx, "key", &dest); !errors.Is(err, redis.Nil) {
		t.Errorf("Get after delete = %v, want redis.Nil", err)
	}
}

func TestCacheExpiration(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "ephemeral", 42, time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var dest int
	if err := cache.Get(ctx, "ephemeral", &dest); !errors.Is(err, redis.Nil) {
		t.Errorf("Get after expiry = %v, want redis.Nil", err)
	}
}
