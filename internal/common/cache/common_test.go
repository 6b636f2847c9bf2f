package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tigabum/christian-platform/internal/common/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}
	return c, mr
}

func marshalProfile(p profile) string {
	data, _ := json.Marshal(p)
	return string(data)
}

func unmarshalProfile(raw string) (profile, error) {
	var p profile
	err := json.Unmarshal([]byte(raw), &p)
	return p, err
}

func TestGetWithCachedLoadsAndCaches(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (profile, error) {
		loads++
		return profile{ID: 7, Name: "Sara"}, nil
	}

	got, err := cache.GetWithCached(ctx, c, "profile:7", time.Minute, 10*time.Second,
		func(p profile) bool { return p.ID == 0 },
		marshalProfile, unmarshalProfile, loader)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if got.Name != "Sara" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	got, err = cache.GetWithCached(ctx, c, "profile:7", time.Minute, 10*time.Second,
		func(p profile) bool { return p.ID == 0 },
		marshalProfile, unmarshalProfile, loader)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected profile on cache hit: %+v", got)
	}
	if loads != 1 {
		t.Fatalf("expected one loader call, got %d", loads)
	}
	if !mr.Exists("profile:7") {
		t.Fatalf("expected cache key to be set")
	}
}

func TestGetWithCachedCachesEmptyResult(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (profile, error) {
		loads++
		return profile{}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := cache.GetWithCached(ctx, c, "profile:missing", time.Minute, 10*time.Second,
			func(p profile) bool { return p.ID == 0 },
			marshalProfile, unmarshalProfile, loader)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if got.ID != 0 {
			t.Fatalf("expected zero profile, got %+v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("expected empty marker to absorb second read, loader ran %d times", loads)
	}
	raw, err := mr.Get("profile:missing")
	if err != nil {
		t.Fatalf("read marker failed: %v", err)
	}
	if raw != cache.NullCacheValue {
		t.Fatalf("expected null marker, got %q", raw)
	}
}

func TestUpdateCachedInvalidates(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "profile:9", "stale", time.Minute); err != nil {
		t.Fatalf("seed cache failed: %v", err)
	}
	err := cache.UpdateCached(ctx, c, "profile:9", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if mr.Exists("profile:9") {
		t.Fatalf("expected cache key to be invalidated")
	}
}

func TestJitterTTLStaysWithinBounds(t *testing.T) {
	ttl := 10 * time.Minute
	for i := 0; i < 50; i++ {
		jittered := cache.JitterTTL(ttl)
		if jittered > ttl || jittered < ttl-ttl/10 {
			t.Fatalf("jittered ttl out of bounds: %s", jittered)
		}
	}
	if cache.JitterTTL(0) != 0 {
		t.Fatalf("expected zero ttl to pass through")
	}
}

func TestIncrAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := c.Incr(ctx, "login:fail:email:a@b.c")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if n != i {
			t.Fatalf("expected counter %d, got %d", i, n)
		}
	}
	if err := c.Expire(ctx, "login:fail:email:a@b.c", time.Minute); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	val, err := c.Get(ctx, "login:fail:email:a@b.c")
	if err != nil {
		t.Fatalf("get after expiry failed: %v", err)
	}
	if val != "" {
		t.Fatalf("expected counter to expire, got %q", val)
	}
}
