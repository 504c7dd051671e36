package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/db"
	"github.com/saadjs/fitfuel/internal/storage"
)

func newSQLiteStore(t *testing.T) *storage.SQLite {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "fitfuel.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return storage.NewSQLite(sqldb)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *storage.Redis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, storage.NewRedis(client, storage.RedisOptions{Prefix: "test:", TTL: ttl})
}

func exerciseStore(t *testing.T, s cart.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, cart.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`[2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[2]` {
		t.Fatalf("expected overwritten value, got %q", got)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete of missing key must be a no-op: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, cart.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Set(ctx, "  ", nil); err == nil {
		t.Fatalf("expected blank key to be rejected")
	}
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, newSQLiteStore(t))
}

func TestRedisStore(t *testing.T) {
	t.Parallel()
	_, s := newRedisStore(t, 0)
	exerciseStore(t, s)
}

func TestRedisStoreAppliesPrefixAndTTL(t *testing.T) {
	t.Parallel()

	mr, s := newRedisStore(t, time.Hour)
	if err := s.Set(context.Background(), cart.StorageKey, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("test:" + cart.StorageKey) {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("test:" + cart.StorageKey); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := s.Get(context.Background(), cart.StorageKey); !errors.Is(err, cart.ErrNotFound) {
		t.Fatalf("expected expired key to read as missing, got %v", err)
	}
}

func TestCorruptCartInStoreLoadsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for name, s := range map[string]cart.Store{"sqlite": newSQLiteStore(t), "redis": func() cart.Store { _, r := newRedisStore(t, 0); return r }()} {
		if err := s.Set(ctx, cart.StorageKey, []byte(`{"broken":true}`)); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		c, err := cart.Load(ctx, s, cart.StorageKey)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if len(c) != 0 {
			t.Fatalf("%s: expected empty cart, got %+v", name, c)
		}
	}
}

func TestSQLiteKeysByPrefix(t *testing.T) {
	t.Parallel()

	s := newSQLiteStore(t)
	ctx := context.Background()
	for _, k := range []string{"fitfuel.cart", "fitfuel.cart:u1", "other"} {
		if err := s.Set(ctx, k, []byte(`[]`)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	keys, err := s.Keys(ctx, "fitfuel.cart")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 cart keys, got %v", keys)
	}
}
