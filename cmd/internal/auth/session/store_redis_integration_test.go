package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// Enabled when KEEPER_REDIS_ADDR is set.

func TestRedisStore_WriteThenRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mustRedis(ctx, t)

	profile := newTestProfile(t)
	st := NewRedisStore(client, profile)
	t.Cleanup(func() { _ = client.Del(context.Background(), st.key).Err() })

	s, err := st.Read(ctx)
	if err != nil {
		t.Fatalf("Read (empty): %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil session, got %+v", s)
	}

	if err := st.Write(ctx, validSession("r1", "tok-redis")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := st.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out == nil || out.ID != "r1" {
		t.Fatalf("read back %+v", out)
	}
}

func TestRedisStore_CorruptValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := mustRedis(ctx, t)

	st := NewRedisStore(client, newTestProfile(t))
	t.Cleanup(func() { _ = client.Del(context.Background(), st.key).Err() })

	if err := client.Set(ctx, st.key, "{garbage", 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := st.Read(ctx); !errors.Is(err, ErrStoreRead) {
		t.Fatalf("expected ErrStoreRead, got %v", err)
	}
}

func mustRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("KEEPER_REDIS_ADDR")
	if addr == "" {
		t.Skip("KEEPER_REDIS_ADDR is not set; skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("KEEPER_REDIS_PASSWORD")})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if shouldSkipIntegration(err) {
			t.Skipf("integration test skipped: Redis unreachable (KEEPER_REDIS_ADDR set): %v", err)
		}
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisStore_DefaultProfileKey(t *testing.T) {
	t.Parallel()

	st := NewRedisStore(nil, "  ")
	if st.key != redisKeyPrefix+DefaultProfile {
		t.Fatalf("key=%q", st.key)
	}
}
