package session

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreSaveAndValidate(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := t.Context()

	if err := store.Save(ctx, "user-1", "token-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	valid, err := store.IsValid(ctx, "user-1", "token-1")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if !valid {
		t.Fatal("stored token must be valid")
	}

	if valid, _ := store.IsValid(ctx, "user-1", "token-other"); valid {
		t.Fatal("different token must be invalid")
	}
	if valid, _ := store.IsValid(ctx, "user-2", "token-1"); valid {
		t.Fatal("another user's slot must not validate")
	}
}

func TestRedisStoreOverwriteInvalidatesPrevious(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := t.Context()

	if err := store.Save(ctx, "user-1", "token-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Save(ctx, "user-1", "token-2"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if valid, _ := store.IsValid(ctx, "user-1", "token-1"); valid {
		t.Fatal("overwritten token must be invalid")
	}
	if valid, _ := store.IsValid(ctx, "user-1", "token-2"); !valid {
		t.Fatal("latest token must be valid")
	}
}

func TestRedisStoreSlotExpires(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := t.Context()

	if err := store.Save(ctx, "user-1", "token-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	valid, err := store.IsValid(ctx, "user-1", "token-1")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if valid {
		t.Fatal("expired slot must not validate")
	}
}

func TestRedisStoreRequiresUserID(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)

	if err := store.Save(t.Context(), "", "token"); err == nil {
		t.Fatal("expected error for empty userID")
	}
}
