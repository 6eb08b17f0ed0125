package session

import (
	"testing"

	"github.com/yourusername/blog-api/internal/users"
)

func createUser(t *testing.T, store *users.MemoryStore) *users.User {
	t.Helper()
	user, err := store.Create(t.Context(), &users.User{
		Email:        "a@x.com",
		RealName:     "Alice",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestPrincipalStoreSaveAndValidate(t *testing.T) {
	userStore := users.NewMemoryStore()
	store := NewPrincipalStore(userStore)
	user := createUser(t, userStore)
	ctx := t.Context()

	if err := store.Save(ctx, user.ID, "token-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	valid, err := store.IsValid(ctx, user.ID, "token-1")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if !valid {
		t.Fatal("stored token must be valid")
	}

	valid, err = store.IsValid(ctx, user.ID, "token-other")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if valid {
		t.Fatal("different token must be invalid")
	}
}

func TestPrincipalStoreOverwriteInvalidatesPrevious(t *testing.T) {
	userStore := users.NewMemoryStore()
	store := NewPrincipalStore(userStore)
	user := createUser(t, userStore)
	ctx := t.Context()

	if err := store.Save(ctx, user.ID, "token-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	// 別の場所でのログインに相当する上書き
	if err := store.Save(ctx, user.ID, "token-2"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if valid, _ := store.IsValid(ctx, user.ID, "token-1"); valid {
		t.Fatal("overwritten token must be invalid")
	}
	if valid, _ := store.IsValid(ctx, user.ID, "token-2"); !valid {
		t.Fatal("latest token must be valid")
	}
}

func TestPrincipalStoreUnknownUser(t *testing.T) {
	store := NewPrincipalStore(users.NewMemoryStore())

	valid, err := store.IsValid(t.Context(), "missing-user", "token")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if valid {
		t.Fatal("unknown user must not validate")
	}
}

func TestPrincipalStoreEmptySlot(t *testing.T) {
	userStore := users.NewMemoryStore()
	store := NewPrincipalStore(userStore)
	user := createUser(t, userStore)

	valid, err := store.IsValid(t.Context(), user.ID, "token")
	if err != nil {
		t.Fatalf("IsValid returned error: %v", err)
	}
	if valid {
		t.Fatal("empty slot must not validate")
	}
}
