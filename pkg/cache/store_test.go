package cache

import (
	"context"
	"testing"
)

// storeContract runs the Store behavior every backend must satisfy.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	data, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}
	if string(data) != "v1" {
		t.Errorf("Get() = %q, want v1", data)
	}

	if err := store.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _, _ = store.Get(ctx, "k")
	if string(data) != "v2" {
		t.Errorf("overwrite not visible, got %q", data)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("deleted key still present")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("original")
	if err := store.Set(ctx, "k", src); err != nil {
		t.Fatal(err)
	}
	src[0] = 'X'

	data, _, _ := store.Get(ctx, "k")
	if string(data) != "original" {
		t.Errorf("stored value aliased caller buffer, got %q", data)
	}
	data[0] = 'Y'

	again, _, _ := store.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliased stored buffer, got %q", again)
	}
}

func TestNullStore(t *testing.T) {
	store := NewNullStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "k"); ok || err != nil {
		t.Errorf("NullStore retained a value: %v, %v", ok, err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() = %v, want nil", err)
	}
}
