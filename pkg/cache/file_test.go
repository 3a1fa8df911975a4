package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	storeContract(t, store)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	if store.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", store.Dir(), dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("store directory not created: %v", err)
	}
}

func TestFileStore_HashedPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// Keys with filesystem-unsafe characters must still round-trip.
	key := "acme/wiki/docs/nested page.md@feature/branch"
	if err := store.Set(ctx, key, []byte("content")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	data, ok, err := store.Get(ctx, key)
	if !ok || err != nil {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}
	if string(data) != "content" {
		t.Errorf("Get() = %q, want content", data)
	}

	// The on-disk layout is <dir>/<hash[:2]>/<hash[2:]>.json.
	hash := Hash([]byte(key))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestDefaultDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir() failed: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-cache", "ghwiki"); dir != want {
		t.Errorf("DefaultDir() = %q, want %q", dir, want)
	}
}
