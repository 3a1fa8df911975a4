package cache

import "testing"

func TestIdentityIndex_Observe(t *testing.T) {
	idx := NewIdentityIndex()

	if _, renamed := idx.Observe(42, "alice"); renamed {
		t.Error("first observation reported a rename")
	}
	if _, renamed := idx.Observe(42, "alice"); renamed {
		t.Error("repeated observation reported a rename")
	}

	previous, renamed := idx.Observe(42, "alice-new")
	if !renamed {
		t.Fatal("rename not detected")
	}
	if previous != "alice" {
		t.Errorf("previous login = %q, want alice", previous)
	}

	if login, _ := idx.Login(42); login != "alice-new" {
		t.Errorf("Login(42) = %q, want alice-new", login)
	}
	if _, ok := idx.ID("alice"); ok {
		t.Error("superseded login still resolves")
	}
	if id, ok := idx.ID("alice-new"); !ok || id != 42 {
		t.Errorf("ID(alice-new) = %d, %v; want 42, true", id, ok)
	}
}

func TestIdentityIndex_DistinctUsers(t *testing.T) {
	idx := NewIdentityIndex()
	idx.Observe(1, "alice")
	idx.Observe(2, "bob")

	if _, renamed := idx.Observe(1, "alice"); renamed {
		t.Error("unrelated user triggered a rename")
	}
	if id, _ := idx.ID("bob"); id != 2 {
		t.Errorf("ID(bob) = %d, want 2", id)
	}
}
