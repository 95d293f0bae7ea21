// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

package kv

import (
	"context"
	"errors"
	"sort"
	"testing"
)

// storeContract exercises the Store behavior every implementation must
// share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "a:1", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "a:2", []byte("two")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "b:1", []byte("three")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "a:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get(a:1) = %q, want one", got)
	}

	if err := s.Set(ctx, "a:1", []byte("uno")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = s.Get(ctx, "a:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "uno" {
		t.Errorf("Get(a:1) after overwrite = %q, want uno", got)
	}

	keys, err := s.Keys(ctx, "a:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a:1" || keys[1] != "a:2" {
		t.Errorf("Keys(a:) = %v, want [a:1 a:2]", keys)
	}

	if err := s.Delete(ctx, "a:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a:1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "a:1"); err != nil {
		t.Errorf("Delete of absent key = %v, want nil", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	t.Parallel()
	storeContract(t, NewMemoryStore())
}

func TestBadgerStoreContract(t *testing.T) {
	t.Parallel()

	s, err := NewBadgerStore("")
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	storeContract(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("stored value mutated through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != "original" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}
