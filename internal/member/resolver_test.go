package member

import (
	"path/filepath"
	"testing"

	"github.com/mross/choreboard/internal/database"
	"github.com/mross/choreboard/internal/store"
)

func setupResolverTest(t *testing.T) (*Resolver, *store.MemberStore, string) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hh, err := store.NewHouseholdStore(db).Create("Testhouse")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	members := store.NewMemberStore(db)
	return NewResolver(members), members, hh.ID
}

func TestResolveNilIsAnyone(t *testing.T) {
	r, _, hh := setupResolverTest(t)

	p, err := r.Resolve(hh, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p != Anyone {
		t.Errorf("got %+v, want Anyone", p)
	}
}

func TestResolveMember(t *testing.T) {
	r, members, hh := setupResolverTest(t)
	m, err := members.Create(hh, "user-1", "Sam", "parent", "#4f772d", "🦊")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	p, err := r.Resolve(hh, &m.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Name != "Sam" || p.MemberID != m.ID || p.Color != "#4f772d" {
		t.Errorf("got %+v", p)
	}
}

func TestResolveUnknownIsAnyone(t *testing.T) {
	r, _, hh := setupResolverTest(t)

	gone := "no-such-member"
	p, err := r.Resolve(hh, &gone)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p != Anyone {
		t.Errorf("got %+v, want Anyone", p)
	}
}

func TestInvalidateRefreshesCache(t *testing.T) {
	r, members, hh := setupResolverTest(t)

	// Prime the cache before the member exists.
	missing := "not-yet"
	if _, err := r.Resolve(hh, &missing); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	m, err := members.Create(hh, "user-1", "Riley", "kid", "#168aad", "🐢")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	// Still the stale cache.
	p, err := r.Resolve(hh, &m.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p != Anyone {
		t.Errorf("got %+v before invalidation, want Anyone", p)
	}

	r.Invalidate(hh)

	p, err = r.Resolve(hh, &m.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Name != "Riley" {
		t.Errorf("got %+v after invalidation, want Riley", p)
	}
}
