package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsim/trading-ledger/internal/store"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *store.Store) {
	t.Helper()
	st := store.OpenTest(t)
	return NewStore(st, ttl), st
}

func createUser(t *testing.T, st *store.Store, username string) int64 {
	t.Helper()
	id, err := st.InsertUser(context.Background(), st.DB(), username, "hash",
		decimal.RequireFromString("10000.00"))
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return id
}

func TestCreateAndResolve(t *testing.T) {
	sessions, st := newTestStore(t, time.Hour)
	userID := createUser(t, st, "alice")

	token, err := sessions.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a token")
	}

	resolved, ok, err := sessions.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !ok || resolved != userID {
		t.Errorf("Expected %d, got %d (ok=%v)", userID, resolved, ok)
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	sessions, _ := newTestStore(t, time.Hour)

	if _, ok, err := sessions.Resolve(context.Background(), "no-such-token"); ok || err != nil {
		t.Errorf("Expected miss, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := sessions.Resolve(context.Background(), ""); ok {
		t.Error("Expected empty token to miss")
	}
}

func TestResolve_Expired(t *testing.T) {
	sessions, st := newTestStore(t, -time.Minute) // already expired on create
	userID := createUser(t, st, "bob")

	token, err := sessions.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, ok, _ := sessions.Resolve(context.Background(), token); ok {
		t.Error("Expected expired token to miss")
	}

	// Expired rows are purged on the way out.
	sess, err := st.SessionByToken(context.Background(), st.DB(), token)
	if err != nil {
		t.Fatalf("SessionByToken failed: %v", err)
	}
	if sess != nil {
		t.Error("Expected expired row purged")
	}
}

func TestClear(t *testing.T) {
	sessions, st := newTestStore(t, time.Hour)
	userID := createUser(t, st, "carol")

	token, err := sessions.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sessions.Clear(context.Background(), token)
	if _, ok, _ := sessions.Resolve(context.Background(), token); ok {
		t.Error("Expected cleared token to miss")
	}

	// Clearing again is a no-op.
	sessions.Clear(context.Background(), token)
}

func TestTokensAreUnique(t *testing.T) {
	sessions, st := newTestStore(t, time.Hour)
	userID := createUser(t, st, "dave")

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		token, err := sessions.Create(context.Background(), userID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("Duplicate token issued: %s", token)
		}
		seen[token] = true
	}
}
