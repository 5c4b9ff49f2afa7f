package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsim/trading-ledger/internal/models"
)

func TestInsertUser_UniqueUsername(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	if _, err := s.InsertUser(ctx, s.DB(), "alice", "h1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	_, err := s.InsertUser(ctx, s.DB(), "alice", "h2", decimal.NewFromInt(100))
	if err == nil {
		t.Fatal("Expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("Expected IsUniqueViolation to recognize %v", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	balance := decimal.RequireFromString("10000.00")
	id, err := s.InsertUser(ctx, s.DB(), "bob", "hash", balance)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	byName, err := s.UserByUsername(ctx, s.DB(), "bob")
	if err != nil || byName == nil {
		t.Fatalf("UserByUsername failed: %v / %v", byName, err)
	}
	if byName.ID != id || !byName.CashBalance.Equal(balance) || byName.CredentialHash != "hash" {
		t.Errorf("Round trip mismatch: %+v", byName)
	}

	byID, err := s.UserByID(ctx, s.DB(), id)
	if err != nil || byID == nil || byID.Username != "bob" {
		t.Fatalf("UserByID failed: %+v / %v", byID, err)
	}

	if missing, err := s.UserByUsername(ctx, s.DB(), "nobody"); err != nil || missing != nil {
		t.Errorf("Expected nil for missing user, got %+v / %v", missing, err)
	}
}

func TestUpsertHolding(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	userID, err := s.InsertUser(ctx, s.DB(), "carol", "h", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	// First upsert inserts.
	if err := s.UpsertHolding(ctx, s.DB(), userID, "AAPL", 10); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	// Second increments in place.
	if err := s.UpsertHolding(ctx, s.DB(), userID, "AAPL", 5); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	shares, ok, err := s.HoldingShares(ctx, s.DB(), userID, "AAPL")
	if err != nil || !ok {
		t.Fatalf("HoldingShares failed: ok=%v err=%v", ok, err)
	}
	if shares != 15 {
		t.Errorf("Expected 15 shares, got %d", shares)
	}

	// Still exactly one row.
	holdings, err := s.HoldingsByUser(ctx, s.DB(), userID)
	if err != nil {
		t.Fatalf("HoldingsByUser failed: %v", err)
	}
	if len(holdings) != 1 {
		t.Errorf("Expected 1 row per (user, symbol), got %d", len(holdings))
	}
}

func TestHistoryOrder(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	userID, err := s.InsertUser(ctx, s.DB(), "dave", "h", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	for i, sym := range []string{"AAPL", "MSFT", "TSLA"} {
		_, err := s.AppendHistory(ctx, s.DB(), models.HistoryEntry{
			UserID:     userID,
			Kind:       models.KindBuy,
			Symbol:     sym,
			Shares:     int64(i + 1),
			UnitPrice:  decimal.NewFromInt(10),
			TotalPrice: decimal.NewFromInt(int64(10 * (i + 1))),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := s.HistoryByUser(ctx, s.DB(), userID)
	if err != nil {
		t.Fatalf("HistoryByUser failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	// Oldest first, by insertion order.
	for i, sym := range []string{"AAPL", "MSFT", "TSLA"} {
		if entries[i].Symbol != sym {
			t.Errorf("Entry %d: expected %s, got %s", i, sym, entries[i].Symbol)
		}
	}
}

func TestSessionsRoundTrip(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	userID, err := s.InsertUser(ctx, s.DB(), "erin", "h", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	sess := models.Session{Token: "tok-1", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.InsertSession(ctx, s.DB(), sess); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	got, err := s.SessionByToken(ctx, s.DB(), "tok-1")
	if err != nil || got == nil {
		t.Fatalf("SessionByToken failed: %+v / %v", got, err)
	}
	if got.UserID != userID {
		t.Errorf("Expected user %d, got %d", userID, got.UserID)
	}

	if err := s.DeleteSession(ctx, s.DB(), "tok-1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if got, _ := s.SessionByToken(ctx, s.DB(), "tok-1"); got != nil {
		t.Error("Expected session gone after delete")
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	s := OpenTest(t)
	ctx := context.Background()

	userID, err := s.InsertUser(ctx, s.DB(), "frank", "h", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	now := time.Now()
	s.InsertSession(ctx, s.DB(), models.Session{Token: "old", UserID: userID, ExpiresAt: now.Add(-time.Hour)})
	s.InsertSession(ctx, s.DB(), models.Session{Token: "live", UserID: userID, ExpiresAt: now.Add(time.Hour)})

	if err := s.PurgeExpiredSessions(ctx, s.DB(), now); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	if got, _ := s.SessionByToken(ctx, s.DB(), "old"); got != nil {
		t.Error("Expected expired session purged")
	}
	if got, _ := s.SessionByToken(ctx, s.DB(), "live"); got == nil {
		t.Error("Expected live session kept")
	}
}

func TestRebind(t *testing.T) {
	sqlite := &Store{driver: DriverSQLite}
	postgres := &Store{driver: DriverPostgres}

	q := `SELECT a FROM t WHERE b = ? AND c = ?`
	if got := sqlite.rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	want := `SELECT a FROM t WHERE b = $1 AND c = $2`
	if got := postgres.rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}
