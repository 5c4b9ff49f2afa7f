package store

import (
	"path/filepath"
	"testing"

	"github.com/finsim/trading-ledger/internal/config"
)

// OpenTest opens a migrated sqlite store backed by a file in the test's
// temp dir, so every test runs against a fresh database.
func OpenTest(t *testing.T) *Store {
	t.Helper()

	cfg := config.Config{
		DBDriver: DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ledger.db"),
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
