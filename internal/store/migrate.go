package store

import (
	"context"
	"time"
)

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stmts []string
	if s.driver == DriverSQLite {
		stmts = append(stmts,
			`PRAGMA journal_mode=WAL;`,
			`PRAGMA foreign_keys=ON;`,
			`PRAGMA busy_timeout=5000;`,
		)
	}

	serial := `INTEGER PRIMARY KEY AUTOINCREMENT`
	if s.driver == DriverPostgres {
		serial = `BIGSERIAL PRIMARY KEY`
	}

	stmts = append(stmts,
		`
CREATE TABLE IF NOT EXISTS users (
  id `+serial+`,
  username TEXT NOT NULL UNIQUE,
  credential_hash TEXT NOT NULL,
  cash_balance TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
		`
CREATE TABLE IF NOT EXISTS holdings (
  id `+serial+`,
  user_id INTEGER NOT NULL REFERENCES users(id),
  symbol TEXT NOT NULL,
  shares INTEGER NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (user_id, symbol)
);`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_user ON holdings(user_id);`,
		`
CREATE TABLE IF NOT EXISTS history (
  id `+serial+`,
  user_id INTEGER NOT NULL REFERENCES users(id),
  kind TEXT NOT NULL,
  symbol TEXT NOT NULL DEFAULT '',
  shares INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  total_price TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id, id);`,
		`
CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id),
  expires_at TEXT NOT NULL
);`,
	)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
