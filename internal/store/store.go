package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/finsim/trading-ledger/internal/config"
)

var log = logrus.WithField("component", "store")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so repo methods can run
// either on the pool or inside an open transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the database handle and the driver-specific SQL details.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and runs migrations.
func Open(cfg config.Config) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.DBDriver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite is happiest with one writer connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

	case DriverPostgres:
		connStr := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		db, err = sql.Open("postgres", connStr)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: db, driver: cfg.DBDriver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.WithField("driver", cfg.DBDriver).Info("database ready")
	return s, nil
}

// DB exposes the underlying handle for repo calls outside a transaction.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	log.Info("database connection closed")
	return err
}

// rebind rewrites `?` placeholders to `$N` for postgres. Queries in this
// package are written once in the `?` form.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lockSuffix returns the row-lock clause for reads inside a mutation
// transaction. SQLite has no FOR UPDATE; its single writer connection
// serializes writes instead.
func (s *Store) lockSuffix() string {
	if s.driver == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// across both drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "constraint failed: UNIQUE") || // modernc message form
		strings.Contains(msg, "duplicate key value") // lib/pq
}

// IsRetryable reports whether err is a transient conflict worth retrying:
// SQLite busy/locked or a postgres serialization/deadlock failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "deadlock detected")
}
