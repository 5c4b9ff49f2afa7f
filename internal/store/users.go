package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsim/trading-ledger/internal/models"
)

// InsertUser creates a user row and returns its id. The UNIQUE constraint
// on username is the backstop for concurrent registrations; callers should
// check IsUniqueViolation on error.
func (s *Store) InsertUser(ctx context.Context, q Querier, username, credentialHash string, cashBalance decimal.Decimal) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
INSERT INTO users (username, credential_hash, cash_balance, created_at)
VALUES (?, ?, ?, ?)
RETURNING id
`), username, credentialHash, cashBalance.String(), time.Now().UTC().Format(time.RFC3339Nano)).Scan(&id)
	return id, err
}

// UserByUsername returns the user with the exact username, or nil.
func (s *Store) UserByUsername(ctx context.Context, q Querier, username string) (*models.User, error) {
	return s.scanUser(q.QueryRowContext(ctx, s.rebind(`
SELECT id, username, credential_hash, cash_balance, created_at
FROM users WHERE username = ?
`), username))
}

// UserByID returns the user with the given id, or nil.
func (s *Store) UserByID(ctx context.Context, q Querier, id int64) (*models.User, error) {
	return s.scanUser(q.QueryRowContext(ctx, s.rebind(`
SELECT id, username, credential_hash, cash_balance, created_at
FROM users WHERE id = ?
`), id))
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		cash    string
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.CredentialHash, &cash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var err error
	if u.CashBalance, err = decimal.NewFromString(cash); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &u, nil
}

// CashBalance reads the user's cash, locking the row when the transaction
// dialect supports it.
func (s *Store) CashBalance(ctx context.Context, q Querier, userID int64) (decimal.Decimal, error) {
	var cash string
	err := q.QueryRowContext(ctx, s.rebind(`
SELECT cash_balance FROM users WHERE id = ?
`+s.lockSuffix()), userID).Scan(&cash)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(cash)
}

// SetCashBalance writes the user's cash balance.
func (s *Store) SetCashBalance(ctx context.Context, q Querier, userID int64, cash decimal.Decimal) error {
	res, err := q.ExecContext(ctx, s.rebind(`
UPDATE users SET cash_balance = ? WHERE id = ?
`), cash.String(), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}
