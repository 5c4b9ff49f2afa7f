package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finsim/trading-ledger/internal/models"
)

// HoldingsByUser lists the user's positions, symbol order.
func (s *Store) HoldingsByUser(ctx context.Context, q Querier, userID int64) ([]models.Holding, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`
SELECT id, user_id, symbol, shares, updated_at
FROM holdings WHERE user_id = ? ORDER BY symbol
`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Holding
	for rows.Next() {
		var (
			h       models.Holding
			updated string
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Shares, &updated); err != nil {
			return nil, err
		}
		h.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, h)
	}
	return out, rows.Err()
}

// HoldingShares reads the share count for (user, symbol), locking the row
// when the dialect supports it. The bool reports whether a row exists.
func (s *Store) HoldingShares(ctx context.Context, q Querier, userID int64, symbol string) (int64, bool, error) {
	var shares int64
	err := q.QueryRowContext(ctx, s.rebind(`
SELECT shares FROM holdings WHERE user_id = ? AND symbol = ?
`+s.lockSuffix()), userID, symbol).Scan(&shares)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return shares, true, nil
}

// UpsertHolding adds shares to the (user, symbol) position, creating the
// row on first buy.
func (s *Store) UpsertHolding(ctx context.Context, q Querier, userID int64, symbol string, shares int64) error {
	_, err := q.ExecContext(ctx, s.rebind(`
INSERT INTO holdings (user_id, symbol, shares, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, symbol)
DO UPDATE SET
    shares = holdings.shares + excluded.shares,
    updated_at = excluded.updated_at
`), userID, symbol, shares, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// SetHoldingShares overwrites the share count for an existing position.
func (s *Store) SetHoldingShares(ctx context.Context, q Querier, userID int64, symbol string, shares int64) error {
	_, err := q.ExecContext(ctx, s.rebind(`
UPDATE holdings SET shares = ?, updated_at = ? WHERE user_id = ? AND symbol = ?
`), shares, time.Now().UTC().Format(time.RFC3339Nano), userID, symbol)
	return err
}

// DeleteHolding removes the (user, symbol) row after a full sell.
func (s *Store) DeleteHolding(ctx context.Context, q Querier, userID int64, symbol string) error {
	_, err := q.ExecContext(ctx, s.rebind(`
DELETE FROM holdings WHERE user_id = ? AND symbol = ?
`), userID, symbol)
	return err
}
