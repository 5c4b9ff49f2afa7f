package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsim/trading-ledger/internal/models"
)

// AppendHistory inserts one immutable history row and returns its id.
func (s *Store) AppendHistory(ctx context.Context, q Querier, e models.HistoryEntry) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
INSERT INTO history (user_id, kind, symbol, shares, unit_price, total_price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), e.UserID, e.Kind, e.Symbol, e.Shares, e.UnitPrice.String(), e.TotalPrice.String(),
		time.Now().UTC().Format(time.RFC3339Nano)).Scan(&id)
	return id, err
}

// HistoryByUser lists all of the user's history entries, oldest first.
// Insertion order is the contract, so the sort key is the row id.
func (s *Store) HistoryByUser(ctx context.Context, q Querier, userID int64) ([]models.HistoryEntry, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`
SELECT id, user_id, kind, symbol, shares, unit_price, total_price, created_at
FROM history WHERE user_id = ? ORDER BY id
`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			e                    models.HistoryEntry
			unit, total, created string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Symbol, &e.Shares, &unit, &total, &created); err != nil {
			return nil, err
		}
		if e.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if e.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
