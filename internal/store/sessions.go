package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finsim/trading-ledger/internal/models"
)

// InsertSession stores a session token.
func (s *Store) InsertSession(ctx context.Context, q Querier, sess models.Session) error {
	_, err := q.ExecContext(ctx, s.rebind(`
INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)
`), sess.Token, sess.UserID, sess.ExpiresAt.UTC().Format(time.RFC3339Nano))
	return err
}

// SessionByToken returns the session for a token, or nil. Expiry is the
// caller's concern; expired rows are still returned.
func (s *Store) SessionByToken(ctx context.Context, q Querier, token string) (*models.Session, error) {
	var (
		sess    models.Session
		expires string
	)
	err := q.QueryRowContext(ctx, s.rebind(`
SELECT token, user_id, expires_at FROM sessions WHERE token = ?
`), token).Scan(&sess.Token, &sess.UserID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt, _ = time.Parse(time.RFC3339Nano, expires)
	return &sess, nil
}

// DeleteSession removes a token. Deleting a missing token is not an error.
func (s *Store) DeleteSession(ctx context.Context, q Querier, token string) error {
	_, err := q.ExecContext(ctx, s.rebind(`
DELETE FROM sessions WHERE token = ?
`), token)
	return err
}

// PurgeExpiredSessions deletes every session past its expiry.
func (s *Store) PurgeExpiredSessions(ctx context.Context, q Querier, now time.Time) error {
	_, err := q.ExecContext(ctx, s.rebind(`
DELETE FROM sessions WHERE expires_at < ?
`), now.UTC().Format(time.RFC3339Nano))
	return err
}
