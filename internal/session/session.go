// Package session implements server-side sessions backed by the sessions
// table: opaque uuid tokens mapped to user ids with an expiry.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/finsim/trading-ledger/internal/models"
	"github.com/finsim/trading-ledger/internal/store"
)

var log = logrus.WithField("component", "session")

type Store struct {
	store *store.Store
	ttl   time.Duration
}

func NewStore(st *store.Store, ttl time.Duration) *Store {
	return &Store{store: st, ttl: ttl}
}

// Create issues a fresh token bound to userID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.InsertSession(ctx, s.store.DB(), sess); err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Resolve returns the user id for a live token. Expired or unknown tokens
// resolve to (0, false); expired rows are purged opportunistically.
func (s *Store) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	sess, err := s.store.SessionByToken(ctx, s.store.DB(), token)
	if err != nil {
		return 0, false, err
	}
	if sess == nil {
		return 0, false, nil
	}
	if time.Now().After(sess.ExpiresAt) {
		if err := s.store.PurgeExpiredSessions(ctx, s.store.DB(), time.Now()); err != nil {
			log.WithError(err).Warn("session purge failed")
		}
		return 0, false, nil
	}
	return sess.UserID, true, nil
}

// Clear drops a token. Always succeeds from the caller's point of view;
// clearing a missing token is a no-op.
func (s *Store) Clear(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.store.DeleteSession(ctx, s.store.DB(), token); err != nil {
		log.WithError(err).Warn("session clear failed")
	}
}
