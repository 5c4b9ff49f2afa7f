// Package auth handles registration, login and logout over the users and
// sessions tables.
package auth

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/finsim/trading-ledger/internal/apperr"
	"github.com/finsim/trading-ledger/internal/ledger"
	"github.com/finsim/trading-ledger/internal/session"
	"github.com/finsim/trading-ledger/internal/store"
)

var log = logrus.WithField("component", "auth")

type Service struct {
	store    *store.Store
	sessions *session.Store
}

func New(st *store.Store, sessions *session.Store) *Service {
	return &Service{store: st, sessions: sessions}
}

// Register creates a user with the starting cash balance and logs them in.
// Returns the new user id and a session token.
func (s *Service) Register(ctx context.Context, username, password, confirmation string) (int64, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, "", apperr.E(apperr.Validation, "must provide username")
	}
	if password == "" {
		return 0, "", apperr.E(apperr.Validation, "must provide password")
	}
	if confirmation == "" {
		return 0, "", apperr.E(apperr.Validation, "must provide confirmation")
	}
	if password != confirmation {
		return 0, "", apperr.E(apperr.Validation, "passwords do not match")
	}

	// Case-sensitive exact match, like the username column's collation.
	existing, err := s.store.UserByUsername(ctx, s.store.DB(), username)
	if err != nil {
		return 0, "", err
	}
	if existing != nil {
		return 0, "", apperr.E(apperr.Conflict, "username is taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	userID, err := s.store.InsertUser(ctx, s.store.DB(), username, string(hash), ledger.StartingBalance)
	if err != nil {
		// Backstop for two concurrent registrations racing past the
		// existence check.
		if store.IsUniqueViolation(err) {
			return 0, "", apperr.E(apperr.Conflict, "username is taken")
		}
		return 0, "", err
	}

	token, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return 0, "", err
	}

	log.WithFields(logrus.Fields{"user": userID, "username": username}).Info("user registered")
	return userID, token, nil
}

// Login verifies credentials and establishes a new session. Any session
// presented with the request is cleared first, so login is
// logout-then-login.
func (s *Service) Login(ctx context.Context, username, password, priorToken string) (int64, string, error) {
	s.sessions.Clear(ctx, priorToken)

	if strings.TrimSpace(username) == "" {
		return 0, "", apperr.E(apperr.Validation, "must provide username")
	}
	if password == "" {
		return 0, "", apperr.E(apperr.Validation, "must provide password")
	}

	user, err := s.store.UserByUsername(ctx, s.store.DB(), username)
	if err != nil {
		return 0, "", err
	}
	if user == nil {
		return 0, "", apperr.E(apperr.Authentication, "invalid username and/or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.CredentialHash), []byte(password)); err != nil {
		return 0, "", apperr.E(apperr.Authentication, "invalid username and/or password")
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return 0, "", err
	}

	log.WithField("user", user.ID).Info("login")
	return user.ID, token, nil
}

// Logout clears the session unconditionally. Never fails, including when
// no session exists.
func (s *Service) Logout(ctx context.Context, token string) {
	s.sessions.Clear(ctx, token)
}
