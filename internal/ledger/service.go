// Package ledger implements the core transactional operations over the
// users/holdings/history tables: buy, sell, deposit, and the portfolio and
// history views.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsim/trading-ledger/internal/apperr"
	"github.com/finsim/trading-ledger/internal/models"
	"github.com/finsim/trading-ledger/internal/quote"
	"github.com/finsim/trading-ledger/internal/store"
)

var log = logrus.WithField("component", "ledger")

// StartingBalance is the cash every new account opens with.
var StartingBalance = decimal.RequireFromString("10000.00")

// txAttempts bounds retries on transient transaction conflicts.
const txAttempts = 3

// Service executes ledger operations against injected collaborators. No
// package-level state; construct one per process.
type Service struct {
	store  *store.Store
	quotes quote.Provider
	locks  *userLocks
}

func New(st *store.Store, quotes quote.Provider) *Service {
	return &Service{
		store:  st,
		quotes: quotes,
		locks:  newUserLocks(),
	}
}

// Quote resolves a single symbol for the quote view. No side effects.
func (s *Service) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return quote.Quote{}, apperr.E(apperr.Validation, "must provide stock symbol")
	}
	return s.lookup(ctx, symbol)
}

func (s *Service) lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if errors.Is(err, quote.ErrNotFound) {
		return quote.Quote{}, apperr.E(apperr.UnknownSymbol, "stock symbol doesn't exist")
	}
	if err != nil {
		// A slow or failing provider is surfaced like a miss rather than
		// hanging or crashing the request.
		return quote.Quote{}, apperr.Wrap(apperr.UnknownSymbol, err, "quote service unavailable")
	}
	return q, nil
}

// Buy purchases shares at the current quote. History append, cash debit
// and holding upsert commit as one transaction or not at all.
func (s *Service) Buy(ctx context.Context, userID int64, symbol string, shares int64) error {
	if strings.TrimSpace(symbol) == "" {
		return apperr.E(apperr.Validation, "must provide symbol")
	}
	if shares <= 0 {
		return apperr.E(apperr.Validation, "must provide a positive number of shares")
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	total := q.Price.Mul(decimal.NewFromInt(shares))

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cash, err := s.store.CashBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if total.GreaterThan(cash) {
			return apperr.E(apperr.InsufficientFunds, "not enough money to purchase")
		}

		if _, err := s.store.AppendHistory(ctx, tx, models.HistoryEntry{
			UserID:     userID,
			Kind:       models.KindBuy,
			Symbol:     q.Symbol,
			Shares:     shares,
			UnitPrice:  q.Price,
			TotalPrice: total,
		}); err != nil {
			return err
		}
		if err := s.store.SetCashBalance(ctx, tx, userID, cash.Sub(total)); err != nil {
			return err
		}
		return s.store.UpsertHolding(ctx, tx, userID, q.Symbol, shares)
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"user":   userID,
		"symbol": q.Symbol,
		"shares": shares,
		"total":  total.String(),
	}).Info("buy executed")
	return nil
}

// Sell disposes shares at the current quote. The holding must exist and
// cover the requested count; a position sold down to zero is deleted.
func (s *Service) Sell(ctx context.Context, userID int64, symbol string, shares int64) error {
	if strings.TrimSpace(symbol) == "" {
		return apperr.E(apperr.Validation, "must provide symbol")
	}
	if shares <= 0 {
		return apperr.E(apperr.Validation, "must provide a positive number of shares")
	}

	q, err := s.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		held, ok, err := s.store.HoldingShares(ctx, tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.E(apperr.NoHolding, "shares not purchased")
		}
		if held < shares {
			return apperr.E(apperr.InsufficientShares,
				"not enough shares: own %d, selling %d", held, shares)
		}

		if _, err := s.store.AppendHistory(ctx, tx, models.HistoryEntry{
			UserID:     userID,
			Kind:       models.KindSell,
			Symbol:     q.Symbol,
			Shares:     -shares,
			UnitPrice:  q.Price.Neg(),
			TotalPrice: proceeds.Neg(),
		}); err != nil {
			return err
		}

		cash, err := s.store.CashBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := s.store.SetCashBalance(ctx, tx, userID, cash.Add(proceeds)); err != nil {
			return err
		}

		if held == shares {
			return s.store.DeleteHolding(ctx, tx, userID, q.Symbol)
		}
		return s.store.SetHoldingShares(ctx, tx, userID, q.Symbol, held-shares)
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"user":     userID,
		"symbol":   q.Symbol,
		"shares":   shares,
		"proceeds": proceeds.String(),
	}).Info("sell executed")
	return nil
}

// Deposit credits cash to the account. The amount arrives as the raw form
// value; missing, non-numeric and non-positive amounts are rejected.
func (s *Service) Deposit(ctx context.Context, userID int64, amount string) error {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return apperr.E(apperr.Validation, "must provide amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return apperr.E(apperr.Validation, "must provide a positive amount")
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cash, err := s.store.CashBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := s.store.SetCashBalance(ctx, tx, userID, cash.Add(d)); err != nil {
			return err
		}
		_, err = s.store.AppendHistory(ctx, tx, models.HistoryEntry{
			UserID:     userID,
			Kind:       models.KindDeposit,
			Shares:     0,
			UnitPrice:  decimal.Zero,
			TotalPrice: d,
		})
		return err
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"user": userID, "amount": d.String()}).Info("deposit applied")
	return nil
}

// Portfolio prices every holding at the current quote. Provider failures
// for one symbol flag that row unavailable instead of zeroing it or
// failing the whole view.
func (s *Service) Portfolio(ctx context.Context, userID int64) (models.PortfolioResponse, error) {
	user, err := s.store.UserByID(ctx, s.store.DB(), userID)
	if err != nil {
		return models.PortfolioResponse{}, err
	}
	if user == nil {
		return models.PortfolioResponse{}, apperr.E(apperr.Authentication, "unknown user")
	}

	holdings, err := s.store.HoldingsByUser(ctx, s.store.DB(), userID)
	if err != nil {
		return models.PortfolioResponse{}, err
	}

	memo := quote.NewMemo(s.quotes)
	resp := models.PortfolioResponse{
		Rows:        make([]models.PortfolioRow, 0, len(holdings)),
		CashBalance: user.CashBalance,
		CashDisplay: quote.FormatUSD(user.CashBalance),
		TotalValue:  user.CashBalance,
	}

	for _, h := range holdings {
		row := models.PortfolioRow{Symbol: h.Symbol, Shares: h.Shares}

		q, err := memo.Lookup(ctx, h.Symbol)
		if err != nil {
			log.WithField("symbol", h.Symbol).WithError(err).Warn("portfolio quote unavailable")
			resp.Rows = append(resp.Rows, row)
			continue
		}

		row.Name = q.Name
		row.Price = q.Price
		row.PriceDisplay = quote.FormatUSD(q.Price)
		row.Value = q.Price.Mul(decimal.NewFromInt(h.Shares))
		row.ValueDisplay = quote.FormatUSD(row.Value)
		row.PriceAvailable = true
		resp.TotalValue = resp.TotalValue.Add(row.Value)
		resp.Rows = append(resp.Rows, row)
	}

	return resp, nil
}

// History lists the user's transactions oldest first, resolving display
// names for presentation only.
func (s *Service) History(ctx context.Context, userID int64) ([]models.HistoryRow, error) {
	entries, err := s.store.HistoryByUser(ctx, s.store.DB(), userID)
	if err != nil {
		return nil, err
	}

	memo := quote.NewMemo(s.quotes)
	rows := make([]models.HistoryRow, 0, len(entries))
	for _, e := range entries {
		row := models.HistoryRow{
			HistoryEntry: e,
			PriceDisplay: quote.FormatUSD(e.UnitPrice),
		}
		if e.Kind != models.KindDeposit {
			if q, err := memo.Lookup(ctx, e.Symbol); err == nil {
				row.Name = q.Name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// inTx runs fn in a transaction, retrying transient conflicts. Domain
// errors roll back and return as-is; exhausted retries become Internal.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
		}

		tx, err := s.store.BeginTx(ctx)
		if err != nil {
			lastErr = err
			if store.IsRetryable(err) {
				continue
			}
			return apperr.Wrap(apperr.Internal, err, "transaction failed")
		}

		if err := fn(tx); err != nil {
			tx.Rollback()
			if store.IsRetryable(err) {
				lastErr = err
				continue
			}
			if apperr.KindOf(err) != apperr.Internal {
				return err
			}
			return apperr.Wrap(apperr.Internal, err, "transaction failed")
		}

		if err := tx.Commit(); err != nil {
			lastErr = err
			if store.IsRetryable(err) {
				continue
			}
			return apperr.Wrap(apperr.Internal, err, "transaction commit failed")
		}
		return nil
	}
	return apperr.Wrap(apperr.Internal, lastErr, "transaction conflict, retries exhausted")
}
