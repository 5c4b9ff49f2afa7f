package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// History entry kinds.
const (
	KindBuy     = "BUY"
	KindSell    = "SELL"
	KindDeposit = "DEPOSIT"
)

// User represents a registered account.
type User struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	CredentialHash string          `json:"-"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Holding is a user's current position in one symbol.
// One row per (user_id, symbol).
type Holding struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is an immutable record of one buy, sell or deposit.
// Shares, UnitPrice and TotalPrice are signed: positive for buys,
// negative for sells. Deposit rows carry no symbol and zero shares.
type HistoryEntry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Kind       string          `json:"kind"`
	Symbol     string          `json:"symbol,omitempty"`
	Shares     int64           `json:"shares"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Session maps an opaque token to a user.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// RegisterRequest - what client sends to register.
type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

// LoginRequest - what client sends to log in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TradeRequest - what client sends to buy or sell shares.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// DepositRequest - what client sends to add cash.
type DepositRequest struct {
	Amount string `json:"amount"`
}

// PortfolioRow is one holding priced at the current quote. When the
// provider cannot price the symbol, PriceAvailable is false and the
// price/value fields are omitted rather than zeroed.
type PortfolioRow struct {
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name,omitempty"`
	Shares         int64           `json:"shares"`
	Price          decimal.Decimal `json:"price,omitempty"`
	PriceDisplay   string          `json:"price_display,omitempty"`
	Value          decimal.Decimal `json:"value,omitempty"`
	ValueDisplay   string          `json:"value_display,omitempty"`
	PriceAvailable bool            `json:"price_available"`
}

// PortfolioResponse - what we send back for the portfolio view.
type PortfolioResponse struct {
	Rows        []PortfolioRow  `json:"rows"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	CashDisplay string          `json:"cash_display"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// HistoryRow is one history entry with the display name resolved for
// presentation. Name is empty when the provider no longer knows the symbol.
type HistoryRow struct {
	HistoryEntry
	Name         string `json:"name,omitempty"`
	PriceDisplay string `json:"price_display"`
}
