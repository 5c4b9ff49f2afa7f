// Package quote resolves ticker symbols to current prices and display
// names, either from an external quote API or from the built-in simulator.
package quote

import (
	"context"
	"errors"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrNotFound signals the provider does not know the symbol.
var ErrNotFound = errors.New("unknown symbol")

// Quote is one priced symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Provider maps a ticker symbol to its current quote. Implementations must
// be safe for concurrent use and must respect ctx deadlines; lookups
// against an external service are expected to be slow and fallible.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// FormatUSD renders a price for display, e.g. "$1,234.50".
func FormatUSD(d decimal.Decimal) string {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
