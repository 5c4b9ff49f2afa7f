package quote

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// SimProvider serves quotes for a fixed universe of symbols whose prices
// follow a random walk. It lets the whole service run without an external
// quote API.
type SimProvider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	names  map[string]string
	prices map[string]float64
}

// NewSimProvider seeds the simulated universe.
func NewSimProvider() *SimProvider {
	return &SimProvider{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		names: map[string]string{
			"AAPL":  "Apple Inc.",
			"GOOGL": "Alphabet Inc.",
			"MSFT":  "Microsoft Corporation",
			"TSLA":  "Tesla Inc.",
			"AMZN":  "Amazon.com Inc.",
		},
		prices: map[string]float64{
			"AAPL":  150.00,
			"GOOGL": 140.00,
			"MSFT":  380.00,
			"TSLA":  250.00,
			"AMZN":  180.00,
		},
	}
}

func (p *SimProvider) Lookup(_ context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.prices[symbol]
	if !ok {
		return Quote{}, ErrNotFound
	}
	return Quote{
		Symbol: symbol,
		Name:   p.names[symbol],
		Price:  decimal.NewFromFloat(price).Round(2),
	}, nil
}

// PriceUpdate is one step of the simulated walk, as sent on the price
// stream.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Timestamp time.Time `json:"timestamp"`
}

// Tick moves one random symbol by -2%..+2% and reports the step.
func (p *SimProvider) Tick() PriceUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbols := make([]string, 0, len(p.prices))
	for s := range p.prices {
		symbols = append(symbols, s)
	}
	symbol := symbols[p.rng.Intn(len(symbols))]

	changePercent := (p.rng.Float64() - 0.5) * 4
	p.prices[symbol] *= 1 + changePercent/100

	return PriceUpdate{
		Symbol:    symbol,
		Price:     p.prices[symbol],
		Change:    changePercent,
		Timestamp: time.Now(),
	}
}
