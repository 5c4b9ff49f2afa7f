package quote

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// HTTPProvider fetches quotes from an external API. The response shape is
// the common {symbol, companyName, latestPrice} quote endpoint.
type HTTPProvider struct {
	client *resty.Client
	apiKey string
}

// NewHTTPProvider builds a provider for the given base URL with a bounded
// per-request timeout. The timeout keeps a slow upstream from hanging
// request handlers.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond)

	return &HTTPProvider{client: client, apiKey: apiKey}
}

type quotePayload struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	LatestPrice float64 `json:"latestPrice"`
}

func (p *HTTPProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var payload quotePayload
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("token", p.apiKey).
		SetResult(&payload).
		Get("/stock/" + symbol + "/quote")
	if err != nil {
		return Quote{}, errors.Wrap(err, "quote lookup")
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return Quote{}, ErrNotFound
	case resp.IsError():
		return Quote{}, errors.Errorf("quote lookup: upstream status %d", resp.StatusCode())
	}

	if payload.Symbol == "" {
		return Quote{}, ErrNotFound
	}

	return Quote{
		Symbol: payload.Symbol,
		Name:   payload.CompanyName,
		Price:  decimal.NewFromFloat(payload.LatestPrice),
	}, nil
}
