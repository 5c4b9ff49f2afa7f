package quote

import "context"

// Memo caches lookups for the life of one request, so portfolio and
// history views hit the provider at most once per distinct symbol. Not
// safe for concurrent use; build one per request.
type Memo struct {
	provider Provider
	quotes   map[string]Quote
	misses   map[string]error
}

func NewMemo(p Provider) *Memo {
	return &Memo{
		provider: p,
		quotes:   make(map[string]Quote),
		misses:   make(map[string]error),
	}
}

func (m *Memo) Lookup(ctx context.Context, symbol string) (Quote, error) {
	if q, ok := m.quotes[symbol]; ok {
		return q, nil
	}
	if err, ok := m.misses[symbol]; ok {
		return Quote{}, err
	}

	q, err := m.provider.Lookup(ctx, symbol)
	if err != nil {
		m.misses[symbol] = err
		return Quote{}, err
	}
	m.quotes[symbol] = q
	return q, nil
}
