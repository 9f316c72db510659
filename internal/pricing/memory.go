// Package pricing provides the quote feed implementations the engine reads
// from. The catalog service writes quotes; the engine only reads.
package pricing

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// MemorySource holds quotes in a map. Used for development and tests; a
// feed (or test) pushes quotes in through SetQuote.
type MemorySource struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		quotes: make(map[string]models.Quote),
	}
}

func (s *MemorySource) SetQuote(quote models.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.Ticker] = quote
}

func (s *MemorySource) GetQuote(ctx context.Context, ticker string) (models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[ticker]
	if !ok {
		return models.Quote{}, errs.NotFound("no quote for ticker %q", ticker)
	}
	return quote, nil
}

var _ interfaces.PriceSource = (*MemorySource)(nil)
