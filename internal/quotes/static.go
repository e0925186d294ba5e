package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Static serves quotes from a fixed in-memory table. Used for development
// runs without a provider and as a test double.
type Static struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

var _ portssvc.QuoteProvider = (*Static)(nil)

// NewStatic creates a static provider seeded with a handful of well known
// tickers.
func NewStatic() *Static {
	s := &Static{quotes: make(map[string]domain.Quote)}
	s.Set("AAPL", "Apple Inc.", decimal.NewFromFloat(189.30))
	s.Set("MSFT", "Microsoft Corporation", decimal.NewFromFloat(415.50))
	s.Set("GOOG", "Alphabet Inc.", decimal.NewFromFloat(172.10))
	s.Set("NFLX", "Netflix, Inc.", decimal.NewFromFloat(640.00))
	return s
}

// Set adds or replaces a quote.
func (s *Static) Set(symbol, name string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbol = strings.ToUpper(symbol)
	s.quotes[symbol] = domain.Quote{Symbol: symbol, Name: name, Price: price}
}

// Lookup resolves a symbol from the table.
func (s *Static) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", apperrors.ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSymbol, symbol)
	}
	return &q, nil
}
