package services

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
)

// QuoteProvider resolves a ticker symbol to a live quote.
//
// Implementations are network-latent and may fail. Lookup must distinguish
// "no such ticker" (apperrors.ErrUnknownSymbol) from "provider reachable but
// failed or timed out" (apperrors.ErrQuoteUnavailable); callers retry
// neither internally.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*domain.Quote, error)
}
