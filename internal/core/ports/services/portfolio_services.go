package services

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PortfolioSvcFacade exposes the portfolio ledger engine operations.
//
// Every operation is a single synchronous transition from one consistent
// ledger state to another, or a failure that leaves stored state exactly as
// before the call. The accountID is supplied by the authenticated caller
// and trusted completely.
type PortfolioSvcFacade interface {
	// Buy acquires quantity shares of symbol at the live price and returns
	// the new cash balance.
	Buy(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error)

	// Sell disposes of quantity shares of symbol at the live price and
	// returns the new cash balance.
	Sell(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error)

	// Deposit adds cash to the account and returns the new balance.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// GetHoldings values every current position at live prices.
	GetHoldings(ctx context.Context, accountID string) (*domain.Portfolio, error)

	// GetHistory returns the account's ordered trade history.
	GetHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error)

	// ListSellable returns the symbols the account can currently sell,
	// sorted ascending.
	ListSellable(ctx context.Context, accountID string) ([]string, error)

	// Quote passes a symbol lookup through to the quote provider.
	Quote(ctx context.Context, symbol string) (*domain.Quote, error)

	// AccountForUser resolves the account owned by userID.
	AccountForUser(ctx context.Context, userID string) (*domain.Account, error)
}
