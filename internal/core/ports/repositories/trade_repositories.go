package repositories

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TradeRepository defines the persistence operations for the append-only
// trade ledger.
//
// ApplyTrade is the single mutating entry point for trades and must be
// atomic: it either applies both the cash adjustment and the record insert,
// or applies nothing. Implementations must serialize mutations per account
// so that two concurrent operations on the same account never interleave.
type TradeRepository interface {
	// ApplyTrade adjusts the account cash balance by -shareDelta*unitPrice
	// and appends one trade record, as one atomic unit of work.
	//
	// Returns apperrors.ErrNotFound if the account is unknown,
	// apperrors.ErrInsufficientFunds if the resulting balance would be
	// negative, and apperrors.ErrInsufficientShares if a disposal
	// (shareDelta < 0) exceeds the position held at apply time.
	ApplyTrade(ctx context.Context, accountID, symbol string, shareDelta int64, unitPrice decimal.Decimal) (*domain.TradeRecord, error)

	// ListPositions aggregates the account's records into net shares per
	// symbol, filtered to positions greater than zero.
	ListPositions(ctx context.Context, accountID string) (map[string]int64, error)

	// ListHistory returns the account's trade records ordered by execution
	// time ascending, ties broken by trade ID ascending.
	ListHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error)

	// PositionFor returns the net shares the account holds in symbol,
	// zero when no records exist.
	PositionFor(ctx context.Context, accountID, symbol string) (int64, error)
}
