package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one immutable line in an account's trade history.
//
// ShareDelta is positive for an acquisition and negative for a disposal.
// Records are append-only: corrections happen by inserting offsetting
// records, never by update or delete. The current position in a symbol is
// always the sum of ShareDelta over the account's records for that symbol.
type TradeRecord struct {
	TradeID    int64           `json:"tradeID"`   // Monotonically increasing, assigned at insertion
	AccountID  string          `json:"accountID"` // FK -> accounts.account_id
	Symbol     string          `json:"symbol"`    // Ticker, normalized to uppercase
	ShareDelta int64           `json:"shareDelta"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`  // Price per share at execution, > 0
	ExecutedAt time.Time       `json:"executedAt"` // Set by the store, immutable
}

// CashDelta returns the cash-balance adjustment this record carries:
// -ShareDelta * UnitPrice. A buy debits cash, a sell credits it, so cash
// and trade history stay two views of the same balanced ledger.
func (t TradeRecord) CashDelta() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(t.ShareDelta)).Neg()
}

// NetShares sums the share deltas of the given records. Passing the full
// history of one (account, symbol) pair yields the current position.
func NetShares(records []TradeRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.ShareDelta
	}
	return total
}
