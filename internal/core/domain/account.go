package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a user's brokerage account within the core domain.
// This is the primary representation used by services.
//
// CashBalance is never negative: every mutation goes through the ledger
// store's atomic apply, which rejects any change that would take it below
// zero.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	UserID      string          `json:"userID"`    // FK -> users.user_id (one account per user)
	CashBalance decimal.Decimal `json:"cashBalance"`
	AuditFields
}
