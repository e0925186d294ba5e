package repositories

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the persistence operations for Accounts.
type AccountRepository interface {
	// SaveAccount inserts a new account. Returns apperrors.ErrDuplicate if an
	// account already exists for the owning user.
	SaveAccount(ctx context.Context, account domain.Account) error

	// FindAccountByID retrieves an account by its ID.
	// Returns apperrors.ErrNotFound if the account is unknown.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByUserID retrieves the account owned by the given user.
	// Returns apperrors.ErrNotFound if the user has no account.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// GetCash returns the current cash balance of the account.
	// Returns apperrors.ErrNotFound if the account is unknown.
	GetCash(ctx context.Context, accountID string) (decimal.Decimal, error)

	// DepositCash atomically increases the account balance by amount and
	// returns the new balance. Amount must be positive; the repository
	// returns apperrors.ErrValidation otherwise.
	DepositCash(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
}
