package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portsrepo "github.com/finledge/stockfolio_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for account data.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, user_id, cash_balance, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.CashBalance,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account for user %s already exists", apperrors.ErrDuplicate, account.UserID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE account_id = $1`, accountID)
}

// FindAccountByUserID retrieves the account owned by the given user.
func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE user_id = $1`, userID)
}

func (r *PgxAccountRepository) findAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `
		SELECT account_id, user_id, cash_balance, created_at, last_updated_at
		FROM accounts ` + where + `;`

	var acc domain.Account
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&acc.AccountID,
		&acc.UserID,
		&acc.CashBalance,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &acc, nil
}

// GetCash returns the current cash balance of the account.
func (r *PgxAccountRepository) GetCash(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `SELECT cash_balance FROM accounts WHERE account_id = $1;`

	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get cash for account %s: %w", accountID, err)
	}
	return balance, nil
}

// DepositCash atomically increases the account balance and returns the new
// balance. The single UPDATE keeps concurrent deposits and trades serialized
// on the account row.
func (r *PgxAccountRepository) DepositCash(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: deposit amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	query := `
		UPDATE accounts
		SET cash_balance = cash_balance + $2,
		    last_updated_at = $3
		WHERE account_id = $1
		RETURNING cash_balance;
	`
	var newBalance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID, amount, time.Now().UTC()).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to deposit into account %s: %w", accountID, err)
	}
	return newBalance, nil
}
