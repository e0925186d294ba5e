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

type PgxTradeRepository struct {
	BaseRepository
}

// NewTradeRepository creates a new repository for the append-only trade ledger.
func NewTradeRepository(pool *pgxpool.Pool) portsrepo.TradeRepository {
	return &PgxTradeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTradeRepository implements portsrepo.TradeRepository
var _ portsrepo.TradeRepository = (*PgxTradeRepository)(nil)

// ApplyTrade adjusts the cash balance and appends one trade record inside a
// single database transaction.
//
// The account row is locked with SELECT ... FOR UPDATE first, so all
// mutations of one account serialize on that row. The position recheck for
// disposals runs under that lock, which closes the race between two
// concurrent sells of the same shares. Operations on different accounts
// never contend.
func (r *PgxTradeRepository) ApplyTrade(ctx context.Context, accountID, symbol string, shareDelta int64, unitPrice decimal.Decimal) (*domain.TradeRecord, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// Ignored after a successful commit.
	defer r.Rollback(ctx, tx)

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT cash_balance FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}

	if shareDelta < 0 {
		// Re-verify the position while holding the account lock. Every
		// mutating operation takes the same lock, so the aggregate cannot
		// change underneath us.
		var held int64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(share_delta), 0) FROM trades WHERE account_id = $1 AND symbol = $2;`,
			accountID, symbol,
		).Scan(&held)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate position for account %s symbol %s: %w", accountID, symbol, err)
		}
		if -shareDelta > held {
			return nil, fmt.Errorf("%w: tried to sell %d shares of %s, holding %d", apperrors.ErrInsufficientShares, -shareDelta, symbol, held)
		}
	}

	cashDelta := unitPrice.Mul(decimal.NewFromInt(shareDelta)).Neg()
	newBalance := balance.Add(cashDelta)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, trade requires %s", apperrors.ErrInsufficientFunds, balance.String(), cashDelta.Neg().String())
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET cash_balance = $2, last_updated_at = $3 WHERE account_id = $1;`,
		accountID, newBalance, time.Now().UTC(),
	)
	if err != nil {
		// The schema carries CHECK (cash_balance >= 0) as a last line of
		// defense; map it onto the same failure the pre-check returns.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" { // Check violation
			return nil, apperrors.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}

	record := domain.TradeRecord{
		AccountID:  accountID,
		Symbol:     symbol,
		ShareDelta: shareDelta,
		UnitPrice:  unitPrice,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO trades (account_id, symbol, share_delta, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING trade_id, executed_at;
	`, accountID, symbol, shareDelta, unitPrice).Scan(&record.TradeID, &record.ExecutedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trade record for account %s: %w", accountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPositions aggregates all records of the account into net shares per
// symbol, filtered to positions greater than zero.
func (r *PgxTradeRepository) ListPositions(ctx context.Context, accountID string) (map[string]int64, error) {
	query := `
		SELECT symbol, SUM(share_delta) AS total_shares
		FROM trades
		WHERE account_id = $1
		GROUP BY symbol
		HAVING SUM(share_delta) > 0;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	positions := make(map[string]int64)
	for rows.Next() {
		var symbol string
		var total int64
		if err := rows.Scan(&symbol, &total); err != nil {
			return nil, fmt.Errorf("failed to scan position row for account %s: %w", accountID, err)
		}
		positions[symbol] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows for account %s: %w", accountID, err)
	}
	return positions, nil
}

// ListHistory returns the account's trade records ordered by execution time
// ascending, ties broken by trade ID.
func (r *PgxTradeRepository) ListHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error) {
	query := `
		SELECT trade_id, account_id, symbol, share_delta, unit_price, executed_at
		FROM trades
		WHERE account_id = $1
		ORDER BY executed_at ASC, trade_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for account %s: %w", accountID, err)
	}
	defer rows.Close()

	history := []domain.TradeRecord{}
	for rows.Next() {
		var t domain.TradeRecord
		if err := rows.Scan(
			&t.TradeID,
			&t.AccountID,
			&t.Symbol,
			&t.ShareDelta,
			&t.UnitPrice,
			&t.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade row for account %s: %w", accountID, err)
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows for account %s: %w", accountID, err)
	}
	return history, nil
}

// PositionFor returns the net shares the account holds in symbol.
func (r *PgxTradeRepository) PositionFor(ctx context.Context, accountID, symbol string) (int64, error) {
	query := `SELECT COALESCE(SUM(share_delta), 0) FROM trades WHERE account_id = $1 AND symbol = $2;`

	var total int64
	if err := r.Pool.QueryRow(ctx, query, accountID, symbol).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to aggregate position for account %s symbol %s: %w", accountID, symbol, err)
	}
	return total, nil
}
