package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portsrepo "github.com/finledge/stockfolio_backend/internal/core/ports/repositories"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/finledge/stockfolio_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// portfolioServiceImpl is the portfolio ledger engine. It holds no state of
// its own: every operation is a validated translation of a user intent into
// ledger store operations, priced through the quote provider.
//
// The quote provider is never called while the store holds a lock; for
// sells, share sufficiency is checked first (store-local, fast), then the
// price is fetched, then the trade is applied. The store re-verifies the
// position inside its atomic apply, so concurrent sells cannot both drain
// the same shares.
type portfolioServiceImpl struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	tradeRepo   portsrepo.TradeRepository
	quotes      portssvc.QuoteProvider
}

// NewPortfolioService creates the portfolio ledger engine.
func NewPortfolioService(accountRepo portsrepo.AccountRepository, tradeRepo portsrepo.TradeRepository, quotes portssvc.QuoteProvider) portssvc.PortfolioSvcFacade {
	return &portfolioServiceImpl{
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		quotes:      quotes,
	}
}

// Ensure portfolioServiceImpl implements the PortfolioSvcFacade interface
var _ portssvc.PortfolioSvcFacade = (*portfolioServiceImpl)(nil)

// normalizeOrder validates the common buy/sell preconditions and returns
// the normalized symbol. No store call is made on failure.
func normalizeOrder(symbol string, quantity int64) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("%w: symbol must not be empty", apperrors.ErrValidation)
	}
	if quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be a positive integer, got %d", apperrors.ErrValidation, quantity)
	}
	return symbol, nil
}

func (s *portfolioServiceImpl) Buy(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error) {
	symbol, err := normalizeOrder(symbol, quantity)
	if err != nil {
		return decimal.Zero, err
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		s.LogDebug(ctx, "Quote lookup failed for buy",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()))
		return decimal.Zero, err
	}

	record, err := s.tradeRepo.ApplyTrade(ctx, accountID, quote.Symbol, quantity, quote.Price)
	if err != nil {
		return decimal.Zero, err
	}

	s.LogInfo(ctx, "Buy executed",
		slog.String("account_id", accountID),
		slog.String("symbol", record.Symbol),
		slog.Int64("shares", quantity),
		slog.String("unit_price", record.UnitPrice.String()))

	balance, err := s.accountRepo.GetCash(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("trade committed but balance read failed: %w", err)
	}
	return utils.RoundCurrency(balance), nil
}

func (s *portfolioServiceImpl) Sell(ctx context.Context, accountID, symbol string, quantity int64) (decimal.Decimal, error) {
	symbol, err := normalizeOrder(symbol, quantity)
	if err != nil {
		return decimal.Zero, err
	}

	// Check share sufficiency before the externally-latent quote call; the
	// store rechecks under its lock when the trade is applied.
	held, err := s.tradeRepo.PositionFor(ctx, accountID, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if quantity > held {
		return decimal.Zero, fmt.Errorf("%w: tried to sell %d shares of %s, holding %d", apperrors.ErrInsufficientShares, quantity, symbol, held)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		// A position can persist even when the provider can no longer
		// price the symbol; the sale fails here, the holding stays.
		s.LogDebug(ctx, "Quote lookup failed for sell",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()))
		return decimal.Zero, err
	}

	record, err := s.tradeRepo.ApplyTrade(ctx, accountID, quote.Symbol, -quantity, quote.Price)
	if err != nil {
		return decimal.Zero, err
	}

	s.LogInfo(ctx, "Sell executed",
		slog.String("account_id", accountID),
		slog.String("symbol", record.Symbol),
		slog.Int64("shares", quantity),
		slog.String("unit_price", record.UnitPrice.String()))

	balance, err := s.accountRepo.GetCash(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("trade committed but balance read failed: %w", err)
	}
	return utils.RoundCurrency(balance), nil
}

func (s *portfolioServiceImpl) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: deposit amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	newBalance, err := s.accountRepo.DepositCash(ctx, accountID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	s.LogInfo(ctx, "Cash deposited",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()))
	return utils.RoundCurrency(newBalance), nil
}

func (s *portfolioServiceImpl) GetHoldings(ctx context.Context, accountID string) (*domain.Portfolio, error) {
	positions, err := s.tradeRepo.ListPositions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	cash, err := s.accountRepo.GetCash(ctx, accountID)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{
		Holdings: make([]domain.Holding, 0, len(symbols)),
		Cash:     utils.RoundCurrency(cash),
	}
	grandTotal := cash

	for _, symbol := range symbols {
		quote, err := s.quotes.Lookup(ctx, symbol)
		if err != nil {
			// Valuation needs a live price for every holding; one failure
			// fails the whole call.
			return nil, fmt.Errorf("%w: pricing holding %s: %v", apperrors.ErrQuoteUnavailable, symbol, err)
		}

		shares := positions[symbol]
		lineTotal := quote.Price.Mul(decimal.NewFromInt(shares))
		portfolio.Holdings = append(portfolio.Holdings, domain.Holding{
			Symbol:    symbol,
			Name:      quote.Name,
			Shares:    shares,
			UnitValue: utils.RoundCurrency(quote.Price),
			LineTotal: utils.RoundCurrency(lineTotal),
		})
		grandTotal = grandTotal.Add(lineTotal)
	}

	portfolio.GrandTotal = utils.RoundCurrency(grandTotal)
	return portfolio, nil
}

func (s *portfolioServiceImpl) GetHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error) {
	history, err := s.tradeRepo.ListHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for i := range history {
		history[i].UnitPrice = utils.RoundCurrency(history[i].UnitPrice)
	}
	return history, nil
}

func (s *portfolioServiceImpl) ListSellable(ctx context.Context, accountID string) ([]string, error) {
	positions, err := s.tradeRepo.ListPositions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *portfolioServiceImpl) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", apperrors.ErrValidation)
	}

	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	quote.Price = utils.RoundCurrency(quote.Price)
	return quote, nil
}

func (s *portfolioServiceImpl) AccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account, nil
}
