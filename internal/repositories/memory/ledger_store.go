// Package memory provides an in-memory ledger store with the same atomic
// semantics as the pgsql repositories: every mutating operation on an
// account happens under that account's lock, all-or-nothing. It backs local
// runs without Postgres and the store-contract tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portsrepo "github.com/finledge/stockfolio_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Store holds accounts, users and trade records in memory.
//
// Concurrency model: mu guards the maps themselves; accountLocks carries one
// mutex per account, serializing mutations of that account exactly like the
// row lock the pgsql store takes. Operations on different accounts proceed
// in parallel.
type Store struct {
	mu           sync.RWMutex
	accountLocks map[string]*sync.Mutex

	users       map[string]domain.User // by user ID
	usersByName map[string]string      // username -> user ID

	accounts       map[string]domain.Account // by account ID
	accountsByUser map[string]string         // user ID -> account ID

	trades      map[string][]domain.TradeRecord // by account ID, insertion order
	nextTradeID int64
}

// NewStore creates an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		accountLocks:   make(map[string]*sync.Mutex),
		users:          make(map[string]domain.User),
		usersByName:    make(map[string]string),
		accounts:       make(map[string]domain.Account),
		accountsByUser: make(map[string]string),
		trades:         make(map[string][]domain.TradeRecord),
	}
}

var (
	_ portsrepo.AccountRepository = (*Store)(nil)
	_ portsrepo.TradeRepository   = (*Store)(nil)
	_ portsrepo.UserRepository    = (*Store)(nil)
)

// lockAccount returns the mutex serializing mutations of one account,
// creating it on first use.
func (s *Store) lockAccount(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.accountLocks[accountID]
	if !ok {
		m = &sync.Mutex{}
		s.accountLocks[accountID] = m
	}
	return m
}

// --- AccountRepository ---

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accountsByUser[account.UserID]; exists {
		return fmt.Errorf("%w: account for user %s already exists", apperrors.ErrDuplicate, account.UserID)
	}
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[account.AccountID] = account
	s.accountsByUser[account.UserID] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.accountsByUser[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	acc := s.accounts[accountID]
	return &acc, nil
}

func (s *Store) GetCash(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return acc.CashBalance, nil
}

func (s *Store) DepositCash(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: deposit amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	lock := s.lockAccount(accountID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	acc.CashBalance = acc.CashBalance.Add(amount)
	acc.LastUpdatedAt = time.Now().UTC()
	s.accounts[accountID] = acc
	return acc.CashBalance, nil
}

// --- TradeRepository ---

func (s *Store) ApplyTrade(ctx context.Context, accountID, symbol string, shareDelta int64, unitPrice decimal.Decimal) (*domain.TradeRecord, error) {
	lock := s.lockAccount(accountID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	if shareDelta < 0 {
		held := s.positionLocked(accountID, symbol)
		if -shareDelta > held {
			return nil, fmt.Errorf("%w: tried to sell %d shares of %s, holding %d", apperrors.ErrInsufficientShares, -shareDelta, symbol, held)
		}
	}

	cashDelta := unitPrice.Mul(decimal.NewFromInt(shareDelta)).Neg()
	newBalance := acc.CashBalance.Add(cashDelta)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, trade requires %s", apperrors.ErrInsufficientFunds, acc.CashBalance.String(), cashDelta.Neg().String())
	}

	s.nextTradeID++
	record := domain.TradeRecord{
		TradeID:    s.nextTradeID,
		AccountID:  accountID,
		Symbol:     symbol,
		ShareDelta: shareDelta,
		UnitPrice:  unitPrice,
		ExecutedAt: time.Now().UTC(),
	}

	acc.CashBalance = newBalance
	acc.LastUpdatedAt = record.ExecutedAt
	s.accounts[accountID] = acc
	s.trades[accountID] = append(s.trades[accountID], record)
	return &record, nil
}

func (s *Store) ListPositions(ctx context.Context, accountID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, t := range s.trades[accountID] {
		totals[t.Symbol] += t.ShareDelta
	}
	for symbol, total := range totals {
		if total <= 0 {
			delete(totals, symbol)
		}
	}
	return totals, nil
}

func (s *Store) ListHistory(ctx context.Context, accountID string) ([]domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.trades[accountID]
	history := make([]domain.TradeRecord, len(records))
	copy(history, records)
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].ExecutedAt.Equal(history[j].ExecutedAt) {
			return history[i].ExecutedAt.Before(history[j].ExecutedAt)
		}
		return history[i].TradeID < history[j].TradeID
	})
	return history, nil
}

func (s *Store) PositionFor(ctx context.Context, accountID, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positionLocked(accountID, symbol), nil
}

// positionLocked sums share deltas for one symbol. Caller holds mu.
func (s *Store) positionLocked(accountID, symbol string) int64 {
	var total int64
	for _, t := range s.trades[accountID] {
		if t.Symbol == symbol {
			total += t.ShareDelta
		}
	}
	return total
}

// --- UserRepository ---

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByName[user.Username]; exists {
		return fmt.Errorf("%w: username %s is already taken", apperrors.ErrDuplicate, user.Username)
	}
	s.users[user.UserID] = user
	s.usersByName[user.Username] = user.UserID
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.usersByName[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u := s.users[userID]
	return &u, nil
}
