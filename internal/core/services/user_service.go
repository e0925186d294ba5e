package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finledge/stockfolio_backend/internal/apperrors"
	"github.com/finledge/stockfolio_backend/internal/core/domain"
	portsrepo "github.com/finledge/stockfolio_backend/internal/core/ports/repositories"
	portssvc "github.com/finledge/stockfolio_backend/internal/core/ports/services"
	"github.com/finledge/stockfolio_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// userServiceImpl implements the UserSvcFacade interface.
type userServiceImpl struct {
	BaseService
	userRepo     portsrepo.UserRepository
	accountRepo  portsrepo.AccountRepository
	startingCash decimal.Decimal
}

// NewUserService creates a new user service. Every registered user gets an
// account seeded with startingCash.
func NewUserService(userRepo portsrepo.UserRepository, accountRepo portsrepo.AccountRepository, startingCash decimal.Decimal) portssvc.UserSvcFacade {
	return &userServiceImpl{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		startingCash: startingCash,
	}
}

// Ensure userServiceImpl implements the UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userServiceImpl)(nil)

func (s *userServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", apperrors.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		}
		return nil, err
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      user.UserID,
		CashBalance: s.startingCash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to create account for new user",
			slog.String("user_id", user.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "User registered",
		slog.String("user_id", user.UserID),
		slog.String("account_id", account.AccountID))
	return &user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		// Indistinguishable from an unknown username on purpose.
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
