package repositories

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
)

// UserRepository defines persistence operations for Users.
type UserRepository interface {
	// SaveUser inserts a new user. Returns apperrors.ErrDuplicate if the
	// username is already taken.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByID retrieves a user by ID.
	// Returns apperrors.ErrNotFound if unknown.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	// Returns apperrors.ErrNotFound if unknown.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
