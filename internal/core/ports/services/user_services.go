package services

import (
	"context"

	"github.com/finledge/stockfolio_backend/internal/core/domain"
)

// UserSvcFacade exposes user registration and lookup.
type UserSvcFacade interface {
	// Register creates a user with a hashed password and an account seeded
	// with the configured starting cash. Returns apperrors.ErrDuplicate if
	// the username is taken.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate verifies the credentials and returns the user.
	// Returns apperrors.ErrNotFound for unknown user or wrong password.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
