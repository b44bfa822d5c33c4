package repositories

import (
	"context"
	"time"

	"starc/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a new user and fills ID and CreatedAt
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by exact username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail retrieves a user by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetOrCreateExternal maps an external identity subject to a local user,
	// creating the row on first sight
	GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error)
}

// RevokedTokenRepository stores ids of logged-out tokens
type RevokedTokenRepository interface {
	// Add records a revoked token id. Adding the same id twice is not an error.
	Add(ctx context.Context, jti string) error

	// IsRevoked reports whether the token id has been revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeBefore removes entries revoked before the cutoff and returns how many were removed
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
