package auth

import (
	"context"
	"time"

	"starc/internal/domain/models"
)

// TokenVerifier defines the interface for bearer token verification.
// Implementations only check the signature and registered claims;
// mapping the subject to a local user is done by Authenticator.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(ctx context.Context, tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}

// TokenIssuer signs access tokens for local users
type TokenIssuer interface {
	// Issue returns a signed token for the user and its lifetime
	Issue(user *models.User) (string, time.Duration, error)
}
