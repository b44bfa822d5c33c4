package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims carried by tokens this service issues.
// Externally issued tokens are parsed into the same struct; only the
// registered claims and Email are read from them.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID    int64
	TokenID   string    // jti, empty for tokens that carry none
	ExpiresAt time.Time // zero if the token has no exp claim
	External  bool      // true when the token was verified against a JWKS
}

// RevokedToken records a logged-out token id.
type RevokedToken struct {
	ID        int64     `json:"id"`
	JTI       string    `json:"jti"`
	RevokedAt time.Time `json:"revoked_at"`
}
