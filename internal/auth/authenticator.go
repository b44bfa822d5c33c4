package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// Authenticator turns a bearer token into the calling Principal.
// Local HS256 tokens are always accepted; tokens signed with an
// asymmetric algorithm go to the external verifier when one is configured.
type Authenticator struct {
	local    TokenVerifier
	external TokenVerifier
	users    repositories.UserRepository
	revoked  repositories.RevokedTokenRepository
	logger   *slog.Logger
}

// NewAuthenticator creates an authenticator. external may be nil.
func NewAuthenticator(
	local TokenVerifier,
	external TokenVerifier,
	users repositories.UserRepository,
	revoked repositories.RevokedTokenRepository,
	logger *slog.Logger,
) *Authenticator {
	return &Authenticator{
		local:    local,
		external: external,
		users:    users,
		revoked:  revoked,
		logger:   logger,
	}
}

// Authenticate verifies the token, rejects revoked ones and resolves the local user id
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*models.Principal, error) {
	alg, err := tokenAlgorithm(tokenString)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	var principal *models.Principal
	if alg == jwt.SigningMethodHS256.Alg() || a.external == nil {
		principal, err = a.authenticateLocal(ctx, tokenString)
	} else {
		principal, err = a.authenticateExternal(ctx, tokenString)
	}
	if err != nil {
		return nil, err
	}

	if principal.TokenID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, principal.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			a.logger.Debug("revoked token presented", "user_id", principal.UserID)
			return nil, &domain.UnauthorizedError{Message: "token has been revoked"}
		}
	}

	return principal, nil
}

func (a *Authenticator) authenticateLocal(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := a.local.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	// Tokens outlive deleted accounts
	if _, err := a.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return principalFromClaims(userID, claims, false), nil
}

func (a *Authenticator) authenticateExternal(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := a.external.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetOrCreateExternal(ctx, claims.Subject, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve external user: %w", err)
	}

	return principalFromClaims(user.ID, claims, true), nil
}

func principalFromClaims(userID int64, claims *models.AccessClaims, external bool) *models.Principal {
	p := &models.Principal{
		UserID:   userID,
		TokenID:  claims.ID,
		External: external,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p
}

// tokenAlgorithm reads the alg header without verifying the signature
func tokenAlgorithm(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &models.AccessClaims{})
	if err != nil {
		return "", err
	}
	return token.Method.Alg(), nil
}

// Close releases both verifiers
func (a *Authenticator) Close() error {
	if a.external != nil {
		if err := a.external.Close(); err != nil {
			return err
		}
	}
	return a.local.Close()
}
