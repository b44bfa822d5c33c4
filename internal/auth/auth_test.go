package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starc/internal/domain"
	"starc/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUsers is an in-memory UserRepository
type fakeUsers struct {
	byID       map[int64]*models.User
	byExternal map[string]*models.User
	nextID     int64
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*models.User{}, byExternal: map[string]*models.User{}, nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
}

func (f *fakeUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetOrCreateExternal(_ context.Context, externalID, email string) (*models.User, error) {
	if u, ok := f.byExternal[externalID]; ok {
		return u, nil
	}
	f.nextID++
	sub := externalID
	u := &models.User{ID: f.nextID, Username: "ext:" + externalID, Email: email, ExternalID: &sub}
	f.byID[u.ID] = u
	f.byExternal[externalID] = u
	return u, nil
}

// fakeRevoked is an in-memory RevokedTokenRepository
type fakeRevoked map[string]time.Time

func (f fakeRevoked) Add(_ context.Context, jti string) error {
	f[jti] = time.Now()
	return nil
}

func (f fakeRevoked) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f[jti]
	return ok, nil
}

func (f fakeRevoked) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for jti, at := range f {
		if at.Before(cutoff) {
			delete(f, jti)
			n++
		}
	}
	return n, nil
}

func TestLocalTokens_IssueAndVerify(t *testing.T) {
	tokens, err := NewLocalTokens("secret", time.Hour, testLogger())
	require.NoError(t, err)

	signed, ttl, err := tokens.Issue(&models.User{ID: 7, Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	claims, err := tokens.VerifyToken(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	// Each token gets its own jti
	other, _, err := tokens.Issue(&models.User{ID: 7})
	require.NoError(t, err)
	otherClaims, err := tokens.VerifyToken(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestLocalTokens_Rejects(t *testing.T) {
	tokens, err := NewLocalTokens("secret", time.Hour, testLogger())
	require.NoError(t, err)
	signed, _, err := tokens.Issue(&models.User{ID: 7})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewLocalTokens("other", time.Hour, testLogger())
		require.NoError(t, err)
		_, err = other.VerifyToken(context.Background(), signed)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err := tokens.VerifyToken(context.Background(), signed)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.VerifyToken(context.Background(), unsigned)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.VerifyToken(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNewLocalTokens_Validation(t *testing.T) {
	_, err := NewLocalTokens("", time.Hour, testLogger())
	assert.Error(t, err)
	_, err = NewLocalTokens("secret", 0, testLogger())
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", ""))
}

func TestAuthenticator_Local(t *testing.T) {
	tokens, err := NewLocalTokens("secret", time.Hour, testLogger())
	require.NoError(t, err)
	users := newFakeUsers(&models.User{ID: 7})
	revoked := fakeRevoked{}
	authn := NewAuthenticator(tokens, nil, users, revoked, testLogger())
	ctx := context.Background()

	signed, _, err := tokens.Issue(&models.User{ID: 7})
	require.NoError(t, err)

	principal, err := authn.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), principal.UserID)
	assert.False(t, principal.External)
	assert.False(t, principal.ExpiresAt.IsZero())

	require.NoError(t, revoked.Add(ctx, principal.TokenID))
	_, err = authn.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Token for an account that no longer exists
	ghost, _, err := tokens.Issue(&models.User{ID: 99})
	require.NoError(t, err)
	_, err = authn.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// rsaJWKS builds a one-key JWKS document for the given key
func rsaJWKS(t *testing.T, key *rsa.PrivateKey, kid string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)
	return raw
}

func TestAuthenticator_External(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks, err := keyfunc.NewJWKSetJSON(rsaJWKS(t, key, "kid-1"))
	require.NoError(t, err)
	external := newJWKSVerifier(jwks, testLogger())

	local, err := NewLocalTokens("secret", time.Hour, testLogger())
	require.NoError(t, err)
	users := newFakeUsers()
	authn := NewAuthenticator(local, external, users, fakeRevoked{}, testLogger())
	ctx := context.Background()

	sign := func(claims *models.AccessClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		token.Header["kid"] = "kid-1"
		signed, err := token.SignedString(key)
		require.NoError(t, err)
		return signed
	}

	claims := &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "ext@example.com",
	}

	first, err := authn.Authenticate(ctx, sign(claims))
	require.NoError(t, err)
	assert.True(t, first.External)

	second, err := authn.Authenticate(ctx, sign(claims))
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, "ext:auth0|abc", users.byID[first.UserID].Username)

	claims.Subject = ""
	_, err = authn.Authenticate(ctx, sign(claims))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Local tokens still work alongside the external verifier
	signed, _, err := local.Issue(users.byID[first.UserID])
	require.NoError(t, err)
	principal, err := authn.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.False(t, principal.External)
}
