package services

import (
	"context"

	"starc/internal/domain/models"
)

// AccountService handles registration, login and logout
type AccountService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)

	// Login verifies credentials and returns a signed access token
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// Logout revokes the caller's token
	Logout(ctx context.Context, principal *models.Principal) error
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request. LoginIdentifier is a username or an email.
type LoginRequest struct {
	LoginIdentifier string `json:"login_identifier"`
	Password        string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
