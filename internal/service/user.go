package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"starc/internal/auth"
	"starc/internal/config"
	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[^:\s]+$`)
)

// accountService implements the AccountService interface
type accountService struct {
	userRepo    repositories.UserRepository
	revokedRepo repositories.RevokedTokenRepository
	issuer      auth.TokenIssuer
	logger      *slog.Logger
	now         func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo repositories.UserRepository,
	revokedRepo repositories.RevokedTokenRepository,
	issuer auth.TokenIssuer,
	logger *slog.Logger,
) services.AccountService {
	return &accountService{
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		issuer:      issuer,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a local user with a bcrypt password hash
func (s *accountService) Register(ctx context.Context, req *services.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required,
			validation.Length(1, config.MaxUsernameLength),
			validation.Match(usernamePattern).Error("must not contain spaces or colons"),
		),
		validation.Field(&req.Email,
			validation.Required,
			validation.Match(emailPattern).Error("must be a valid email address"),
		),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			// Registration reports duplicates as bad input
			return nil, &domain.ValidationError{Message: conflict.Message}
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login looks the identifier up as a username, then as an email
func (s *accountService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.LoginIdentifier, validation.Required),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	identifier := strings.TrimSpace(req.LoginIdentifier)
	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.UnauthorizedError{Message: "invalid credentials"}
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug("login failed", "user_id", user.ID)
		return nil, &domain.UnauthorizedError{Message: "invalid credentials"}
	}

	token, ttl, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &services.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// Logout revokes the caller's token and drops revocations past retention
func (s *accountService) Logout(ctx context.Context, principal *models.Principal) error {
	if principal == nil || principal.TokenID == "" {
		return &domain.UnauthorizedError{Message: "token cannot be revoked"}
	}

	if err := s.revokedRepo.Add(ctx, principal.TokenID); err != nil {
		return err
	}

	purged, err := s.revokedRepo.PurgeBefore(ctx, s.now().Add(-config.RevokedTokenRetention))
	if err != nil {
		// The token is already revoked; a failed purge is retried on the next logout
		s.logger.Warn("failed to purge revoked tokens", "error", err)
	}

	s.logger.Info("user logged out", "user_id", principal.UserID, "purged_revocations", purged)
	return nil
}
