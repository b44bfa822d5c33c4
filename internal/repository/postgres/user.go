package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const userColumns = `id, username, email, password_hash, external_id, created_at`

// Create inserts a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, email, password_hash, external_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ExternalID,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return r.conflictFor(err)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// conflictFor names the colliding field from the violated constraint
func (r *PostgresUserRepository) conflictFor(err error) error {
	constraint := DuplicateConstraint(err)
	switch {
	case strings.Contains(constraint, "username"):
		return &domain.ConflictError{Message: "username already exists", ResourceType: "user", Field: "username"}
	case strings.Contains(constraint, "email"):
		return &domain.ConflictError{Message: "email already registered", ResourceType: "user", Field: "email"}
	default:
		return &domain.ConflictError{Message: "user already exists", ResourceType: "user"}
	}
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)
	return r.getOne(ctx, query, fmt.Sprintf("user %d", id), id)
}

// GetByUsername retrieves a user by exact username
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, userColumns, r.tables.Users)
	return r.getOne(ctx, query, fmt.Sprintf("user '%s'", username), username)
}

// GetByEmail retrieves a user by email, ignoring case
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(email) = LOWER($1)`, userColumns, r.tables.Users)
	return r.getOne(ctx, query, fmt.Sprintf("user with email '%s'", email), email)
}

// GetOrCreateExternal maps an external subject to a local user row
func (r *PostgresUserRepository) GetOrCreateExternal(ctx context.Context, externalID, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE external_id = $1`, userColumns, r.tables.Users)
	user, err := r.getOne(ctx, query, "external user", externalID)
	if err == nil {
		return user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	// ON CONFLICT keeps concurrent first requests from racing into a 23505
	insert := fmt.Sprintf(`
		INSERT INTO %s (username, email, external_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET email = EXCLUDED.email
		RETURNING %s
	`, r.tables.Users, userColumns)

	executor := GetExecutor(ctx, r.pool)
	user = &models.User{}
	err = executor.QueryRow(ctx, insert, "ext:"+externalID, email, externalID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ExternalID,
		&user.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return nil, r.conflictFor(err)
		}
		return nil, fmt.Errorf("create external user: %w", err)
	}

	r.logger.Info("external user provisioned", "user_id", user.ID)
	return user, nil
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query, what string, arg any) (*models.User, error) {
	var user models.User
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ExternalID,
		&user.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s: %w", what, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// PostgresRevokedTokenRepository implements the RevokedTokenRepository interface
type PostgresRevokedTokenRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(config *RepositoryConfig) repositories.RevokedTokenRepository {
	return &PostgresRevokedTokenRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Add records a revoked token id
func (r *PostgresRevokedTokenRepository) Add(ctx context.Context, jti string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (jti) VALUES ($1)
		ON CONFLICT (jti) DO NOTHING
	`, r.tables.RevokedTokens)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, jti); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked
func (r *PostgresRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE jti = $1)`, r.tables.RevokedTokens)

	var revoked bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// PurgeBefore removes entries revoked before the cutoff
func (r *PostgresRevokedTokenRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE revoked_at < $1`, r.tables.RevokedTokens)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
