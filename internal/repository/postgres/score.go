package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// PostgresScoreRepository implements the ScoreRepository interface.
// Initial and final snapshots live in separate tables with the same shape.
type PostgresScoreRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(config *RepositoryConfig) repositories.ScoreRepository {
	return &PostgresScoreRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (r *PostgresScoreRepository) table(kind models.ScoreKind) (string, error) {
	switch kind {
	case models.ScoreKindInitial:
		return r.tables.InitialScores, nil
	case models.ScoreKindFinal:
		return r.tables.FinalScores, nil
	default:
		return "", &domain.ValidationError{Message: fmt.Sprintf("unknown score kind %q", kind)}
	}
}

// Save upserts the snapshot of the given kind for a chunk
func (r *PostgresScoreRepository) Save(ctx context.Context, chunkID int64, kind models.ScoreKind, scores models.Scores) (*models.ScoreSnapshot, error) {
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, score, optimism, forecast, confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chunk_id) DO UPDATE SET
			score = EXCLUDED.score,
			optimism = EXCLUDED.optimism,
			forecast = EXCLUDED.forecast,
			confidence = EXCLUDED.confidence,
			created_at = NOW()
		RETURNING id, created_at
	`, table)

	snapshot := &models.ScoreSnapshot{ChunkID: chunkID, Kind: kind, Scores: scores}
	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, chunkID, scores.Score, scores.Optimism, scores.Forecast, scores.Confidence).
		Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return nil, fmt.Errorf("text chunk %d: %w", chunkID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("save %s scores: %w", kind, err)
	}

	return snapshot, nil
}

// Get returns the snapshot of the given kind for a chunk
func (r *PostgresScoreRepository) Get(ctx context.Context, chunkID int64, kind models.ScoreKind) (*models.ScoreSnapshot, error) {
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, chunk_id, score, optimism, forecast, confidence, created_at
		FROM %s
		WHERE chunk_id = $1
	`, table)

	snapshot := &models.ScoreSnapshot{Kind: kind}
	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, chunkID).Scan(
		&snapshot.ID,
		&snapshot.ChunkID,
		&snapshot.Score,
		&snapshot.Optimism,
		&snapshot.Forecast,
		&snapshot.Confidence,
		&snapshot.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s scores for chunk %d: %w", kind, chunkID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s scores: %w", kind, err)
	}

	return snapshot, nil
}

// Delete removes the snapshot of the given kind, if any
func (r *PostgresScoreRepository) Delete(ctx context.Context, chunkID int64, kind models.ScoreKind) error {
	table, err := r.table(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE chunk_id = $1`, table)
	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, chunkID); err != nil {
		return fmt.Errorf("delete %s scores: %w", kind, err)
	}
	return nil
}
