package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// PostgresSentenceRepository implements the SentenceRepository interface
type PostgresSentenceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSentenceRepository creates a new sentence repository
func NewSentenceRepository(config *RepositoryConfig) repositories.SentenceRepository {
	return &PostgresSentenceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const sentenceColumns = `id, chunk_id, original_text, rewritten_text, preceding_sentence_id`

// CreateChain inserts the sentences in order, each pointing at the previous one
func (r *PostgresSentenceRepository) CreateChain(ctx context.Context, chunkID int64, sentences []models.Sentence) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, original_text, rewritten_text, preceding_sentence_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, r.tables.Sentences)

	executor := GetExecutor(ctx, r.pool)
	var previous *int64
	for i := range sentences {
		s := &sentences[i]
		s.ChunkID = chunkID
		s.PrecedingSentenceID = previous

		if err := executor.QueryRow(ctx, query, chunkID, s.OriginalText, s.RewrittenText, previous).Scan(&s.ID); err != nil {
			return fmt.Errorf("create sentence %d of %d: %w", i+1, len(sentences), err)
		}

		id := s.ID
		previous = &id
	}

	return nil
}

// GetByID retrieves a sentence belonging to chunkID
func (r *PostgresSentenceRepository) GetByID(ctx context.Context, id, chunkID int64) (*models.Sentence, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND chunk_id = $2
	`, sentenceColumns, r.tables.Sentences)

	var s models.Sentence
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, chunkID).Scan(
		&s.ID,
		&s.ChunkID,
		&s.OriginalText,
		&s.RewrittenText,
		&s.PrecedingSentenceID,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("sentence %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get sentence: %w", err)
	}
	return &s, nil
}

// ListByChunk returns every sentence of the chunk ordered by id
func (r *PostgresSentenceRepository) ListByChunk(ctx context.Context, chunkID int64) ([]models.Sentence, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE chunk_id = $1
		ORDER BY id
	`, sentenceColumns, r.tables.Sentences)
	return r.list(ctx, query, chunkID)
}

// ListPending returns sentences with an unreviewed suggestion ordered by id
func (r *PostgresSentenceRepository) ListPending(ctx context.Context, chunkID int64) ([]models.Sentence, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE chunk_id = $1 AND original_text <> rewritten_text
		ORDER BY id
	`, sentenceColumns, r.tables.Sentences)
	return r.list(ctx, query, chunkID)
}

func (r *PostgresSentenceRepository) list(ctx context.Context, query string, chunkID int64) ([]models.Sentence, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, chunkID)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	defer rows.Close()

	sentences := []models.Sentence{}
	for rows.Next() {
		var s models.Sentence
		if err := rows.Scan(&s.ID, &s.ChunkID, &s.OriginalText, &s.RewrittenText, &s.PrecedingSentenceID); err != nil {
			return nil, fmt.Errorf("scan sentence: %w", err)
		}
		sentences = append(sentences, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentences: %w", err)
	}

	return sentences, nil
}

// Update persists both text fields of a sentence
func (r *PostgresSentenceRepository) Update(ctx context.Context, sentence *models.Sentence) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET original_text = $1, rewritten_text = $2
		WHERE id = $3 AND chunk_id = $4
	`, r.tables.Sentences)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, sentence.OriginalText, sentence.RewrittenText, sentence.ID, sentence.ChunkID)
	if err != nil {
		return fmt.Errorf("update sentence: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("sentence %d: %w", sentence.ID, domain.ErrNotFound)
	}
	return nil
}

// AcceptAll adopts every pending rewrite of the chunk
func (r *PostgresSentenceRepository) AcceptAll(ctx context.Context, chunkID int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET original_text = rewritten_text
		WHERE chunk_id = $1 AND original_text <> rewritten_text
	`, r.tables.Sentences)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, chunkID)
	if err != nil {
		return 0, fmt.Errorf("accept all sentences: %w", err)
	}
	return result.RowsAffected(), nil
}

// RejectAll discards every pending rewrite of the chunk
func (r *PostgresSentenceRepository) RejectAll(ctx context.Context, chunkID int64) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET rewritten_text = original_text
		WHERE chunk_id = $1 AND original_text <> rewritten_text
	`, r.tables.Sentences)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, chunkID)
	if err != nil {
		return 0, fmt.Errorf("reject all sentences: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteByChunk removes every sentence of the chunk
func (r *PostgresSentenceRepository) DeleteByChunk(ctx context.Context, chunkID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE chunk_id = $1`, r.tables.Sentences)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, chunkID); err != nil {
		return fmt.Errorf("delete sentences: %w", err)
	}
	return nil
}
