package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, owner_id, word_count)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, doc.Title, doc.OwnerID, doc.WordCount).
		Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("owner %d: %w", doc.OwnerID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document owned by ownerID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, title, owner_id, word_count, created_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&doc.Title,
		&doc.OwnerID,
		&doc.WordCount,
		&doc.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByOwner returns the owner's documents, newest first
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, title, owner_id, word_count, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.OwnerID, &doc.WordCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// UpdateTitle changes a document's title
func (r *PostgresDocumentRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	query := fmt.Sprintf(`UPDATE %s SET title = $1 WHERE id = $2`, r.tables.Documents)
	return r.execOne(ctx, query, id, title, id)
}

// UpdateWordCount stores a recomputed word count
func (r *PostgresDocumentRepository) UpdateWordCount(ctx context.Context, id int64, wordCount int) error {
	query := fmt.Sprintf(`UPDATE %s SET word_count = $1 WHERE id = $2`, r.tables.Documents)
	return r.execOne(ctx, query, id, wordCount, id)
}

// Delete removes a document owned by ownerID
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Documents)
	return r.execOne(ctx, query, id, id, ownerID)
}

func (r *PostgresDocumentRepository) execOne(ctx context.Context, query string, id int64, args ...any) error {
	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PostgresTextChunkRepository implements the TextChunkRepository interface
type PostgresTextChunkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTextChunkRepository creates a new text chunk repository
func NewTextChunkRepository(config *RepositoryConfig) repositories.TextChunkRepository {
	return &PostgresTextChunkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a chunk for a document
func (r *PostgresTextChunkRepository) Create(ctx context.Context, chunk *models.TextChunk) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, input_text, rewritten_text)
		VALUES ($1, $2, $3)
		RETURNING id
	`, r.tables.TextChunks)

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, chunk.DocumentID, chunk.InputText, chunk.RewrittenText).Scan(&chunk.ID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("document %d: %w", chunk.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create text chunk: %w", err)
	}
	return nil
}

// GetByDocument returns the document's chunk
func (r *PostgresTextChunkRepository) GetByDocument(ctx context.Context, documentID int64) (*models.TextChunk, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, input_text, rewritten_text
		FROM %s
		WHERE document_id = $1
		ORDER BY id
		LIMIT 1
	`, r.tables.TextChunks)

	var chunk models.TextChunk
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID).Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.InputText,
		&chunk.RewrittenText,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("text chunk for document %d: %w", documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get text chunk: %w", err)
	}
	return &chunk, nil
}

// UpdateInputText replaces the accepted text of a chunk
func (r *PostgresTextChunkRepository) UpdateInputText(ctx context.Context, id int64, inputText string) error {
	query := fmt.Sprintf(`UPDATE %s SET input_text = $1 WHERE id = $2`, r.tables.TextChunks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, inputText, id)
	if err != nil {
		return fmt.Errorf("update text chunk: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("text chunk %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateTexts replaces both the accepted and the rewritten text of a chunk
func (r *PostgresTextChunkRepository) UpdateTexts(ctx context.Context, chunk *models.TextChunk) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET input_text = $1, rewritten_text = $2
		WHERE id = $3
	`, r.tables.TextChunks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, chunk.InputText, chunk.RewrittenText, chunk.ID)
	if err != nil {
		return fmt.Errorf("update text chunk: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("text chunk %d: %w", chunk.ID, domain.ErrNotFound)
	}
	return nil
}
