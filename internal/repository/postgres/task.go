package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
)

// PostgresTaskRepository implements the TaskRepository interface
type PostgresTaskRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &PostgresTaskRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a task
func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, parent_id, content, is_completed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, task.OwnerID, task.ParentID, task.Content, task.IsCompleted).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent task: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task owned by ownerID
func (r *PostgresTaskRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, parent_id, content, is_completed, created_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Tasks)

	var task models.Task
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&task.ID,
		&task.OwnerID,
		&task.ParentID,
		&task.Content,
		&task.IsCompleted,
		&task.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// ListByOwner returns all of the owner's tasks ordered by id
func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, parent_id, content, is_completed, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY id
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.OwnerID, &task.ParentID, &task.Content, &task.IsCompleted, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update persists content, completion and parent
func (r *PostgresTaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, is_completed = $2, parent_id = $3
		WHERE id = $4 AND owner_id = $5
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, task.Content, task.IsCompleted, task.ParentID, task.ID, task.OwnerID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("parent task: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", task.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a task and, through the parent_id cascade, its subtree
func (r *PostgresTaskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
