package repositories

import (
	"context"

	"starc/internal/domain/models"
)

// TaskRepository defines data access operations for todo tasks
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error

	// GetByID returns domain.ErrNotFound for tasks owned by someone else
	GetByID(ctx context.Context, id, ownerID int64) (*models.Task, error)

	// ListByOwner returns all of the owner's tasks ordered by id
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)

	// Update persists content, completion and parent
	Update(ctx context.Context, task *models.Task) error

	// Delete removes the task; its subtree cascades
	Delete(ctx context.Context, id, ownerID int64) error
}
