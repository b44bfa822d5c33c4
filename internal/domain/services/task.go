package services

import (
	"context"

	"starc/internal/domain/models"
)

// TaskService handles the hierarchical todo list
type TaskService interface {
	ListTree(ctx context.Context, userID int64) ([]*models.TaskNode, error)
	CreateTask(ctx context.Context, userID int64, req *CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID int64, req *UpdateTaskRequest) (*models.Task, error)

	// MoveTask reparents a task; nil parent moves it to the top level
	MoveTask(ctx context.Context, userID, taskID int64, req *MoveTaskRequest) (*models.Task, error)

	// DeleteTask removes the task and its subtree
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

// CreateTaskRequest represents a task creation request
type CreateTaskRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Content     *string `json:"content,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// MoveTaskRequest represents a reparent request
type MoveTaskRequest struct {
	NewParentID *int64 `json:"new_parent_id"`
}
