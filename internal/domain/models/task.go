package models

import "time"

// Task is a todo item. Tasks form a forest through ParentID.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	ParentID    *int64    `json:"parent_id"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskNode is a task with its children resolved, used for tree responses.
type TaskNode struct {
	Task
	SubItems []*TaskNode `json:"sub_items"`
}
