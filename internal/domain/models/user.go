package models

import "time"

// User is an account that owns documents and tasks.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ExternalID   *string   `json:"-"` // subject of an externally issued JWT, NULL for local accounts
	CreatedAt    time.Time `json:"created_at"`
}
