package config

import "time"

const (
	// MaxDocumentTitleLength matches the VARCHAR(255) title column.
	MaxDocumentTitleLength = 255

	// MaxTaskContentLength matches the VARCHAR(300) task content column.
	MaxTaskContentLength = 300

	// MaxUsernameLength bounds usernames shown in the UI.
	MaxUsernameLength = 80

	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8

	// MaxSentencesPerDocument caps the rewrite calls made for one text.
	MaxSentencesPerDocument = 100

	// RevokedTokenRetention is how long a revoked token id is kept.
	// Must exceed the longest JWT_TTL in use.
	RevokedTokenRetention = 24 * time.Hour
)
