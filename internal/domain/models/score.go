package models

import "time"

// ScoreKind distinguishes the two snapshots kept per chunk.
type ScoreKind string

const (
	ScoreKindInitial ScoreKind = "initial"
	ScoreKindFinal   ScoreKind = "final"
)

// Scores are the four sentiment metrics returned by the scoring service.
type Scores struct {
	Score      float64 `json:"score"`
	Optimism   float64 `json:"optimism"`
	Forecast   float64 `json:"forecast"`
	Confidence float64 `json:"confidence"`
}

// ScoreSnapshot is a stored, immutable set of scores for a chunk.
type ScoreSnapshot struct {
	ID        int64     `json:"id"`
	ChunkID   int64     `json:"chunk_id"`
	Kind      ScoreKind `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Scores
}
