package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("SCORING_MODE", "")
	t.Setenv("JWT_TTL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ScoringModePlaceholder, cfg.ScoringMode)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.IngestTimeout)
}

func TestLoad_ProdUsesCloudScoring(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("SCORING_MODE", "")

	cfg := Load()

	assert.Equal(t, ScoringModeCloud, cfg.ScoringMode)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SCORING_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.ScoringTimeout)
}

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"prod", ""},
		{"test", "test_"},
		{"dev", "dev_"},
		{"staging", "dev_"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, getTablePrefix(tt.env))
		})
	}
}
