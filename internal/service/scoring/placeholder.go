package scoring

import (
	"context"
	"math/rand/v2"

	"starc/internal/domain/models"
)

// PlaceholderScorer returns uniform random scores in [1, 100) without any
// network call. It stands in for the cloud scorer outside production.
type PlaceholderScorer struct {
	rng *rand.Rand
}

// NewPlaceholderScorer creates a placeholder scorer. A nil source uses the global generator.
func NewPlaceholderScorer(src rand.Source) *PlaceholderScorer {
	if src == nil {
		return &PlaceholderScorer{}
	}
	return &PlaceholderScorer{rng: rand.New(src)}
}

// Score returns four random values
func (p *PlaceholderScorer) Score(_ context.Context, _ string) (*models.Scores, error) {
	return &models.Scores{
		Score:      p.uniform(),
		Optimism:   p.uniform(),
		Forecast:   p.uniform(),
		Confidence: p.uniform(),
	}, nil
}

func (p *PlaceholderScorer) uniform() float64 {
	if p.rng == nil {
		return 1 + rand.Float64()*99
	}
	return 1 + p.rng.Float64()*99
}
