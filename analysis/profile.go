package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/pricing"
	"gonum.org/v1/gonum/floats"
)

const ProfilePoints = 30

type ProfilePoint struct {
	Spot   float64                  `json:"spot"`
	Greeks map[string]models.Greeks `json:"greeks"`
}

// GreeksProfile tracks both option types' Greeks as the spot moves.
type GreeksProfile struct {
	Style  string         `json:"style"`
	Points []ProfilePoint `json:"points"`
}

// ProfileGreeks evaluates Greeks on a spot grid around p.S0. size is the path count for
// European style and the lattice depth for American style. The spot bump h stays fixed
// across the grid and defaults to 1% of p.S0.
func ProfileGreeks(ctx context.Context, style models.ExerciseStyle, p models.MarketParameters, size int, h float64, opts Options) (GreeksProfile, error) {
	if err := p.Validate(); err != nil {
		return GreeksProfile{}, err
	}
	if h <= 0 {
		h = pricing.DefaultBumpFraction * p.S0
	}

	spots := floats.Span(make([]float64, ProfilePoints), math.Max(0, p.S0-sweepHalfWidth), p.S0+sweepHalfWidth)
	// Parallelism lives at the grid level.
	engine := pricing.GreeksEngine{Seed: opts.Seed, Workers: 1}

	points, err := processJobs(ctx, len(spots), opts.workers(), opts.Progress, func(i int) (ProfilePoint, error) {
		q := p
		q.S0 = spots[i]

		var (
			res models.GreeksResult
			err error
		)
		switch style {
		case models.European:
			res, err = engine.European(q, size, h)
		case models.American:
			res, err = engine.American(q, size, h)
		default:
			err = fmt.Errorf("%w: unknown exercise style %d", models.ErrInvalidConfig, style)
		}
		if err != nil {
			return ProfilePoint{}, err
		}
		return ProfilePoint{Spot: spots[i], Greeks: res.ByTag()}, nil
	})
	if err != nil {
		return GreeksProfile{}, fmt.Errorf("greeks profile: %w", err)
	}

	return GreeksProfile{Style: style.String(), Points: points}, nil
}
