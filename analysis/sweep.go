package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/pricing"
	"gonum.org/v1/gonum/floats"
)

const (
	SweepPoints    = 60
	sweepHalfWidth = 30.0
	volFloor       = 1e-7
)

type SweepKind int

const (
	StrikeSweep SweepKind = iota
	SpotSweep
	VolatilitySweep
)

func SweepKinds() []SweepKind {
	return []SweepKind{StrikeSweep, SpotSweep, VolatilitySweep}
}

func (k SweepKind) String() string {
	switch k {
	case StrikeSweep:
		return "strike"
	case SpotSweep:
		return "spot"
	case VolatilitySweep:
		return "volatility"
	}
	return fmt.Sprintf("SweepKind(%d)", int(k))
}

type SweepPoint struct {
	X            float64 `json:"x"`
	MonteCarlo   float64 `json:"monte_carlo"`
	BlackScholes float64 `json:"black_scholes"`
}

// Sweep compares Monte Carlo against the closed form while one input varies.
type Sweep struct {
	Kind       string       `json:"kind"`
	OptionType string       `json:"option_type"`
	Points     []SweepPoint `json:"points"`
}

// SweepGrid returns the values the swept input takes around p.
func SweepGrid(kind SweepKind, p models.MarketParameters) ([]float64, error) {
	grid := make([]float64, SweepPoints)
	switch kind {
	case StrikeSweep:
		return floats.Span(grid, math.Max(0, p.K-sweepHalfWidth), p.K+sweepHalfWidth), nil
	case SpotSweep:
		return floats.Span(grid, math.Max(0, p.S0-sweepHalfWidth), p.S0+sweepHalfWidth), nil
	case VolatilitySweep:
		floats.Span(grid, math.Min(0.01, math.Abs(p.Sigma)), math.Min(p.Sigma+0.2, 1))
		for i := range grid {
			grid[i] = math.Max(grid[i], volFloor)
		}
		return grid, nil
	}
	return nil, fmt.Errorf("%w: unknown sweep %s", models.ErrInvalidConfig, kind)
}

func (k SweepKind) apply(p models.MarketParameters, x float64) models.MarketParameters {
	switch k {
	case StrikeSweep:
		p.K = x
	case SpotSweep:
		p.S0 = x
	case VolatilitySweep:
		p.Sigma = x
	}
	return p
}

// CompareSweep prices every grid point with paths Monte Carlo draws and with Black-Scholes.
func CompareSweep(ctx context.Context, kind SweepKind, p models.MarketParameters, optType models.OptionType, paths int, opts Options) (Sweep, error) {
	grid, err := SweepGrid(kind, p)
	if err != nil {
		return Sweep{}, err
	}
	if err := p.ValidateAnalytic(); err != nil {
		return Sweep{}, err
	}

	points, err := processJobs(ctx, len(grid), opts.workers(), opts.Progress, func(i int) (SweepPoint, error) {
		q := kind.apply(p, grid[i])
		mc, err := pricing.European(q, optType, paths, models.NewRand(opts.Seed))
		if err != nil {
			return SweepPoint{}, err
		}
		bs, err := pricing.BlackScholes(q, optType)
		if err != nil {
			return SweepPoint{}, err
		}
		return SweepPoint{X: grid[i], MonteCarlo: mc.Price, BlackScholes: bs}, nil
	})
	if err != nil {
		return Sweep{}, fmt.Errorf("%s sweep: %w", kind, err)
	}

	return Sweep{Kind: kind.String(), OptionType: optType.String(), Points: points}, nil
}
