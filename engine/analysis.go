package engine

import (
	"context"
	"time"

	"github.com/bcdannyboy/optpricer/analysis"
	"github.com/bcdannyboy/optpricer/models"
)

func (e *Engine) analysisOptions(progress analysis.Progress) analysis.Options {
	return analysis.Options{Seed: e.seed, Workers: e.workers, Progress: progress}
}

// Sweeps compares Monte Carlo with Black-Scholes along every sweep kind.
func (e *Engine) Sweeps(ctx context.Context, p models.MarketParameters, optType models.OptionType, paths int, progress analysis.Progress) ([]analysis.Sweep, error) {
	start := time.Now()
	kinds := analysis.SweepKinds()
	sweeps := make([]analysis.Sweep, 0, len(kinds))
	for _, kind := range kinds {
		s, err := analysis.CompareSweep(ctx, kind, p, optType, paths, e.analysisOptions(progress))
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, s)
	}
	e.logger.Debug("sweeps done", "option_type", optType, "paths", paths, "elapsed", time.Since(start))
	return sweeps, nil
}

func (e *Engine) GreeksProfile(ctx context.Context, style models.ExerciseStyle, p models.MarketParameters, size int, h float64, progress analysis.Progress) (analysis.GreeksProfile, error) {
	start := time.Now()
	prof, err := analysis.ProfileGreeks(ctx, style, p, size, h, e.analysisOptions(progress))
	if err != nil {
		return analysis.GreeksProfile{}, err
	}
	e.logger.Debug("greeks profile done", "style", style, "size", size, "elapsed", time.Since(start))
	return prof, nil
}
