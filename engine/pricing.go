package engine

import (
	"context"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/pricing"
)

type EuropeanQuote struct {
	Price          float64   `json:"price"`
	StdErr         float64   `json:"std_err"`
	TerminalPrices []float64 `json:"terminal_prices"`
}

type LSMCQuote struct {
	Price        float64   `json:"price"`
	Dt           float64   `json:"dt"`
	Cashflow     []float64 `json:"cashflow"`
	ExerciseTime []int     `json:"exercise_time"`
}

func (e *Engine) PriceEuropean(ctx context.Context, S0, K, T, r, q, sigma float64, n int, optionType string) (EuropeanQuote, error) {
	optType, err := models.ParseOptionType(optionType)
	if err != nil {
		return EuropeanQuote{}, err
	}
	p := params(S0, K, T, r, q, sigma)
	key := e.key("european", []string{optionType}, S0, K, T, r, q, sigma, float64(n))

	return cached(ctx, e, "european", key, func() (EuropeanQuote, error) {
		res, err := pricing.European(p, optType, n, models.NewRand(e.seed))
		if err != nil {
			return EuropeanQuote{}, err
		}
		return EuropeanQuote{Price: res.Price, StdErr: res.StdErr, TerminalPrices: res.Terminal}, nil
	})
}

func (e *Engine) PriceAmericanLSMC(ctx context.Context, S0, K, T, r, q, sigma float64, nSim, nSteps int, optionType string) (LSMCQuote, error) {
	optType, err := models.ParseOptionType(optionType)
	if err != nil {
		return LSMCQuote{}, err
	}
	p := params(S0, K, T, r, q, sigma)
	key := e.key("lsmc", []string{optionType}, S0, K, T, r, q, sigma, float64(nSim), float64(nSteps))

	return cached(ctx, e, "lsmc", key, func() (LSMCQuote, error) {
		res, err := pricing.LSMC(p, optType, nSim, nSteps, models.NewRand(e.seed))
		if err != nil {
			return LSMCQuote{}, err
		}
		return LSMCQuote{Price: res.Price, Dt: res.Dt, Cashflow: res.Cashflow, ExerciseTime: res.ExerciseTime}, nil
	})
}

func (e *Engine) PriceAmericanBinomial(ctx context.Context, S0, K, T, r, q, sigma float64, nNodes int, optionType string) (float64, error) {
	optType, err := models.ParseOptionType(optionType)
	if err != nil {
		return 0, err
	}
	p := params(S0, K, T, r, q, sigma)
	key := e.key("binomial", []string{optionType}, S0, K, T, r, q, sigma, float64(nNodes))

	return cached(ctx, e, "binomial", key, func() (float64, error) {
		return pricing.AmericanBinomial(p, optType, nNodes)
	})
}

func (e *Engine) PriceBlackScholes(ctx context.Context, S0, K, T, r, q, sigma float64, optionType string) (float64, error) {
	optType, err := models.ParseOptionType(optionType)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Closed form, not worth a cache round trip.
	return pricing.BlackScholes(params(S0, K, T, r, q, sigma), optType)
}

// GreeksEuropean returns Monte Carlo Greeks for both option types. optionType is validated only.
func (e *Engine) GreeksEuropean(ctx context.Context, S0, K, r, q, sigma, T float64, N int, optionType string, h float64) (map[string]models.Greeks, error) {
	if _, err := models.ParseOptionType(optionType); err != nil {
		return nil, err
	}
	p := params(S0, K, T, r, q, sigma)
	key := e.key("greeks_european", nil, S0, K, r, q, sigma, T, float64(N), h)

	return cached(ctx, e, "greeks_european", key, func() (map[string]models.Greeks, error) {
		res, err := e.greeksEngine().European(p, N, h)
		if err != nil {
			return nil, err
		}
		return res.ByTag(), nil
	})
}

// GreeksAmerican returns lattice Greeks for both option types. optionType is validated only.
func (e *Engine) GreeksAmerican(ctx context.Context, S0, K, r, q, sigma, T float64, nNodes int, optionType string, h float64) (map[string]models.Greeks, error) {
	if _, err := models.ParseOptionType(optionType); err != nil {
		return nil, err
	}
	p := params(S0, K, T, r, q, sigma)
	key := e.key("greeks_american", nil, S0, K, r, q, sigma, T, float64(nNodes), h)

	return cached(ctx, e, "greeks_american", key, func() (map[string]models.Greeks, error) {
		res, err := e.greeksEngine().American(p, nNodes, h)
		if err != nil {
			return nil, err
		}
		return res.ByTag(), nil
	})
}

func (e *Engine) greeksEngine() pricing.GreeksEngine {
	return pricing.GreeksEngine{Seed: e.seed, Workers: e.workers}
}
