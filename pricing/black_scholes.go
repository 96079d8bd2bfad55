package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIterations = 100
	epsilon       = 1e-8
)

var ErrNoConvergence = errors.New("implied volatility did not converge")

// BlackScholes prices a European option in closed form with a continuous dividend yield.
func BlackScholes(p models.MarketParameters, optType models.OptionType) (float64, error) {
	if err := p.ValidateAnalytic(); err != nil {
		return 0, err
	}
	if !optType.Valid() {
		return 0, fmt.Errorf("%w: %s", models.ErrInvalidOptionType, optType)
	}

	price := blackScholesPrice(p, optType)
	if math.IsNaN(price) {
		return 0, fmt.Errorf("%w: S0 and K are both zero", models.ErrInvalidParameter)
	}
	return price, nil
}

func d1d2(p models.MarketParameters) (float64, float64) {
	sqrtT := math.Sqrt(p.T)
	d1 := (math.Log(p.S0/p.K) + (p.R-p.Q+0.5*p.Sigma*p.Sigma)*p.T) / (p.Sigma * sqrtT)
	return d1, d1 - p.Sigma*sqrtT
}

func blackScholesPrice(p models.MarketParameters, optType models.OptionType) float64 {
	d1, d2 := d1d2(p)
	spot := p.S0 * math.Exp(-p.Q*p.T)
	strike := p.K * math.Exp(-p.R*p.T)

	if optType == models.Call {
		return spot*distuv.UnitNormal.CDF(d1) - strike*distuv.UnitNormal.CDF(d2)
	}
	return strike*distuv.UnitNormal.CDF(-d2) - spot*distuv.UnitNormal.CDF(-d1)
}

// BlackScholesGreeks returns the analytical Greeks in the units the finite-difference engine reports.
func BlackScholesGreeks(p models.MarketParameters, optType models.OptionType) (models.Greeks, error) {
	if _, err := BlackScholes(p, optType); err != nil {
		return models.Greeks{}, err
	}

	d1, d2 := d1d2(p)
	sqrtT := math.Sqrt(p.T)
	divDisc := math.Exp(-p.Q * p.T)
	rateDisc := math.Exp(-p.R * p.T)
	pdf := distuv.UnitNormal.Prob(d1)

	g := models.Greeks{
		Gamma: divDisc * pdf / (p.S0 * p.Sigma * sqrtT),
		Vega:  p.S0 * divDisc * pdf * sqrtT / 100,
	}
	decay := -p.S0 * divDisc * pdf * p.Sigma / (2 * sqrtT)

	if optType == models.Call {
		g.Delta = divDisc * distuv.UnitNormal.CDF(d1)
		g.Rho = p.K * p.T * rateDisc * distuv.UnitNormal.CDF(d2) / 100
		g.Theta = decay - p.R*p.K*rateDisc*distuv.UnitNormal.CDF(d2) + p.Q*p.S0*divDisc*distuv.UnitNormal.CDF(d1)
	} else {
		g.Delta = divDisc * (distuv.UnitNormal.CDF(d1) - 1)
		g.Rho = -p.K * p.T * rateDisc * distuv.UnitNormal.CDF(-d2) / 100
		g.Theta = decay + p.R*p.K*rateDisc*distuv.UnitNormal.CDF(-d2) - p.Q*p.S0*divDisc*distuv.UnitNormal.CDF(-d1)
	}
	g.Theta /= 252 // Per trading day

	return g, nil
}

func vega(p models.MarketParameters) float64 {
	d1, _ := d1d2(p)
	return p.S0 * math.Exp(-p.Q*p.T) * distuv.UnitNormal.Prob(d1) * math.Sqrt(p.T)
}

// ImpliedVolatility inverts BlackScholes for sigma. p.Sigma is ignored.
func ImpliedVolatility(target float64, p models.MarketParameters, optType models.OptionType) (float64, error) {
	p.Sigma = 0.5 // Initial guess
	if err := p.ValidateAnalytic(); err != nil {
		return 0, err
	}
	if !optType.Valid() {
		return 0, fmt.Errorf("%w: %s", models.ErrInvalidOptionType, optType)
	}

	lower, upper := priceBounds(p, optType)
	if math.IsNaN(target) || target <= lower || target >= upper {
		return 0, fmt.Errorf("%w: price %g outside no-arbitrage bounds (%g, %g)", models.ErrInvalidParameter, target, lower, upper)
	}

	for i := 0; i < maxIterations; i++ {
		diff := blackScholesPrice(p, optType) - target
		if math.Abs(diff) < epsilon {
			return p.Sigma, nil
		}

		v := vega(p)
		if v < epsilon {
			break // Flat region, Newton cannot make progress
		}
		next := p.Sigma - diff/v
		if next <= 0 {
			next = p.Sigma / 2 // Stay positive
		}
		p.Sigma = next
	}

	return impliedVolatilityNelderMead(target, p, optType)
}

func impliedVolatilityNelderMead(target float64, p models.MarketParameters, optType models.OptionType) (float64, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			trial := p
			trial.Sigma = math.Abs(x[0])
			if trial.Sigma < epsilon {
				return math.MaxFloat64
			}
			diff := blackScholesPrice(trial, optType) - target
			return diff * diff
		},
	}

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: 1e-20, Iterations: 200},
	}
	result, err := optimize.Minimize(problem, []float64{0.5}, settings, &optimize.NelderMead{})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}

	sigma := math.Abs(result.X[0])
	p.Sigma = sigma
	if math.Abs(blackScholesPrice(p, optType)-target) > 1e-6 {
		return 0, ErrNoConvergence
	}
	return sigma, nil
}

func priceBounds(p models.MarketParameters, optType models.OptionType) (float64, float64) {
	spot := p.S0 * math.Exp(-p.Q*p.T)
	strike := p.K * math.Exp(-p.R*p.T)
	if optType == models.Call {
		return math.Max(spot-strike, 0), spot
	}
	return math.Max(strike-spot, 0), strike
}
