package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

type EuropeanResult struct {
	Price    float64   `json:"price"`
	StdErr   float64   `json:"std_err"`
	Terminal []float64 `json:"terminal_prices"`
}

// European prices a European option by crude Monte Carlo over n terminal spots.
func European(p models.MarketParameters, optType models.OptionType, n int, rng *rand.Rand) (EuropeanResult, error) {
	if err := p.Validate(); err != nil {
		return EuropeanResult{}, err
	}
	if err := (models.SimulationConfig{Paths: n}).ValidateMonteCarlo(); err != nil {
		return EuropeanResult{}, err
	}
	payoff, err := optType.PayoffFunc()
	if err != nil {
		return EuropeanResult{}, err
	}
	if rng == nil {
		return EuropeanResult{}, fmt.Errorf("%w: nil random source", models.ErrInvalidConfig)
	}

	ST := models.SimulateTerminal(p.S0, p.R, p.Q, p.Sigma, p.T, n, rng)
	payoffs := make([]float64, n)
	for i, s := range ST {
		payoffs[i] = payoff(s, p.K)
	}

	disc := math.Exp(-p.R * p.T)
	res := EuropeanResult{
		Price:    disc * stat.Mean(payoffs, nil),
		Terminal: ST,
	}
	if n > 1 {
		res.StdErr = disc * stat.StdDev(payoffs, nil) / math.Sqrt(float64(n))
	}
	return res, nil
}
