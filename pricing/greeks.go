package pricing

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/bcdannyboy/optpricer/models"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBumpFraction = 0.01 // Spot bump as a fraction of S0
	sigmaBump           = 0.01
	rateBump            = 0.0001
	maturityBumpFactor  = 1e-3
	bumpFloor           = 1e-7
)

// GreeksEngine computes Greeks by central finite differences over repeated pricings.
type GreeksEngine struct {
	Seed    uint64 // Every Monte Carlo re-pricing restarts from this seed
	Workers int    // Concurrent re-pricings; GOMAXPROCS when <= 0
}

type priceFunc func(p models.MarketParameters, optType models.OptionType) (float64, error)

// European bumps the Monte Carlo pricer with common random numbers.
func (g GreeksEngine) European(p models.MarketParameters, n int, h float64) (models.GreeksResult, error) {
	if err := (models.SimulationConfig{Paths: n}).ValidateMonteCarlo(); err != nil {
		return nil, err
	}
	return g.compute(p, h, func(p models.MarketParameters, optType models.OptionType) (float64, error) {
		res, err := European(p, optType, n, models.NewRand(g.Seed))
		return res.Price, err
	})
}

// American bumps the CRR lattice. LSMC is too noisy for finite differences.
func (g GreeksEngine) American(p models.MarketParameters, nodes int, h float64) (models.GreeksResult, error) {
	if err := (models.SimulationConfig{Nodes: nodes}).ValidateLattice(); err != nil {
		return nil, err
	}
	pool := sync.Pool{
		New: func() interface{} {
			return NewBinomialPricer()
		},
	}
	return g.compute(p, h, func(p models.MarketParameters, optType models.OptionType) (float64, error) {
		pricer := pool.Get().(*BinomialPricer)
		defer pool.Put(pricer)
		return pricer.Price(p, optType, nodes, models.American)
	})
}

// scenario order inside bumpScenarios
const (
	base = iota
	spotUp
	spotDown
	sigmaUp
	sigmaDown
	rateUp
	rateDown
	maturityUp
	maturityDown
	numScenarios
)

type bumps struct {
	spot, sigma, rate, maturity float64
}

func bumpScenarios(p models.MarketParameters, b bumps) []models.MarketParameters {
	s := make([]models.MarketParameters, numScenarios)
	for i := range s {
		s[i] = p
	}
	s[spotUp].S0 = p.S0 + b.spot
	s[spotDown].S0 = math.Max(bumpFloor, p.S0-b.spot)
	s[sigmaUp].Sigma = p.Sigma + b.sigma
	s[sigmaDown].Sigma = math.Max(bumpFloor, p.Sigma-b.sigma)
	s[rateUp].R = p.R + b.rate
	s[rateDown].R = math.Max(bumpFloor, p.R-b.rate)
	s[maturityUp].T = p.T + b.maturity
	s[maturityDown].T = math.Max(bumpFloor, p.T-b.maturity)
	return s
}

func (g GreeksEngine) compute(p models.MarketParameters, h float64, price priceFunc) (models.GreeksResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.T <= 0 {
		return nil, fmt.Errorf("%w: T must be positive to bump maturity, got %g", models.ErrInvalidParameter, p.T)
	}
	if h <= 0 || math.IsNaN(h) {
		h = DefaultBumpFraction * p.S0
	}
	if h <= 0 {
		return nil, fmt.Errorf("%w: spot bump is zero for S0=%g", models.ErrInvalidParameter, p.S0)
	}

	b := bumps{spot: h, sigma: sigmaBump, rate: rateBump, maturity: p.T * maturityBumpFactor}
	scenarios := bumpScenarios(p, b)
	types := models.OptionTypes()

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	prices := make([][]float64, len(types))
	var eg errgroup.Group
	eg.SetLimit(workers)
	for ti, optType := range types {
		prices[ti] = make([]float64, numScenarios)
		for si, scenario := range scenarios {
			eg.Go(func() error {
				v, err := price(scenario, optType)
				if err != nil {
					return fmt.Errorf("%s %s re-pricing: %w", optType, scenarioName(si), err)
				}
				prices[ti][si] = v
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := make(models.GreeksResult, len(types))
	for ti, optType := range types {
		P := prices[ti]
		result[optType] = models.Greeks{
			Delta: (P[spotUp] - P[spotDown]) / (2 * b.spot),
			Gamma: (P[spotUp] + P[spotDown] - 2*P[base]) / (b.spot * b.spot),
			Vega:  (P[sigmaUp] - P[sigmaDown]) / (2 * b.sigma) / 100,
			Rho:   (P[rateUp] - P[rateDown]) / (2 * b.rate) / 100,
			Theta: -(P[maturityUp] - P[maturityDown]) / (2 * b.maturity) / 252,
		}
	}
	return result, nil
}

func scenarioName(i int) string {
	return [...]string{"base", "spot up", "spot down", "sigma up", "sigma down", "rate up", "rate down", "maturity up", "maturity down"}[i]
}
