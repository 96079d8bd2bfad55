package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// machEps matches the rcond numpy.linalg.lstsq uses by default.
const machEps = 2.220446049250313e-16

type LSMCResult struct {
	Price        float64   `json:"price"`
	Dt           float64   `json:"dt"`
	Cashflow     []float64 `json:"cashflow"`
	ExerciseTime []int     `json:"exercise_time"`
}

// LSMCPricer prices American options with Longstaff-Schwartz regression.
// The path matrix is reused between calls; it is not safe for concurrent use.
type LSMCPricer struct {
	paths models.PathBuffer
}

// LSMC prices an American option on freshly simulated paths.
func LSMC(p models.MarketParameters, optType models.OptionType, paths, steps int, rng *rand.Rand) (LSMCResult, error) {
	var pricer LSMCPricer
	return pricer.Price(p, optType, paths, steps, rng)
}

func (l *LSMCPricer) Price(p models.MarketParameters, optType models.OptionType, paths, steps int, rng *rand.Rand) (LSMCResult, error) {
	if err := p.Validate(); err != nil {
		return LSMCResult{}, err
	}
	if err := (models.SimulationConfig{Paths: paths, Steps: steps}).ValidateLSMC(); err != nil {
		return LSMCResult{}, err
	}
	payoff, err := optType.PayoffFunc()
	if err != nil {
		return LSMCResult{}, err
	}
	if rng == nil {
		return LSMCResult{}, fmt.Errorf("%w: nil random source", models.ErrInvalidConfig)
	}

	S := l.paths.Simulate(p.S0, p.R, p.Q, p.Sigma, p.T, steps, paths, rng)
	dt := p.T / float64(steps)
	disc := math.Exp(-p.R * dt)

	cashflow := make([]float64, paths)
	exerciseTime := make([]int, paths)
	for i := range cashflow {
		cashflow[i] = payoff(S.At(i, steps), p.K)
		exerciseTime[i] = steps
	}

	itm := make([]int, 0, paths)
	x := make([]float64, 0, paths)
	y := make([]float64, 0, paths)

	for t := steps - 1; t >= 1; t-- {
		itm, x, y = itm[:0], x[:0], y[:0]
		for i := 0; i < paths; i++ {
			s := S.At(i, t)
			if payoff(s, p.K) > 0 {
				itm = append(itm, i)
				x = append(x, s)
				y = append(y, cashflow[i]*disc)
			}
		}
		if len(itm) == 0 {
			continue
		}

		beta, err := regressContinuation(x, y)
		if err != nil {
			return LSMCResult{}, err
		}

		for k, i := range itm {
			s := x[k]
			continuation := beta[0] + beta[1]*s + beta[2]*s*s
			if exercise := payoff(s, p.K); exercise > continuation {
				cashflow[i] = exercise
				exerciseTime[i] = t
			}
		}
	}

	discounted := make([]float64, paths)
	for i, c := range cashflow {
		discounted[i] = c * math.Exp(-p.R*dt*float64(exerciseTime[i]))
	}

	return LSMCResult{
		Price:        floats.Sum(discounted) / float64(paths),
		Dt:           dt,
		Cashflow:     cashflow,
		ExerciseTime: exerciseTime,
	}, nil
}

// regressContinuation fits y on {1, x, x^2} by minimum-norm least squares.
func regressContinuation(x, y []float64) ([]float64, error) {
	n := len(x)
	A := mat.NewDense(n, 3, nil)
	for i, s := range x {
		A.Set(i, 0, 1)
		A.Set(i, 1, s)
		A.Set(i, 2, s*s)
	}

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return nil, fmt.Errorf("lsmc: SVD factorization failed on %d in-the-money paths", n)
	}
	rank := svd.Rank(machEps * float64(max(n, 3)))
	if rank == 0 {
		return []float64{0, 0, 0}, nil
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, mat.NewVecDense(n, y), rank)
	return []float64{beta.AtVec(0), beta.AtVec(1), beta.AtVec(2)}, nil
}
