package models

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// NewRand returns a generator seeded deterministically. Every pricing call owns its generator.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// SimulatePaths draws paths x (steps+1) geometric Brownian motion spots. Column 0 holds s0.
func SimulatePaths(s0, r, q, sigma, t float64, steps, paths int, rng *rand.Rand) *mat.Dense {
	var buf PathBuffer
	return buf.Simulate(s0, r, q, sigma, t, steps, paths, rng)
}

// SimulateTerminal draws n spots at maturity in a single step.
func SimulateTerminal(s0, r, q, sigma, t float64, n int, rng *rand.Rand) []float64 {
	drift := (r - q - 0.5*sigma*sigma) * t
	vol := sigma * math.Sqrt(t)

	ST := make([]float64, n)
	for i := range ST {
		ST[i] = s0 * math.Exp(drift+vol*rng.NormFloat64())
	}
	return ST
}

// PathBuffer keeps the backing matrix between simulations of the same shape.
// It is not safe for concurrent use.
type PathBuffer struct {
	m *mat.Dense
}

func (b *PathBuffer) Simulate(s0, r, q, sigma, t float64, steps, paths int, rng *rand.Rand) *mat.Dense {
	cols := steps + 1
	if b.m == nil {
		b.m = mat.NewDense(paths, cols, nil)
	} else if rows, c := b.m.Dims(); rows != paths || c != cols {
		b.m = mat.NewDense(paths, cols, nil)
	}

	dt := t / float64(steps)
	drift := (r - q - 0.5*sigma*sigma) * dt
	vol := sigma * math.Sqrt(dt)

	raw := b.m.RawMatrix()
	for i := 0; i < paths; i++ {
		S := raw.Data[i*raw.Stride : i*raw.Stride+cols]
		S[0] = s0
		for j := 1; j < cols; j++ {
			S[j] = S[j-1] * math.Exp(drift+vol*rng.NormFloat64())
		}
	}
	return b.m
}
