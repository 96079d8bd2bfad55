package pricing

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/optpricer/models"
)

// Lattice holds a recombining CRR tree. Row i has i+1 nodes indexed by the number of down moves.
type Lattice struct {
	Spot  [][]float64 `json:"spot"`
	Value [][]float64 `json:"value"`
}

func (l *Lattice) resize(nodes int) {
	if len(l.Spot) == nodes+1 {
		return
	}
	l.Spot = make([][]float64, nodes+1)
	l.Value = make([][]float64, nodes+1)
	for i := range l.Spot {
		l.Spot[i] = make([]float64, i+1)
		l.Value[i] = make([]float64, i+1)
	}
}

// BinomialPricer keeps its lattice between calls of equal depth. It is not safe for concurrent use.
type BinomialPricer struct {
	lattice Lattice
}

func NewBinomialPricer() *BinomialPricer {
	return &BinomialPricer{}
}

// Lattice returns the tree built by the last successful Price call.
func (b *BinomialPricer) Lattice() Lattice {
	return b.lattice
}

func (b *BinomialPricer) Price(p models.MarketParameters, optType models.OptionType, nodes int, style models.ExerciseStyle) (float64, error) {
	if err := p.ValidateAnalytic(); err != nil {
		return 0, err
	}
	if err := (models.SimulationConfig{Nodes: nodes}).ValidateLattice(); err != nil {
		return 0, err
	}
	payoff, err := optType.PayoffFunc()
	if err != nil {
		return 0, err
	}
	if style != models.European && style != models.American {
		return 0, fmt.Errorf("%w: unknown exercise style %d", models.ErrInvalidConfig, style)
	}

	dt := p.T / float64(nodes)
	u := math.Exp(p.Sigma * math.Sqrt(dt))
	d := 1 / u
	pu := (math.Exp((p.R-p.Q)*dt) - d) / (u - d)
	disc := math.Exp(-p.R * dt)

	b.lattice.resize(nodes)
	S, V := b.lattice.Spot, b.lattice.Value

	S[0][0] = p.S0
	for i := 1; i <= nodes; i++ {
		S[i][0] = S[i-1][0] * u
		for j := 1; j <= i; j++ {
			S[i][j] = S[i-1][j-1] * d
		}
	}

	for j, s := range S[nodes] {
		V[nodes][j] = payoff(s, p.K)
	}

	for i := nodes - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			cont := disc * (pu*V[i+1][j] + (1-pu)*V[i+1][j+1])
			if style == models.American {
				cont = math.Max(cont, payoff(S[i][j], p.K))
			}
			V[i][j] = cont
		}
	}

	return V[0][0], nil
}

// AmericanBinomial prices an American option on a fresh CRR lattice.
func AmericanBinomial(p models.MarketParameters, optType models.OptionType, nodes int) (float64, error) {
	return NewBinomialPricer().Price(p, optType, nodes, models.American)
}
