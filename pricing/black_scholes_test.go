package pricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestBlackScholesReferenceValues(t *testing.T) {
	tests := []struct {
		name    string
		params  models.MarketParameters
		optType models.OptionType
		want    float64
	}{
		// Hull, Options Futures and Other Derivatives, example 15.6
		{"hull call", models.MarketParameters{S0: 42, K: 40, T: 0.5, R: 0.1, Sigma: 0.2}, models.Call, 4.7594},
		{"hull put", models.MarketParameters{S0: 42, K: 40, T: 0.5, R: 0.1, Sigma: 0.2}, models.Put, 0.8086},
		{"atm call", models.MarketParameters{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2}, models.Call, 10.4506},
		{"atm put", models.MarketParameters{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2}, models.Put, 5.5735},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlackScholes(tt.params, tt.optType)
			require.NoError(t, err)
			if !approxEqual(got, tt.want, 1e-3) {
				t.Errorf("BlackScholes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPutCallParity(t *testing.T) {
	params := []models.MarketParameters{
		{S0: 100, K: 95, T: 0.25, R: 0.05, Q: 0.01, Sigma: 0.25},
		{S0: 80, K: 120, T: 2, R: 0.01, Q: 0.04, Sigma: 0.6},
		{S0: 150, K: 100, T: 0.1, R: -0.005, Q: 0, Sigma: 0.1},
	}
	for _, p := range params {
		call, err := BlackScholes(p, models.Call)
		require.NoError(t, err)
		put, err := BlackScholes(p, models.Put)
		require.NoError(t, err)

		parity := p.S0*math.Exp(-p.Q*p.T) - p.K*math.Exp(-p.R*p.T)
		assert.InDelta(t, parity, call-put, 1e-10)
	}
}

func TestBlackScholesDomain(t *testing.T) {
	p := models.MarketParameters{S0: 100, K: 100, T: 1, R: 0.05, Sigma: 0.2}

	zeroT := p
	zeroT.T = 0
	_, err := BlackScholes(zeroT, models.Call)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	zeroSigma := p
	zeroSigma.Sigma = 0
	_, err = BlackScholes(zeroSigma, models.Put)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	bothZero := p
	bothZero.S0, bothZero.K = 0, 0
	_, err = BlackScholes(bothZero, models.Call)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = BlackScholes(p, models.OptionType(9))
	assert.ErrorIs(t, err, models.ErrInvalidOptionType)
}

func TestBlackScholesGreeksMatchFiniteDifferences(t *testing.T) {
	p := models.MarketParameters{S0: 100, K: 105, T: 0.5, R: 0.03, Q: 0.02, Sigma: 0.3}
	const h = 1e-4

	for _, optType := range models.OptionTypes() {
		t.Run(optType.String(), func(t *testing.T) {
			g, err := BlackScholesGreeks(p, optType)
			require.NoError(t, err)

			price := func(mut func(*models.MarketParameters)) float64 {
				q := p
				mut(&q)
				v, err := BlackScholes(q, optType)
				require.NoError(t, err)
				return v
			}
			up := price(func(q *models.MarketParameters) { q.S0 += h })
			mid := price(func(q *models.MarketParameters) {})
			down := price(func(q *models.MarketParameters) { q.S0 -= h })
			assert.InDelta(t, (up-down)/(2*h), g.Delta, 1e-6)
			assert.InDelta(t, (up+down-2*mid)/(h*h), g.Gamma, 1e-3)

			vega := (price(func(q *models.MarketParameters) { q.Sigma += h }) - price(func(q *models.MarketParameters) { q.Sigma -= h })) / (2 * h) / 100
			assert.InDelta(t, vega, g.Vega, 1e-6)

			rho := (price(func(q *models.MarketParameters) { q.R += h }) - price(func(q *models.MarketParameters) { q.R -= h })) / (2 * h) / 100
			assert.InDelta(t, rho, g.Rho, 1e-6)

			theta := -(price(func(q *models.MarketParameters) { q.T += h }) - price(func(q *models.MarketParameters) { q.T -= h })) / (2 * h) / 252
			assert.InDelta(t, theta, g.Theta, 1e-6)
		})
	}
}

func TestImpliedVolatility(t *testing.T) {
	p := models.MarketParameters{S0: 100, K: 110, T: 0.75, R: 0.04, Q: 0.01}

	for _, sigma := range []float64{0.05, 0.2, 0.45, 1.2} {
		for _, optType := range models.OptionTypes() {
			q := p
			q.Sigma = sigma
			target, err := BlackScholes(q, optType)
			require.NoError(t, err)

			got, err := ImpliedVolatility(target, p, optType)
			require.NoError(t, err)
			assert.InDelta(t, sigma, got, 1e-5, "%s sigma=%g", optType, sigma)
		}
	}
}

func TestImpliedVolatilityBounds(t *testing.T) {
	p := models.MarketParameters{S0: 100, K: 100, T: 1, R: 0.05}

	_, err := ImpliedVolatility(150, p, models.Call)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = ImpliedVolatility(-1, p, models.Put)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}
