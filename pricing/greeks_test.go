package pricing

import (
	"errors"
	"testing"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var greeksParams = models.MarketParameters{S0: 100, K: 100, T: 0.5, R: 0.05, Q: 0.01, Sigma: 0.2}

func TestEuropeanGreeksCallPutGammaEqual(t *testing.T) {
	engine := GreeksEngine{Seed: 69}
	res, err := engine.European(greeksParams, 20000, 0)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.InDelta(t, res[models.Call].Gamma, res[models.Put].Gamma, 1e-8)
	// Common random numbers keep parity: call delta - put delta is the forward delta.
	assert.InDelta(t, 1.0, res[models.Call].Delta-res[models.Put].Delta, 0.02)
}

func TestEuropeanGreeksNearClosedForm(t *testing.T) {
	engine := GreeksEngine{Seed: 69}
	res, err := engine.European(greeksParams, 100000, 1)
	require.NoError(t, err)

	for _, optType := range models.OptionTypes() {
		want, err := BlackScholesGreeks(greeksParams, optType)
		require.NoError(t, err)
		got := res[optType]
		assert.InDelta(t, want.Delta, got.Delta, 0.02, "%s delta", optType)
		assert.InDelta(t, want.Vega, got.Vega, 0.02, "%s vega", optType)
		assert.InDelta(t, want.Rho, got.Rho, 0.02, "%s rho", optType)
	}
}

func TestAmericanGreeks(t *testing.T) {
	engine := GreeksEngine{}
	res, err := engine.American(greeksParams, 200, 1)
	require.NoError(t, err)

	call, put := res[models.Call], res[models.Put]
	assert.Greater(t, call.Delta, 0.0)
	assert.Less(t, put.Delta, 0.0)
	assert.Greater(t, call.Vega, 0.0)
	assert.Greater(t, put.Vega, 0.0)
	assert.Greater(t, call.Rho, 0.0)
	assert.Less(t, put.Rho, 0.0)

	bs, err := BlackScholesGreeks(greeksParams, models.Call)
	require.NoError(t, err)
	assert.InDelta(t, bs.Delta, call.Delta, 0.02)
	assert.InDelta(t, bs.Vega, call.Vega, 0.02)
}

func TestGreeksDeterministicAcrossWorkers(t *testing.T) {
	sequential := GreeksEngine{Seed: 69, Workers: 1}
	parallel := GreeksEngine{Seed: 69, Workers: 8}

	a, err := sequential.European(greeksParams, 5000, 0)
	require.NoError(t, err)
	b, err := parallel.European(greeksParams, 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := sequential.American(greeksParams, 100, 0)
	require.NoError(t, err)
	d, err := parallel.American(greeksParams, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, c, d)
}

func TestGreeksDownBumpFloor(t *testing.T) {
	// sigma below the bump size and a tiny spot both hit the floor instead of failing.
	p := models.MarketParameters{S0: 0.5, K: 1, T: 0.5, R: 0.05, Sigma: 0.005}
	_, err := GreeksEngine{}.American(p, 50, 1)
	require.NoError(t, err)

	s := bumpScenarios(p, bumps{spot: 1, sigma: sigmaBump, rate: rateBump, maturity: p.T * maturityBumpFactor})
	assert.Equal(t, bumpFloor, s[spotDown].S0)
	assert.Equal(t, bumpFloor, s[sigmaDown].Sigma)
	assert.InDelta(t, 0.0499, s[rateDown].R, 1e-12)
	assert.InDelta(t, 0.4995, s[maturityDown].T, 1e-12)
}

func TestGreeksErrors(t *testing.T) {
	engine := GreeksEngine{}

	zeroT := greeksParams
	zeroT.T = 0
	_, err := engine.European(zeroT, 100, 0)
	assert.True(t, errors.Is(err, models.ErrInvalidParameter))

	zeroS := greeksParams
	zeroS.S0 = 0
	_, err = engine.American(zeroS, 100, 0)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = engine.European(greeksParams, 0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	_, err = engine.American(greeksParams, 0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}
