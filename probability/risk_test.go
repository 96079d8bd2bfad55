package probability

import (
	"testing"

	"github.com/bcdannyboy/optpricer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionPnL(t *testing.T) {
	pnl, err := PositionPnL(models.Call, 100, 2, []float64{90, 100, 105})
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -2, 3}, pnl)

	_, err = PositionPnL(models.OptionType(8), 100, 2, []float64{1})
	assert.ErrorIs(t, err, models.ErrInvalidOptionType)
}

func TestValueAtRisk(t *testing.T) {
	pnl := make([]float64, 100)
	for i := range pnl {
		pnl[i] = float64(i - 49) // Losses run from 49 down to -50
	}

	v, err := ValueAtRisk(pnl, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 44.0, v)

	es, err := ExpectedShortfall(pnl, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 46.5, es)
	assert.GreaterOrEqual(t, es, v)
}

func TestRisk(t *testing.T) {
	r, err := Risk([]float64{-2, -2, -2, 3, 8}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.4, r.ProbabilityProfit)
	assert.Equal(t, 2.0, r.ValueAtRisk)
	assert.Equal(t, 0.5, r.Confidence)

	_, err = Risk(nil, 0.95)
	assert.ErrorIs(t, err, ErrEmptySample)
	_, err = Risk([]float64{1}, 1)
	assert.Error(t, err)
}
