package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bcdannyboy/optpricer/cache"
	"github.com/bcdannyboy/optpricer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingCache struct{ gets, sets int }

func (f *failingCache) Get(context.Context, string) ([]byte, bool, error) {
	f.gets++
	return nil, false, errors.New("connection refused")
}

func (f *failingCache) Set(context.Context, string, []byte) error {
	f.sets++
	return errors.New("connection refused")
}

func TestPriceEuropeanCached(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	e := New(WithCache(mem), WithLogger(quietLogger()))

	first, err := e.PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 1000, "Call")
	require.NoError(t, err)
	assert.Len(t, first.TerminalPrices, 1000)
	assert.Equal(t, 1, mem.Len())

	second, err := e.PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 1000, "Call")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mem.Len())

	_, err = e.PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 1000, "Put")
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len())
}

func TestSeedChangesResult(t *testing.T) {
	ctx := context.Background()
	a, err := New(WithSeed(1)).PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 500, "Call")
	require.NoError(t, err)
	b, err := New(WithSeed(2)).PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 500, "Call")
	require.NoError(t, err)
	assert.NotEqual(t, a.Price, b.Price)
	assert.Equal(t, uint64(DefaultSeed), New().Seed())
}

func TestCacheFailureIsNotFatal(t *testing.T) {
	fc := &failingCache{}
	e := New(WithCache(fc), WithLogger(quietLogger()))

	price, err := e.PriceAmericanBinomial(context.Background(), 100, 95, 0.25, 0.05, 0.01, 0.25, 100, "Put")
	require.NoError(t, err)
	assert.Greater(t, price, 0.0)
	assert.Equal(t, 1, fc.gets)
	assert.Equal(t, 1, fc.sets)
}

func TestPriceAmericanLSMC(t *testing.T) {
	e := New(WithCache(cache.NewMemory()), WithLogger(quietLogger()))
	quote, err := e.PriceAmericanLSMC(context.Background(), 100, 95, 0.25, 0.05, 0.01, 0.25, 2000, 20, "Put")
	require.NoError(t, err)
	assert.Len(t, quote.Cashflow, 2000)
	assert.Len(t, quote.ExerciseTime, 2000)
	assert.InDelta(t, 0.25/20, quote.Dt, 1e-15)

	again, err := e.PriceAmericanLSMC(context.Background(), 100, 95, 0.25, 0.05, 0.01, 0.25, 2000, 20, "Put")
	require.NoError(t, err)
	assert.Equal(t, quote, again)
}

func TestPriceBlackScholes(t *testing.T) {
	e := New()
	price, err := e.PriceBlackScholes(context.Background(), 100, 100, 1, 0.05, 0, 0.2, "Call")
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, price, 1e-3)

	_, err = e.PriceBlackScholes(context.Background(), 100, 100, 0, 0.05, 0, 0.2, "Call")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestGreeksReturnBothTypes(t *testing.T) {
	ctx := context.Background()
	e := New(WithLogger(quietLogger()))

	eu, err := e.GreeksEuropean(ctx, 100, 95, 0.05, 0.01, 0.25, 0.25, 2000, "Put", 0)
	require.NoError(t, err)
	require.Contains(t, eu, "Call")
	require.Contains(t, eu, "Put")
	assert.InDelta(t, eu["Call"].Gamma, eu["Put"].Gamma, 1e-8)

	am, err := e.GreeksAmerican(ctx, 100, 95, 0.05, 0.01, 0.25, 0.25, 100, "Call", 0)
	require.NoError(t, err)
	assert.Len(t, am, 2)
	assert.Less(t, am["Put"].Delta, 0.0)
}

func TestEntryPointErrors(t *testing.T) {
	ctx := context.Background()
	e := New()

	_, err := e.PriceEuropean(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 100, "Straddle")
	assert.ErrorIs(t, err, models.ErrInvalidOptionType)
	_, err = e.GreeksEuropean(ctx, 100, 95, 0.05, 0.01, 0.25, 0.25, 100, "call", 0)
	assert.ErrorIs(t, err, models.ErrInvalidOptionType)
	_, err = e.GreeksAmerican(ctx, 100, 95, 0.05, 0.01, 0.25, 0.25, 0, "Call", 0)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
	_, err = e.PriceAmericanLSMC(ctx, 100, 95, 0.25, 0.05, 0.01, 0.25, 100, 0, "Put")
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.PriceAmericanBinomial(cancelled, 100, 95, 0.25, 0.05, 0.01, 0.25, 10, "Put")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepsAndProfile(t *testing.T) {
	ctx := context.Background()
	e := New(WithLogger(quietLogger()), WithWorkers(2))
	p := models.MarketParameters{S0: 100, K: 95, T: 0.25, R: 0.05, Q: 0.01, Sigma: 0.25}

	sweeps, err := e.Sweeps(ctx, p, models.Call, 500, nil)
	require.NoError(t, err)
	assert.Len(t, sweeps, 3)

	prof, err := e.GreeksProfile(ctx, models.American, p, 30, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "American", prof.Style)
}
