// Package engine exposes the pricers behind string-tagged entry points, with
// structured logging and memoization of results.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/bcdannyboy/optpricer/cache"
	"github.com/bcdannyboy/optpricer/models"
	"github.com/xhhuango/json"
)

const DefaultSeed = 69

type Engine struct {
	cache   cache.Cache
	logger  *slog.Logger
	seed    uint64
	workers int
}

type Option func(*Engine)

// WithCache memoizes results. Every computation is deterministic for a given seed.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithWorkers bounds concurrent re-pricings. Results do not depend on it.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		seed:   DefaultSeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Seed() uint64 { return e.seed }

func params(S0, K, T, r, q, sigma float64) models.MarketParameters {
	return models.MarketParameters{S0: S0, K: K, T: T, R: r, Q: q, Sigma: sigma}
}

func (e *Engine) key(method string, tags []string, values ...float64) string {
	return cache.Key(method, tags, append(values, float64(e.seed))...)
}

// cached returns the memoized value for key or computes and stores it.
// Cache failures are logged and never fail the call.
func cached[T any](ctx context.Context, e *Engine, method, key string, compute func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	start := time.Now()

	if e.cache != nil {
		raw, ok, err := e.cache.Get(ctx, key)
		switch {
		case err != nil:
			e.logger.Warn("cache lookup failed", "method", method, "error", err)
		case ok:
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				e.logger.Warn("cache entry undecodable", "method", method, "error", err)
				break
			}
			e.logger.Debug("served from cache", "method", method, "key", key)
			return v, nil
		}
	}

	v, err := compute()
	if err != nil {
		return zero, err
	}
	e.logger.Debug("computed", "method", method, "elapsed", time.Since(start))

	if e.cache != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			e.logger.Warn("cache encode failed", "method", method, "error", err)
			return v, nil
		}
		if err := e.cache.Set(ctx, key, raw); err != nil {
			e.logger.Warn("cache store failed", "method", method, "error", err)
		}
	}
	return v, nil
}
