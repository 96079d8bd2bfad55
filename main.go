package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcdannyboy/optpricer/analysis"
	"github.com/bcdannyboy/optpricer/cache"
	"github.com/bcdannyboy/optpricer/config"
	"github.com/bcdannyboy/optpricer/engine"
	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/probability"
	"github.com/bcdannyboy/optpricer/report"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

const (
	terminalBins = 50
	exerciseBins = 30
	payoffBins   = 60
	confidence   = 0.95
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.NewDependencies(ctx, config.WithLogger(os.Stderr, cfg.LogLevel))
	if err != nil {
		return err
	}
	defer deps.Close()
	logger := deps.Logger

	var store cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		if err := config.WithRedis(cfg.Redis.Addr, cfg.Redis.DB)(ctx, deps); err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "error", err)
		} else {
			store = cache.NewRedisCache(deps.Redis, cache.DefaultTTL)
		}
	}

	eng := engine.New(
		engine.WithCache(store),
		engine.WithLogger(logger),
		engine.WithSeed(cfg.Simulation.Seed),
		engine.WithWorkers(analysis.DefaultWorkers()),
	)

	style, err := models.ParseExerciseStyle(cfg.Style)
	if err != nil {
		return err
	}
	optType, err := models.ParseOptionType(cfg.OptionType)
	if err != nil {
		return err
	}

	m := cfg.Market
	rep := report.Report{
		GeneratedAt: time.Now(),
		Style:       style.String(),
		OptionType:  optType.String(),
		Parameters:  models.MarketParameters{S0: m.S0, K: m.K, T: m.T, R: m.R, Q: m.Q, Sigma: m.Sigma},
		Seed:        cfg.Simulation.Seed,
		Reference:   map[string]float64{},
	}

	start := time.Now()
	switch style {
	case models.European:
		err = priceEuropean(ctx, eng, cfg, &rep)
	case models.American:
		err = priceAmerican(ctx, eng, cfg, &rep)
	}
	if err != nil {
		return err
	}

	if cfg.Output.Sweeps {
		if err := runSweeps(ctx, eng, cfg, style, optType, &rep); err != nil {
			return err
		}
	}
	logger.Info("pricing complete", "style", style, "option_type", optType, "elapsed", time.Since(start))

	rep = report.Rounder{Places: cfg.Output.Decimals}.Round(rep)
	if err := report.Write(cfg.Output.Path, rep); err != nil {
		return err
	}

	fmt.Printf("%s %s option: S0=%.2f K=%.2f T=%.4f r=%.4f q=%.4f sigma=%.4f\n", rep.Style, rep.OptionType, m.S0, m.K, m.T, m.R, m.Q, m.Sigma)
	fmt.Printf("Price (%s): %v\n", rep.Method, rep.Price)
	for name, v := range rep.Reference {
		fmt.Printf("Reference (%s): %v\n", name, v)
	}
	for _, t := range models.OptionTypes() {
		g := rep.Greeks[t.String()]
		fmt.Printf("%s Greeks (%s): delta=%v gamma=%v vega=%v rho=%v theta=%v\n", t, rep.GreeksMethod, g.Delta, g.Gamma, g.Vega, g.Rho, g.Theta)
	}
	fmt.Printf("Results written to %s\n", cfg.Output.Path)
	return nil
}

func priceEuropean(ctx context.Context, eng *engine.Engine, cfg *config.Config, rep *report.Report) error {
	m, sim := cfg.Market, cfg.Simulation
	rep.Method = "monte_carlo"
	rep.GreeksMethod = "monte_carlo"
	rep.Simulation = models.SimulationConfig{Paths: sim.MCPaths}

	quote, err := eng.PriceEuropean(ctx, m.S0, m.K, m.T, m.R, m.Q, m.Sigma, sim.MCPaths, cfg.OptionType)
	if err != nil {
		return fmt.Errorf("european price: %w", err)
	}
	rep.Price, rep.StdErr = quote.Price, quote.StdErr

	if bs, err := eng.PriceBlackScholes(ctx, m.S0, m.K, m.T, m.R, m.Q, m.Sigma, cfg.OptionType); err == nil {
		rep.Reference["black_scholes"] = bs
	} else {
		slog.Warn("black-scholes reference skipped", "error", err)
	}

	rep.Greeks, err = eng.GreeksEuropean(ctx, m.S0, m.K, m.R, m.Q, m.Sigma, m.T, sim.MCPaths, cfg.OptionType, sim.Bump)
	if err != nil {
		return fmt.Errorf("european greeks: %w", err)
	}

	hist, err := probability.NewHistogram(quote.TerminalPrices, terminalBins)
	if err != nil {
		return err
	}
	hist = hist.WithMarker(m.K)
	rep.Terminal = &hist

	summary, err := probability.Summarize(quote.TerminalPrices)
	if err != nil {
		return err
	}
	rep.Summary = &summary

	optType, _ := models.ParseOptionType(cfg.OptionType)
	pnl, err := probability.PositionPnL(optType, m.K, quote.Price, quote.TerminalPrices)
	if err != nil {
		return err
	}
	risk, err := probability.Risk(pnl, confidence)
	if err != nil {
		return err
	}
	rep.Risk = &risk
	return nil
}

func priceAmerican(ctx context.Context, eng *engine.Engine, cfg *config.Config, rep *report.Report) error {
	m, sim := cfg.Market, cfg.Simulation
	rep.Method = "lsmc"
	rep.GreeksMethod = "binomial"
	rep.Simulation = models.SimulationConfig{Paths: sim.LSMCPaths, Steps: sim.LSMCSteps, Nodes: sim.Nodes}

	quote, err := eng.PriceAmericanLSMC(ctx, m.S0, m.K, m.T, m.R, m.Q, m.Sigma, sim.LSMCPaths, sim.LSMCSteps, cfg.OptionType)
	if err != nil {
		return fmt.Errorf("lsmc price: %w", err)
	}
	rep.Price = quote.Price

	binomial, err := eng.PriceAmericanBinomial(ctx, m.S0, m.K, m.T, m.R, m.Q, m.Sigma, sim.Nodes, cfg.OptionType)
	if err != nil {
		return fmt.Errorf("binomial price: %w", err)
	}
	rep.Reference["binomial"] = binomial

	rep.Greeks, err = eng.GreeksAmerican(ctx, m.S0, m.K, m.R, m.Q, m.Sigma, m.T, sim.Nodes, cfg.OptionType, sim.Bump)
	if err != nil {
		return fmt.Errorf("american greeks: %w", err)
	}

	profile, err := probability.NewExerciseProfile(quote.ExerciseTime, quote.Dt, sim.LSMCSteps)
	if err != nil {
		return err
	}
	times, err := probability.NewHistogram(profile.Times, exerciseBins)
	if err != nil {
		return err
	}
	payoffs, err := probability.NewHistogram(quote.Cashflow, payoffBins)
	if err != nil {
		return err
	}
	rep.Exercise = &report.Exercise{
		MeanTime:      profile.MeanTime,
		EarlyFraction: profile.EarlyFraction,
		Times:         times,
		Payoffs:       payoffs,
	}
	return nil
}

func runSweeps(ctx context.Context, eng *engine.Engine, cfg *config.Config, style models.ExerciseStyle, optType models.OptionType, rep *report.Report) error {
	size := cfg.Simulation.MCPaths
	total := analysis.ProfilePoints
	if style == models.European {
		total += len(analysis.SweepKinds()) * analysis.SweepPoints
	} else {
		size = cfg.Simulation.Nodes
	}

	// Create progress bar
	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Sweeps"),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
		),
	)

	err := func() error {
		if style == models.European {
			sweeps, err := eng.Sweeps(ctx, rep.Parameters, optType, size, bar)
			if err != nil {
				return err
			}
			rep.Sweeps = sweeps
		}
		prof, err := eng.GreeksProfile(ctx, style, rep.Parameters, size, cfg.Simulation.Bump, bar)
		if err != nil {
			return err
		}
		rep.Profile = &prof
		return nil
	}()
	if err != nil {
		bar.Abort(false)
	}
	p.Wait()
	return err
}
