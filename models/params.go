package models

import (
	"fmt"
	"math"
)

// MarketParameters describes a single vanilla option under Black-Scholes dynamics.
type MarketParameters struct {
	S0    float64 `json:"s0"`    // Spot
	K     float64 `json:"k"`     // Strike
	T     float64 `json:"t"`     // Maturity in years
	R     float64 `json:"r"`     // Continuously compounded risk-free rate
	Q     float64 `json:"q"`     // Continuous dividend yield
	Sigma float64 `json:"sigma"` // Volatility
}

func (p MarketParameters) Validate() error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"S0", p.S0, true},
		{"K", p.K, true},
		{"T", p.T, true},
		{"r", p.R, false},
		{"q", p.Q, false},
		{"sigma", p.Sigma, true},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, f.name)
		}
		if f.positive && f.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidParameter, f.name, f.value)
		}
	}
	return nil
}

// ValidateAnalytic checks the closed-form domain, which needs sigma*sqrt(T) > 0.
func (p MarketParameters) ValidateAnalytic() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.T <= 0 {
		return fmt.Errorf("%w: T must be positive, got %g", ErrInvalidParameter, p.T)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive, got %g", ErrInvalidParameter, p.Sigma)
	}
	return nil
}

// SimulationConfig holds the sizing knobs of the numerical pricers.
type SimulationConfig struct {
	Paths int `json:"paths"`
	Steps int `json:"steps"`
	Nodes int `json:"nodes"`
}

func (c SimulationConfig) ValidateMonteCarlo() error {
	if c.Paths < 1 {
		return fmt.Errorf("%w: paths must be at least 1, got %d", ErrInvalidConfig, c.Paths)
	}
	return nil
}

func (c SimulationConfig) ValidateLSMC() error {
	if err := c.ValidateMonteCarlo(); err != nil {
		return err
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidConfig, c.Steps)
	}
	return nil
}

func (c SimulationConfig) ValidateLattice() error {
	if c.Nodes < 1 {
		return fmt.Errorf("%w: nodes must be at least 1, got %d", ErrInvalidConfig, c.Nodes)
	}
	return nil
}
