package probability

import (
	"fmt"
	"sort"

	"github.com/bcdannyboy/optpricer/models"
	"gonum.org/v1/gonum/stat"
)

// PositionPnL is the expiry profit of a long option bought for premium, per simulated terminal spot.
func PositionPnL(optType models.OptionType, strike, premium float64, terminal []float64) ([]float64, error) {
	payoff, err := optType.PayoffFunc()
	if err != nil {
		return nil, err
	}
	pnl := make([]float64, len(terminal))
	for i, s := range terminal {
		pnl[i] = payoff(s, strike) - premium
	}
	return pnl, nil
}

func sortedLosses(pnl []float64, confidence float64) ([]float64, error) {
	if len(pnl) == 0 {
		return nil, ErrEmptySample
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("confidence must be in (0, 1), got %g", confidence)
	}

	losses := make([]float64, len(pnl))
	for i, v := range pnl {
		losses[i] = -v // Convert profit to loss
	}
	sort.Float64s(losses)
	return losses, nil
}

// ValueAtRisk returns the loss not exceeded with the given confidence.
func ValueAtRisk(pnl []float64, confidence float64) (float64, error) {
	losses, err := sortedLosses(pnl, confidence)
	if err != nil {
		return 0, err
	}
	return stat.Quantile(confidence, stat.Empirical, losses, nil), nil
}

// ExpectedShortfall averages the losses at or beyond the VaR.
func ExpectedShortfall(pnl []float64, confidence float64) (float64, error) {
	losses, err := sortedLosses(pnl, confidence)
	if err != nil {
		return 0, err
	}
	v := stat.Quantile(confidence, stat.Empirical, losses, nil)
	i := sort.SearchFloat64s(losses, v)
	return stat.Mean(losses[i:], nil), nil
}

type RiskSummary struct {
	Confidence        float64 `json:"confidence"`
	ValueAtRisk       float64 `json:"value_at_risk"`
	ExpectedShortfall float64 `json:"expected_shortfall"`
	ProbabilityProfit float64 `json:"probability_of_profit"`
}

func Risk(pnl []float64, confidence float64) (RiskSummary, error) {
	v, err := ValueAtRisk(pnl, confidence)
	if err != nil {
		return RiskSummary{}, err
	}
	es, err := ExpectedShortfall(pnl, confidence)
	if err != nil {
		return RiskSummary{}, err
	}

	wins := 0
	for _, x := range pnl {
		if x > 0 {
			wins++
		}
	}
	return RiskSummary{
		Confidence:        confidence,
		ValueAtRisk:       v,
		ExpectedShortfall: es,
		ProbabilityProfit: float64(wins) / float64(len(pnl)),
	}, nil
}
