package report

import (
	"fmt"
	"os"
	"time"

	"github.com/bcdannyboy/optpricer/analysis"
	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/probability"
	"github.com/xhhuango/json"
)

type Exercise struct {
	MeanTime      float64               `json:"mean_time"`
	EarlyFraction float64               `json:"early_fraction"`
	Times         probability.Histogram `json:"times"`
	Payoffs       probability.Histogram `json:"payoffs"`
}

// Report is the numeric document handed to the presentation layer.
type Report struct {
	GeneratedAt  time.Time                `json:"generated_at"`
	Style        string                   `json:"style"`
	OptionType   string                   `json:"option_type"`
	Parameters   models.MarketParameters  `json:"parameters"`
	Simulation   models.SimulationConfig  `json:"simulation"`
	Seed         uint64                   `json:"seed"`
	Method       string                   `json:"method"`
	Price        float64                  `json:"price"`
	StdErr       float64                  `json:"std_err,omitempty"`
	Reference    map[string]float64       `json:"reference,omitempty"`
	GreeksMethod string                   `json:"greeks_method"`
	Greeks       map[string]models.Greeks `json:"greeks"`

	Terminal *probability.Histogram   `json:"terminal_prices,omitempty"`
	Summary  *probability.Summary     `json:"terminal_summary,omitempty"`
	Risk     *probability.RiskSummary `json:"risk,omitempty"`
	Exercise *Exercise                `json:"exercise,omitempty"`

	Sweeps  []analysis.Sweep        `json:"sweeps,omitempty"`
	Profile *analysis.GreeksProfile `json:"greeks_profile,omitempty"`
}

// Round returns a copy of rep with every computed value rounded.
func (r Rounder) Round(rep Report) Report {
	rep.Price = r.Float(rep.Price)
	rep.StdErr = r.Float(rep.StdErr)
	if rep.Reference != nil {
		ref := make(map[string]float64, len(rep.Reference))
		for k, v := range rep.Reference {
			ref[k] = r.Float(v)
		}
		rep.Reference = ref
	}
	rep.Greeks = r.GreeksByTag(rep.Greeks)

	if rep.Terminal != nil {
		h := r.Histogram(*rep.Terminal)
		rep.Terminal = &h
	}
	if rep.Summary != nil {
		s := *rep.Summary
		s.Mean, s.StdDev, s.StdErr = r.Float(s.Mean), r.Float(s.StdDev), r.Float(s.StdErr)
		s.Min, s.Max = r.Float(s.Min), r.Float(s.Max)
		rep.Summary = &s
	}
	if rep.Risk != nil {
		k := *rep.Risk
		k.ValueAtRisk, k.ExpectedShortfall = r.Float(k.ValueAtRisk), r.Float(k.ExpectedShortfall)
		k.ProbabilityProfit = r.Float(k.ProbabilityProfit)
		rep.Risk = &k
	}
	if rep.Exercise != nil {
		e := Exercise{
			MeanTime:      r.Float(rep.Exercise.MeanTime),
			EarlyFraction: r.Float(rep.Exercise.EarlyFraction),
			Times:         r.Histogram(rep.Exercise.Times),
			Payoffs:       r.Histogram(rep.Exercise.Payoffs),
		}
		rep.Exercise = &e
	}

	if rep.Sweeps != nil {
		sweeps := make([]analysis.Sweep, len(rep.Sweeps))
		for i, s := range rep.Sweeps {
			sweeps[i] = r.Sweep(s)
		}
		rep.Sweeps = sweeps
	}
	if rep.Profile != nil {
		p := r.Profile(*rep.Profile)
		rep.Profile = &p
	}
	return rep
}

func Encode(rep Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

func Write(path string, rep Report) error {
	data, err := Encode(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
