package report

import (
	"math"

	"github.com/bcdannyboy/optpricer/analysis"
	"github.com/bcdannyboy/optpricer/models"
	"github.com/bcdannyboy/optpricer/probability"
	"github.com/shopspring/decimal"
)

// Rounder rounds reported values half away from zero to Places decimals.
// A negative Places leaves values at full precision.
type Rounder struct {
	Places int32
}

func sanitizeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (r Rounder) Float(f float64) float64 {
	f = sanitizeFloat(f)
	if r.Places < 0 {
		return f
	}
	return decimal.NewFromFloat(f).Round(r.Places).InexactFloat64()
}

func (r Rounder) Floats(values []float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = r.Float(v)
	}
	return out
}

func (r Rounder) Greeks(g models.Greeks) models.Greeks {
	return models.Greeks{
		Delta: r.Float(g.Delta),
		Gamma: r.Float(g.Gamma),
		Vega:  r.Float(g.Vega),
		Rho:   r.Float(g.Rho),
		Theta: r.Float(g.Theta),
	}
}

func (r Rounder) GreeksByTag(m map[string]models.Greeks) map[string]models.Greeks {
	if m == nil {
		return nil
	}
	out := make(map[string]models.Greeks, len(m))
	for tag, g := range m {
		out[tag] = r.Greeks(g)
	}
	return out
}

// Histogram rounds bin edges and the marker; counts are exact.
func (r Rounder) Histogram(h probability.Histogram) probability.Histogram {
	out := probability.Histogram{
		Edges:  r.Floats(h.Edges),
		Counts: h.Counts,
	}
	if h.Marker != nil {
		out = out.WithMarker(r.Float(*h.Marker))
	}
	return out
}

func (r Rounder) Sweep(s analysis.Sweep) analysis.Sweep {
	points := make([]analysis.SweepPoint, len(s.Points))
	for i, pt := range s.Points {
		points[i] = analysis.SweepPoint{
			X:            r.Float(pt.X),
			MonteCarlo:   r.Float(pt.MonteCarlo),
			BlackScholes: r.Float(pt.BlackScholes),
		}
	}
	s.Points = points
	return s
}

func (r Rounder) Profile(p analysis.GreeksProfile) analysis.GreeksProfile {
	points := make([]analysis.ProfilePoint, len(p.Points))
	for i, pt := range p.Points {
		points[i] = analysis.ProfilePoint{Spot: r.Float(pt.Spot), Greeks: r.GreeksByTag(pt.Greeks)}
	}
	p.Points = points
	return p
}
