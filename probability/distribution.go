package probability

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptySample = errors.New("empty sample")

type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	StdErr float64 `json:"std_err"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptySample
	}

	s := Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s, nil
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.StdErr = s.StdDev / math.Sqrt(float64(len(values)))
	return s, nil
}

// Histogram counts values into equal-width bins. Edges has one more entry than Counts.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
	Marker *float64  `json:"marker,omitempty"` // Reference line, e.g. the strike
}

func NewHistogram(values []float64, bins int) (Histogram, error) {
	if len(values) == 0 {
		return Histogram{}, ErrEmptySample
	}
	if bins < 1 {
		return Histogram{}, fmt.Errorf("histogram needs at least one bin, got %d", bins)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// The last bin is closed on the right.
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	return Histogram{
		Edges:  edges,
		Counts: stat.Histogram(nil, edges, sorted, nil),
	}, nil
}

// WithMarker returns a copy of h annotated with a reference value.
func (h Histogram) WithMarker(x float64) Histogram {
	h.Marker = &x
	return h
}
