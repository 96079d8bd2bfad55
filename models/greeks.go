package models

// Greeks are reported in trading units: vega and rho per 1% move, theta per trading day.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`
}

type GreeksResult map[OptionType]Greeks

// ByTag keys the result by the literal tags "Call" and "Put".
func (g GreeksResult) ByTag() map[string]Greeks {
	out := make(map[string]Greeks, len(g))
	for t, greeks := range g {
		out[t.String()] = greeks
	}
	return out
}
