package models

import (
	"fmt"
	"math"
)

// OptionType selects the payoff of a vanilla option.
type OptionType int

const (
	Call OptionType = iota
	Put
)

// ExerciseStyle controls whether a lattice allows early exercise.
type ExerciseStyle int

const (
	European ExerciseStyle = iota
	American
)

// PayoffFunc returns the intrinsic value of an option at the given spot.
type PayoffFunc func(spot, strike float64) float64

func callPayoff(spot, strike float64) float64 { return math.Max(spot-strike, 0) }

func putPayoff(spot, strike float64) float64 { return math.Max(strike-spot, 0) }

// OptionTypes lists every supported option type in reporting order.
func OptionTypes() []OptionType {
	return []OptionType{Call, Put}
}

func ParseOptionType(tag string) (OptionType, error) {
	switch tag {
	case "Call":
		return Call, nil
	case "Put":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOptionType, tag)
}

func (o OptionType) Valid() bool {
	return o == Call || o == Put
}

func (o OptionType) String() string {
	switch o {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return fmt.Sprintf("OptionType(%d)", int(o))
}

// PayoffFunc resolves the payoff strategy once so hot loops avoid branching on the type.
func (o OptionType) PayoffFunc() (PayoffFunc, error) {
	switch o {
	case Call:
		return callPayoff, nil
	case Put:
		return putPayoff, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidOptionType, o)
}

// Payoff panics on an unknown option type; validate with Valid first.
func (o OptionType) Payoff(spot, strike float64) float64 {
	payoff, err := o.PayoffFunc()
	if err != nil {
		panic(err)
	}
	return payoff(spot, strike)
}

func (o OptionType) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptionType, o)
	}
	return []byte(o.String()), nil
}

func (o *OptionType) UnmarshalText(text []byte) error {
	parsed, err := ParseOptionType(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func ParseExerciseStyle(tag string) (ExerciseStyle, error) {
	switch tag {
	case "European":
		return European, nil
	case "American":
		return American, nil
	}
	return 0, fmt.Errorf("%w: unknown exercise style %q", ErrInvalidConfig, tag)
}

func (s ExerciseStyle) String() string {
	if s == American {
		return "American"
	}
	return "European"
}
