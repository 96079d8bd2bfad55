package probability

import "gonum.org/v1/gonum/stat"

// ExerciseProfile describes when simulated American paths were exercised.
type ExerciseProfile struct {
	Times         []float64 `json:"times"` // Years from inception
	MeanTime      float64   `json:"mean_time"`
	EarlyFraction float64   `json:"early_fraction"` // Share exercised before maturity
}

func NewExerciseProfile(exerciseTime []int, dt float64, steps int) (ExerciseProfile, error) {
	if len(exerciseTime) == 0 {
		return ExerciseProfile{}, ErrEmptySample
	}

	times := make([]float64, len(exerciseTime))
	early := 0
	for i, et := range exerciseTime {
		times[i] = float64(et) * dt
		if et < steps {
			early++
		}
	}

	return ExerciseProfile{
		Times:         times,
		MeanTime:      stat.Mean(times, nil),
		EarlyFraction: float64(early) / float64(len(exerciseTime)),
	}, nil
}
