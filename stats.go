package morphbench

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimingSummary is the reduction of the repeated rounds of one
// (operation, backend, sweep value) triple.  All times are milliseconds per
// call.
type TimingSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Rounds is the number of rounds reduced
	Rounds int
	// Number is the batch size each round was run with
	Number int
	// Samples holds the per call time of each round in milliseconds
	Samples []float64
	// Count is the number of labels of a labelling kernel, zero otherwise
	Count int
}

// Summarize converts the total elapsed time of each round into per call
// milliseconds and reduces them.  The standard deviation is the population
// standard deviation, so a single round has a deviation of zero.
func Summarize(rounds []time.Duration, n int) (TimingSummary, error) {

	if len(rounds) == 0 || n < 1 {
		return TimingSummary{}, fmt.Errorf("%w: %d rounds of %d calls",
			ErrInvalidParameter, len(rounds), n)
	}

	perCall := make([]float64, len(rounds))

	for i, d := range rounds {
		perCall[i] = d.Seconds() / float64(n) * 1000
	}

	mean, std := stat.PopMeanStdDev(perCall, nil)

	if len(perCall) == 1 {
		std = 0
	}

	s := TimingSummary{
		Mean:    mean,
		StdDev:  std,
		Min:     floats.Min(perCall),
		Max:     floats.Max(perCall),
		Rounds:  len(rounds),
		Number:  n,
		Samples: perCall,
	}

	// floating point summation can place the mean a few ulps outside the range
	// when every round took the same time
	if s.Mean < s.Min {
		s.Mean = s.Min
	}

	if s.Mean > s.Max {
		s.Mean = s.Max
	}

	return s, nil
}
