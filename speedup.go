package morphbench

import (
	"fmt"
	"math"
	"sort"

	"github.com/TomTonic/rtcompare"
	"gonum.org/v1/gonum/stat"
)

const (
	// ConfidenceThreshold is the relative speed-up whose confidence is
	// reported for each point
	ConfidenceThreshold = 0.05
	// bootstrapResamples is the number of bootstrap resamples drawn when
	// comparing the round samples of two backends
	bootstrapResamples = 10000
)

// SpeedupPoint is the ratio of backend B's minimum time over backend A's at one
// sweep value.  A ratio above one means backend A is faster.
type SpeedupPoint struct {
	Value float64
	Ratio float64
	Log10 float64
	// Confidence is the bootstrap confidence that the faster backend beats the
	// slower one by at least ConfidenceThreshold.  It is NaN when the rounds
	// could not be compared.
	Confidence float64
}

// Speedup returns one point per sample where both backends were measured,
// skipping the others.  A zero minimum time for backend A yields
// ErrZeroMinimum instead of an infinite ratio, and a zero minimum for backend
// B yields it instead of a ratio of zero whose logarithm is undefined.
func Speedup(res *Result) ([]SpeedupPoint, error) {

	out := make([]SpeedupPoint, 0, len(res.Samples))

	for _, s := range res.Samples {
		if !s.Complete() {
			continue
		}

		if s.A.Min <= 0 {
			return nil, fmt.Errorf("%w: backend %s at %v", ErrZeroMinimum, res.BackendA, s.Value)
		}

		if s.B.Min <= 0 {
			return nil, fmt.Errorf("%w: backend %s at %v", ErrZeroMinimum, res.BackendB, s.Value)
		}

		ratio := s.B.Min / s.A.Min

		out = append(out, SpeedupPoint{
			Value:      s.Value,
			Ratio:      ratio,
			Log10:      math.Log10(ratio),
			Confidence: Confidence(s.A.Samples, s.B.Samples),
		})
	}

	return out, nil
}

// Confidence compares the per call round times of two backends and returns
// the confidence that the faster one, judged by the median, is at least
// ConfidenceThreshold faster.  Fewer than two rounds on either side, or a
// failed comparison, yield NaN.
func Confidence(a, b []float64) float64 {

	if len(a) < 2 || len(b) < 2 {
		return math.NaN()
	}

	fast, slow := a, b

	if median(b) < median(a) {
		fast, slow = b, a
	}

	res, err := rtcompare.CompareRuntimes(fast, slow, []float64{ConfidenceThreshold}, bootstrapResamples)

	if err != nil || len(res) == 0 {
		return math.NaN()
	}

	return res[0].Confidence
}

// median returns the middle value of v without modifying it
func median(v []float64) float64 {

	s := append([]float64(nil), v...)
	sort.Float64s(s)

	return stat.Quantile(0.5, stat.LinInterp, s, nil)
}
