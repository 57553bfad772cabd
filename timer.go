package morphbench

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultThreshold is the minimum duration of one calibrated batch
	DefaultThreshold = 200 * time.Millisecond
	// FallbackNumber is the batch size used when a single call is too fast for
	// the clock to measure
	FallbackNumber = 1
)

// Clock abstracts the wall clock so timing can be tested deterministically
type Clock interface {
	Now() time.Time
}

// wallClock reads the monotonic system clock
type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// WallClock returns the system clock
func WallClock() Clock {
	return wallClock{}
}

// Timer runs a Kernel in timed batches
type Timer struct {
	clock     Clock
	threshold time.Duration
}

// NewTimer returns a Timer that calibrates batches to last at least threshold.
// A nil clock uses the system clock.
func NewTimer(clock Clock, threshold time.Duration) *Timer {

	if clock == nil {
		clock = WallClock()
	}

	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Timer{
		clock:     clock,
		threshold: threshold,
	}
}

// Threshold returns the calibration threshold
func (t *Timer) Threshold() time.Duration {
	return t.threshold
}

// Calibrate picks the number of calls per batch so that one batch takes at
// least the threshold.  A single call is timed and the batch size is scaled up
// proportionally in one jump, after which one verification batch is run at the
// new size.  The verification is not iterated, a batch that still falls short
// because of timer noise is accepted.
func (t *Timer) Calibrate(k Kernel) (int, error) {

	elapsed, err := t.batch(k, 1)

	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCalibrationFailure, err)
	}

	if elapsed >= t.threshold {
		return 1, nil
	}

	if elapsed <= 0 {
		return FallbackNumber, nil
	}

	n := int(math.Ceil(float64(t.threshold) / float64(elapsed)))

	if n < 1 {
		n = 1
	}

	if _, err := t.batch(k, n); err != nil {
		return 0, fmt.Errorf("%w: batch of %d: %w", ErrCalibrationFailure, n, err)
	}

	return n, nil
}

// Repeat runs rounds independent batches of n calls and returns the total
// elapsed time of each batch
func (t *Timer) Repeat(k Kernel, n, rounds int) ([]time.Duration, error) {

	if n < 1 || rounds < 1 {
		return nil, fmt.Errorf("%w: number=%d repeat=%d", ErrInvalidParameter, n, rounds)
	}

	out := make([]time.Duration, 0, rounds)

	for i := 0; i < rounds; i++ {
		elapsed, err := t.batch(k, n)

		if err != nil {
			return nil, fmt.Errorf("%w: round %d: %w", ErrOperationFailure, i, err)
		}

		out = append(out, elapsed)
	}

	return out, nil
}

// batch times n back to back calls of the kernel.  A panic inside the kernel is
// returned as an error so a single bad point can not take down the sweep.
func (t *Timer) batch(k Kernel, n int) (elapsed time.Duration, err error) {

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel panic: %v", r)
		}
	}()

	start := t.clock.Now()

	for i := 0; i < n; i++ {
		if err = k.Run(); err != nil {
			return 0, err
		}
	}

	elapsed = t.clock.Now().Sub(start)

	if elapsed < 0 {
		elapsed = 0
	}

	return elapsed, nil
}
