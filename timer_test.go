package morphbench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced Clock
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// costKernel returns a kernel that advances the clock by cost on each call
func costKernel(c *fakeClock, cost time.Duration) Kernel {
	return KernelFunc(func() error {
		c.advance(cost)
		return nil
	})
}

func TestCalibrateReachesThreshold(t *testing.T) {

	threshold := 200 * time.Millisecond

	for _, d := range []time.Duration{
		time.Microsecond,
		time.Millisecond,
		7 * time.Millisecond,
		30 * time.Millisecond,
		199 * time.Millisecond,
		250 * time.Millisecond,
	} {
		clock := newFakeClock()
		timer := NewTimer(clock, threshold)

		n, err := timer.Calibrate(costKernel(clock, d))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, time.Duration(n)*d, threshold, "call cost %s gave n=%d", d, n)
	}
}

func TestCalibrateSlowCallUsesOne(t *testing.T) {

	clock := newFakeClock()
	timer := NewTimer(clock, 200*time.Millisecond)

	n, err := timer.Calibrate(costKernel(clock, time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCalibrateUnmeasurableCall(t *testing.T) {

	clock := newFakeClock()
	timer := NewTimer(clock, 200*time.Millisecond)

	n, err := timer.Calibrate(costKernel(clock, 0))
	require.NoError(t, err)
	assert.Equal(t, FallbackNumber, n)
}

func TestCalibrateSingleCorrection(t *testing.T) {

	clock := newFakeClock()
	timer := NewTimer(clock, 100*time.Millisecond)
	calls := 0

	k := KernelFunc(func() error {
		calls++
		clock.advance(10 * time.Millisecond)
		return nil
	})

	n, err := timer.Calibrate(k)
	require.NoError(t, err)

	// one seed call plus one verification batch, never iterated further
	assert.Equal(t, 10, n)
	assert.Equal(t, 1+n, calls)
}

func TestCalibrateFailure(t *testing.T) {

	timer := NewTimer(newFakeClock(), 0)
	boom := errors.New("boom")

	_, err := timer.Calibrate(KernelFunc(func() error { return boom }))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCalibrationFailure)
	assert.ErrorIs(t, err, boom)
}

func TestRepeatReturnsEveryRound(t *testing.T) {

	clock := newFakeClock()
	timer := NewTimer(clock, 0)

	rounds, err := timer.Repeat(costKernel(clock, 3*time.Millisecond), 5, 7)
	require.NoError(t, err)
	require.Len(t, rounds, 7)

	for _, d := range rounds {
		assert.Equal(t, 15*time.Millisecond, d)
	}
}

func TestRepeatRecoversPanic(t *testing.T) {

	timer := NewTimer(newFakeClock(), 0)

	_, err := timer.Repeat(KernelFunc(func() error { panic("kernel too large") }), 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOperationFailure)
	assert.Contains(t, err.Error(), "kernel too large")
}

func TestRepeatInvalid(t *testing.T) {

	timer := NewTimer(nil, 0)

	_, err := timer.Repeat(KernelFunc(func() error { return nil }), 0, 3)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = timer.Repeat(KernelFunc(func() error { return nil }), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewTimerDefaults(t *testing.T) {
	timer := NewTimer(nil, 0)
	assert.Equal(t, DefaultThreshold, timer.Threshold())
}

func TestPerCallTimeScalesWithWorkload(t *testing.T) {

	if testing.Short() {
		t.Skip("sleep based timing test")
	}

	timer := NewTimer(nil, 20*time.Millisecond)

	measure := func(d time.Duration) float64 {
		k := KernelFunc(func() error {
			time.Sleep(d)
			return nil
		})

		n, err := timer.Calibrate(k)
		require.NoError(t, err)

		rounds, err := timer.Repeat(k, n, 3)
		require.NoError(t, err)

		s, err := Summarize(rounds, n)
		require.NoError(t, err)

		return s.Min
	}

	base := measure(2 * time.Millisecond)
	scaled := measure(6 * time.Millisecond)

	assert.InDelta(t, 3.0, scaled/base, 0.8, "base %.3fms scaled %.3fms", base, scaled)
}
