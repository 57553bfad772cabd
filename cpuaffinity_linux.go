//go:build linux

package morphbench

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// maxCPUs is the number of cores a unix.CPUSet can describe
const maxCPUs = 1024

// PinToCPUs locks the calling goroutine to its OS thread and restricts that
// thread to the given CPU cores, eg: []int{4,5,6,7}.  Timing on a fixed set of
// cores avoids results moving between fast and slow cores on big.LITTLE
// systems.  The returned function restores the previous mask and unlocks the
// thread.
func PinToCPUs(cores []int) (func(), error) {

	if len(cores) == 0 {
		return func() {}, nil
	}

	set, err := CPUCoreMask(cores)

	if err != nil {
		return nil, err
	}

	runtime.LockOSThread()

	var prev unix.CPUSet

	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}, nil
}

// CPUAffinity returns the cores the calling thread may run on
func CPUAffinity() ([]int, error) {

	var set unix.CPUSet

	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	var cores []int

	for i := 0; i < maxCPUs && len(cores) < set.Count(); i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}

	return cores, nil
}

// CPUCoreMask builds the affinity set of the given core numbers
func CPUCoreMask(cores []int) (unix.CPUSet, error) {

	var set unix.CPUSet
	set.Zero()

	for _, core := range cores {
		if core < 0 || core >= maxCPUs {
			return set, fmt.Errorf("%w: invalid CPU core %d", ErrInvalidParameter, core)
		}

		set.Set(core)
	}

	return set, nil
}
