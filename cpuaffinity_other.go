//go:build !linux

package morphbench

import "fmt"

// PinToCPUs is only supported on Linux, asking for cores elsewhere is an error
func PinToCPUs(cores []int) (func(), error) {

	if len(cores) == 0 {
		return func() {}, nil
	}

	return nil, fmt.Errorf("%w: CPU pinning is only supported on linux", ErrInvalidParameter)
}

// CPUAffinity is not available outside of Linux
func CPUAffinity() ([]int, error) {
	return nil, fmt.Errorf("CPU affinity is only supported on linux")
}
