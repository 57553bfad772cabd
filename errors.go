package morphbench

import "errors"

var (
	// ErrInvalidParameter is returned for bad user input such as an unknown
	// operation, unknown backend or invalid growth mode.  It is fatal at startup.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOperationFailure marks a sweep point whose kernel could not be prepared
	// or returned an error (or panicked) while being timed.
	ErrOperationFailure = errors.New("operation failed")

	// ErrCalibrationFailure marks a sweep point where no workable batch size
	// could be found.
	ErrCalibrationFailure = errors.New("calibration failed")

	// ErrZeroMinimum is returned when a speed up is requested against a minimum
	// time of zero.
	ErrZeroMinimum = errors.New("minimum time is zero")

	// ErrBudgetExceeded marks sweep points skipped because the wall clock budget
	// of the run ran out.
	ErrBudgetExceeded = errors.New("sweep budget exceeded")
)
