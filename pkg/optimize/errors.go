package optimize

import "errors"

var (
	// ErrNotConverged is returned when the iteration budget runs out
	// before the step size drops below tolerance.
	ErrNotConverged = errors.New("optimize: not converged")

	// ErrNumericFailure is returned when a gradient, Hessian, or solve
	// produces non-finite values, typically from parameters leaving the
	// likelihood's support.
	ErrNumericFailure = errors.New("optimize: numeric failure")
)
