package fluid

import "errors"

// Domain errors for solver operations.
var (
	// ErrInvalidParams indicates a parameter value outside its valid range.
	ErrInvalidParams = errors.New("fluid: invalid parameter")

	// ErrCapacityExceeded indicates an insert would grow the particle store
	// past its fixed capacity.
	ErrCapacityExceeded = errors.New("fluid: particle capacity exceeded")
)
