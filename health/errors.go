package health

import "errors"

var (
	// ErrNilProber indicates an aggregator was constructed without a prober.
	ErrNilProber = errors.New("health: prober is required")

	// ErrTargetNotFound indicates a named dependency is not configured.
	ErrTargetNotFound = errors.New("health: target not found")

	// ErrInternalFault indicates an unexpected fault inside aggregation or
	// rendering. It is caught at the boundary and never crashes the process.
	ErrInternalFault = errors.New("health: internal fault")
)
