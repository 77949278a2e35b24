package probe

import "errors"

var (
	// ErrTimeout indicates no answer arrived before the probe deadline.
	ErrTimeout = errors.New("probe: timeout")

	// ErrConnectionFailed indicates the transport could not reach the service.
	ErrConnectionFailed = errors.New("probe: connection failed")

	// ErrUnexpectedResponse indicates a response arrived but failed shape
	// validation (non-2xx, undecodable body, or missing status field).
	ErrUnexpectedResponse = errors.New("probe: unexpected response")

	// ErrInvalidTarget indicates a target failed validation.
	ErrInvalidTarget = errors.New("probe: invalid target")
)

// Kind returns the wire label for a probe error. Unknown errors are
// reported as an internal fault rather than leaked verbatim.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConnectionFailed):
		return "connection_failed"
	case errors.Is(err, ErrUnexpectedResponse):
		return "unexpected_response"
	default:
		return "internal_fault"
	}
}
