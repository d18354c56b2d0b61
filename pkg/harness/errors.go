package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCount is returned for counts outside [1, MaxRequests].
	ErrInvalidCount = errors.New("invalid request count")
	// ErrUnknownWorkload is returned for workload names the harness does not know.
	ErrUnknownWorkload = errors.New("unknown workload")
)

// TransportError reports a request that never got a response.
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v (make sure the service at %s is running)", e.Err, e.Target)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Hint returns the operator-facing advice for e.
func (e *TransportError) Hint() string {
	return fmt.Sprintf("make sure the service at %s is running", e.Target)
}
