package recovery

import "fmt"

// escalatedError signals that a resource key has exhausted its attempt
// budget and automatic mitigation is suppressed until an external reset.
type escalatedError struct {
	resource string
	attempts int
}

func (e escalatedError) Error() string {
	return fmt.Sprintf("recovery escalated for %s after %d failed attempts", e.resource, e.attempts)
}

// ErrEscalated constructs an escalatedError.
func ErrEscalated(resource string, attempts int) error {
	return escalatedError{resource: resource, attempts: attempts}
}

// IsEscalated reports whether err indicates a suppressed, escalated
// resource key.
func IsEscalated(err error) bool {
	_, ok := err.(escalatedError)
	return ok
}
