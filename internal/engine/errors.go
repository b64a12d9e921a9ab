package engine

// unavailableError signals that the native runtime is missing from this
// build, so callers can answer "service unavailable" instead of "crashed".
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing native runtime.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
