package registry

// notRegisteredError is the uniform not-found class for model ids: unknown
// id on lookup, and registration attempts whose model file is missing.
type notRegisteredError struct {
	id     string
	detail string
}

func (e notRegisteredError) Error() string {
	if e.detail != "" {
		return "model not registered: " + e.id + ": " + e.detail
	}
	return "model not registered: " + e.id
}

// ErrNotRegistered returns the error for an unknown model id.
func ErrNotRegistered(id string) error { return notRegisteredError{id: id} }

// ErrMissingModelFile returns the registration error for a config whose
// model file does not exist on disk.
func ErrMissingModelFile(id, path string) error {
	return notRegisteredError{id: id, detail: "model file not found: " + path}
}

// IsNotRegistered reports whether err belongs to the not-registered class.
func IsNotRegistered(err error) bool {
	_, ok := err.(notRegisteredError)
	return ok
}
