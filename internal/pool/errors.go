package pool

import "fmt"

// tooBusyError signals admission queue overflow or wait timeout.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// IsTooBusy reports whether err indicates generation backpressure.
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// notLoadedError signals a generation or unload target that is not in
// the pool. An empty id means no model is loaded at all.
type notLoadedError struct{ id string }

func (e notLoadedError) Error() string {
	if e.id == "" {
		return "no model loaded"
	}
	return "model not loaded: " + e.id
}

// ErrNoModelLoaded constructs the empty-pool variant.
func ErrNoModelLoaded() error { return notLoadedError{} }

// ErrNotLoaded constructs a notLoadedError for a specific model id.
func ErrNotLoaded(id string) error { return notLoadedError{id: id} }

// IsNotLoaded reports whether err indicates an absent loaded model.
func IsNotLoaded(err error) bool {
	_, ok := err.(notLoadedError)
	return ok
}

// capacityExceededError signals a load refused because the pool is full.
type capacityExceededError struct {
	id     string
	loaded int
	max    int
}

func (e capacityExceededError) Error() string {
	return fmt.Sprintf("model pool full: cannot load %s (%d/%d loaded)", e.id, e.loaded, e.max)
}

// ErrCapacityExceeded constructs a capacityExceededError.
func ErrCapacityExceeded(id string, loaded, max int) error {
	return capacityExceededError{id: id, loaded: loaded, max: max}
}

// IsCapacityExceeded reports whether err indicates a full pool.
func IsCapacityExceeded(err error) bool {
	_, ok := err.(capacityExceededError)
	return ok
}

// initFailureError wraps a native engine load failure with the context
// needed to act on it: model id, file size, and available memory when
// known.
type initFailureError struct {
	id          string
	requiredMB  int
	availableMB int
	err         error
}

func (e initFailureError) Error() string {
	if e.availableMB > 0 {
		return fmt.Sprintf("engine init failed for %s (model ~%dMB, available %dMB): %v",
			e.id, e.requiredMB, e.availableMB, e.err)
	}
	return fmt.Sprintf("engine init failed for %s (model ~%dMB): %v", e.id, e.requiredMB, e.err)
}

func (e initFailureError) Unwrap() error { return e.err }

// IsInitFailure reports whether err indicates a failed native load.
func IsInitFailure(err error) bool {
	_, ok := err.(initFailureError)
	return ok
}

// inferenceFailedError wraps a native completion failure with the model
// id and prompt length for diagnostics.
type inferenceFailedError struct {
	modelID   string
	promptLen int
	err       error
}

func (e inferenceFailedError) Error() string {
	return fmt.Sprintf("inference failed for %s (prompt %d chars): %v", e.modelID, e.promptLen, e.err)
}

func (e inferenceFailedError) Unwrap() error { return e.err }

// IsInferenceFailed reports whether err indicates a native completion
// failure.
func IsInferenceFailed(err error) bool {
	_, ok := err.(inferenceFailedError)
	return ok
}
