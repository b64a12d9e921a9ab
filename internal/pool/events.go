package pool

// Lifecycle event names published by the pool.
const (
	EventLoadStart   = "load_start"
	EventLoadReady   = "load_ready"
	EventLoadError   = "load_error"
	EventUnloadDone  = "unload_done"
	EventSwapActive  = "swap_active"
	EventReloadDone  = "reload_done"
	EventReloadError = "reload_error"
)

// Event is one pool lifecycle notification: a name, the model it concerns
// and free-form key/value context.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// newEvent builds an Event from alternating key/value pairs.
func newEvent(name, modelID string, kv ...any) Event {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return Event{Name: name, ModelID: modelID, Fields: fields}
}

// EventPublisher consumes pool events. Publish runs on the pool's caller
// goroutines and must return quickly without panicking.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher drops everything; it is the default when no publisher is
// configured.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
