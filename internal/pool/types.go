package pool

import (
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// LoadedModel is a live model: its config, native handle, and usage
// stats. Owned exclusively by the Pool; all fields are guarded by the
// pool mutex.
type LoadedModel struct {
	Config   types.ModelConfig
	LoadedAt time.Time
	LastUsed time.Time

	// usage stats
	Queries         int64
	TokensGenerated int64
	AvgLatencyMS    float64

	// handle lifecycle: generations pin the handle with refs; an unload
	// marks closed and the native release happens when refs drains to
	// zero. A nil handle means the release already ran.
	handle engine.Handle
	refs   int
	closed bool

	// admission primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
}

// busy reports whether the model has queued or in-flight work. Callers
// hold the pool mutex.
func (lm *LoadedModel) busy() bool {
	return lm.refs > 0 || len(lm.genCh) > 0 || len(lm.queueCh) > 0
}

// detachForClose marks the model closed and, when no generation holds
// the handle, detaches it for release. Callers hold the pool mutex and
// must Close a non-nil result after unlocking.
func (lm *LoadedModel) detachForClose() engine.Handle {
	lm.closed = true
	if lm.refs > 0 || lm.handle == nil {
		return nil
	}
	h := lm.handle
	lm.handle = nil
	return h
}
