// Package engine abstracts the native inference runtime. The pool owns
// which models are loaded; this package only knows how to turn a model
// config into a live handle and run completions against it.
//
// Two builds exist:
//
//   - Default (no tags): a no-CGO stub whose Load always fails with an
//     unavailable error and whose capability is Unavailable. Keeps CI and
//     development builds CGO-free.
//   - `-tags=llama`: the in-process go-llama.cpp adapter (llama.go plus the
//     cgo linker hints in llama_cgo.go).
package engine

import (
	"context"

	"inferd/pkg/types"
)

// Backend constructs live model handles. One Backend serves the process.
type Backend interface {
	// Load initializes the model at cfg.Path with cfg's structural
	// parameters. It blocks for the duration of native initialization.
	Load(ctx context.Context, cfg types.ModelConfig) (Handle, error)
	// Capability reports what this build of the engine can do. Resolved
	// once at construction, never probed per call.
	Capability() Capability
}

// Handle is a ready-to-run loaded model.
type Handle interface {
	// Complete runs one synchronous completion. Implementations return
	// early when ctx is canceled.
	Complete(ctx context.Context, prompt string, params types.SamplingParams) (Result, error)
	// Close releases the native resources. The handle is unusable after.
	Close() error
}

// Result is the outcome of one completion.
type Result struct {
	Text         string
	Usage        types.Usage
	FinishReason string
}

// Capability describes what the engine build can deliver.
type Capability string

const (
	// CapabilityUnavailable: no native runtime in this build.
	CapabilityUnavailable Capability = "unavailable"
	// CapabilityCPUOnly: native runtime present, no usable GPU.
	CapabilityCPUOnly Capability = "cpu_only"
	// CapabilityGPU: native runtime present and GPU offload is possible.
	CapabilityGPU Capability = "gpu_accelerated"
)
