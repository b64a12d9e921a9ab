//go:build !llama

package engine

// No-CGO stub compiled when the 'llama' build tag is not set. It refuses to
// load anything rather than mock inference in production binaries.

import (
	"context"

	"inferd/pkg/types"
)

const stubMsg = "llama support not built (missing 'llama' build tag)"

type llamaBackend struct{}

// NewLlamaBackend returns the stub backend. The signature matches the real
// adapter so callers never branch on build tags themselves.
func NewLlamaBackend(defaultCtx, defaultThreads int) Backend {
	return &llamaBackend{}
}

func (b *llamaBackend) Capability() Capability { return CapabilityUnavailable }

func (b *llamaBackend) Load(ctx context.Context, cfg types.ModelConfig) (Handle, error) {
	return nil, ErrUnavailable(stubMsg)
}
