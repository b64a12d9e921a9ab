//go:build !llama

package engine

import (
	"context"
	"testing"

	"inferd/pkg/types"
)

func TestStubLoadUnavailable(t *testing.T) {
	b := NewLlamaBackend(2048, 4)
	_, err := b.Load(context.Background(), types.ModelConfig{ID: "m1", Path: "/tmp/m1.gguf"})
	if err == nil || !IsUnavailable(err) {
		t.Fatalf("expected unavailable error from stub, got %v", err)
	}
}

func TestStubCapability(t *testing.T) {
	b := NewLlamaBackend(2048, 4)
	if got := b.Capability(); got != CapabilityUnavailable {
		t.Fatalf("expected %s, got %s", CapabilityUnavailable, got)
	}
}

func TestIsUnavailableOnlyMatchesOwnType(t *testing.T) {
	if IsUnavailable(context.Canceled) {
		t.Fatalf("context.Canceled must not classify as unavailable")
	}
	if !IsUnavailable(ErrUnavailable("x")) {
		t.Fatalf("constructor result must classify as unavailable")
	}
}
