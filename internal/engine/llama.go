//go:build llama

package engine

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"inferd/pkg/types"
)

// llamaBackend loads models in-process through go-llama.cpp.
type llamaBackend struct {
	defaultCtx     int
	defaultThreads int
	capability     Capability
}

// NewLlamaBackend constructs the in-process llama backend. GPU capability is
// resolved once here: offload is offered only when an NVIDIA driver stack is
// visible on the host.
func NewLlamaBackend(defaultCtx, defaultThreads int) Backend {
	cap := CapabilityCPUOnly
	if _, err := exec.LookPath("nvidia-smi"); err == nil {
		cap = CapabilityGPU
	}
	return &llamaBackend{defaultCtx: defaultCtx, defaultThreads: defaultThreads, capability: cap}
}

func (b *llamaBackend) Capability() Capability { return b.capability }

func (b *llamaBackend) Load(ctx context.Context, cfg types.ModelConfig) (Handle, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("model path is empty")
	}
	ctxSize := cfg.CtxSize
	if ctxSize <= 0 {
		ctxSize = b.defaultCtx
	}
	mo := []llama.ModelOption{
		llama.SetContext(ctxSize),
		llama.SetMMap(!cfg.NoMMap),
	}
	if cfg.BatchSize > 0 {
		mo = append(mo, llama.SetNBatch(cfg.BatchSize))
	}
	if cfg.GPULayers > 0 && b.capability == CapabilityGPU {
		mo = append(mo, llama.SetGPULayers(cfg.GPULayers))
	}
	if cfg.MLock {
		mo = append(mo, llama.EnableMLock)
	}
	// llama.New blocks while mapping and warming the weights; there is no
	// cancellation hook in the binding, so honor ctx only before starting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := llama.New(cfg.Path, mo...)
	if err != nil {
		return nil, err
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = b.defaultThreads
	}
	return &llamaHandle{model: m, threads: threads}, nil
}

// llamaHandle owns one loaded model.
type llamaHandle struct {
	model   *llama.LLama
	threads int
}

func (h *llamaHandle) Complete(ctx context.Context, prompt string, params types.SamplingParams) (Result, error) {
	if h.model == nil {
		return Result{}, errors.New("llama model not initialized")
	}
	completionTokens := 0
	h.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		completionTokens++
		return true
	})
	text, err := h.model.Predict(prompt, predictOptions(params, h.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	// Prompt token count is not exposed by the binding; approximate from
	// whitespace-separated words so usage totals stay monotonic.
	promptTokens := len(strings.Fields(prompt))
	return Result{
		Text: text,
		Usage: types.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		FinishReason: "stop",
	}, nil
}

func (h *llamaHandle) Close() error {
	if h.model != nil {
		h.model.Free()
		h.model = nil
	}
	return nil
}

func predictOptions(params types.SamplingParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(nz(params.MaxTokens, 256)),
		llama.SetThreads(nz(threads, 1)),
		llama.SetTopP(nzf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(nz(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(nzf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(nzf(params.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}

func nz(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nzf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
