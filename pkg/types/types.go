package types

// ModelConfig describes a registered model: where its weights live and how
// the engine should be initialized for it. Records are persisted by the
// registry and only mutated through an explicit update call.
type ModelConfig struct {
	// Stable identifier for the model.
	ID string `json:"id" yaml:"id" toml:"id"`
	// Human-friendly name. Defaults to the id when empty.
	Name string `json:"name,omitempty" yaml:"name" toml:"name"`
	// Absolute path to the model file on disk.
	Path string `json:"path" yaml:"path" toml:"path"`
	// Context window size in tokens.
	CtxSize int `json:"ctx_size,omitempty" yaml:"ctx_size" toml:"ctx_size"`
	// Number of layers offloaded to the GPU. 0 keeps the model on CPU.
	GPULayers int `json:"gpu_layers,omitempty" yaml:"gpu_layers" toml:"gpu_layers"`
	// Prompt processing batch size.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size" toml:"batch_size"`
	// Worker threads for token generation.
	Threads int `json:"threads,omitempty" yaml:"threads" toml:"threads"`
	// NoMMap disables memory-mapping the weights (mmap is on by default).
	NoMMap bool `json:"no_mmap,omitempty" yaml:"no_mmap" toml:"no_mmap"`
	// MLock pins the weights in RAM so they cannot be swapped out.
	MLock bool `json:"mlock,omitempty" yaml:"mlock" toml:"mlock"`
	// Sampling defaults applied when a generate call leaves a knob unset.
	Sampling SamplingParams `json:"sampling,omitempty" yaml:"sampling" toml:"sampling"`
}

// DisplayName returns Name, falling back to ID.
func (c ModelConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// SamplingParams captures generation parameters. Zero values mean "unset"
// and fall back to the model defaults (or the engine defaults below those).
type SamplingParams struct {
	Temperature   float32  `json:"temperature,omitempty" yaml:"temperature" toml:"temperature"`
	TopP          float32  `json:"top_p,omitempty" yaml:"top_p" toml:"top_p"`
	TopK          int      `json:"top_k,omitempty" yaml:"top_k" toml:"top_k"`
	RepeatPenalty float32  `json:"repeat_penalty,omitempty" yaml:"repeat_penalty" toml:"repeat_penalty"`
	MaxTokens     int      `json:"max_tokens,omitempty" yaml:"max_tokens" toml:"max_tokens"`
	Seed          int      `json:"seed,omitempty" yaml:"seed" toml:"seed"`
	Stop          []string `json:"stop,omitempty" yaml:"stop" toml:"stop"`
}

// Overlay merges p over def: any field set on p wins, any zero field falls
// back to def. Neither receiver nor argument is mutated.
func (p SamplingParams) Overlay(def SamplingParams) SamplingParams {
	out := def
	if p.Temperature > 0 {
		out.Temperature = p.Temperature
	}
	if p.TopP > 0 {
		out.TopP = p.TopP
	}
	if p.TopK > 0 {
		out.TopK = p.TopK
	}
	if p.RepeatPenalty > 0 {
		out.RepeatPenalty = p.RepeatPenalty
	}
	if p.MaxTokens > 0 {
		out.MaxTokens = p.MaxTokens
	}
	if p.Seed != 0 {
		out.Seed = p.Seed
	}
	if len(p.Stop) > 0 {
		out.Stop = p.Stop
	}
	return out
}

// ModelConfigUpdate is a partial update to a registered model config.
// Nil fields are left untouched.
type ModelConfigUpdate struct {
	Name      *string `json:"name,omitempty"`
	CtxSize   *int    `json:"ctx_size,omitempty"`
	GPULayers *int    `json:"gpu_layers,omitempty"`
	BatchSize *int    `json:"batch_size,omitempty"`
	Threads   *int    `json:"threads,omitempty"`
	NoMMap    *bool   `json:"no_mmap,omitempty"`
	MLock     *bool   `json:"mlock,omitempty"`
	// Sampling, when non-nil, replaces the stored sampling defaults wholesale.
	Sampling *SamplingParams `json:"sampling,omitempty"`
}

// Structural reports whether the update touches parameters baked into the
// native engine at load time. A loaded model must be reloaded for these.
func (u ModelConfigUpdate) Structural() bool {
	return u.CtxSize != nil || u.GPULayers != nil || u.BatchSize != nil ||
		u.Threads != nil || u.NoMMap != nil || u.MLock != nil
}

// Apply writes the set fields of u onto cfg.
func (u ModelConfigUpdate) Apply(cfg *ModelConfig) {
	if u.Name != nil {
		cfg.Name = *u.Name
	}
	if u.CtxSize != nil {
		cfg.CtxSize = *u.CtxSize
	}
	if u.GPULayers != nil {
		cfg.GPULayers = *u.GPULayers
	}
	if u.BatchSize != nil {
		cfg.BatchSize = *u.BatchSize
	}
	if u.Threads != nil {
		cfg.Threads = *u.Threads
	}
	if u.NoMMap != nil {
		cfg.NoMMap = *u.NoMMap
	}
	if u.MLock != nil {
		cfg.MLock = *u.MLock
	}
	if u.Sampling != nil {
		cfg.Sampling = *u.Sampling
	}
}

// Usage contains token accounting for one generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateRequest is a single generation call against the service.
type GenerateRequest struct {
	// Query is the new user turn. Required.
	Query string `json:"query"`
	// ModelID selects an explicit loaded model. Empty means the active model.
	ModelID string `json:"model_id,omitempty"`
	// SessionID names the conversation. Empty mints a fresh session.
	SessionID string `json:"session_id,omitempty"`
	// Sampling overrides merged over the model defaults for this call only.
	Sampling SamplingParams `json:"sampling,omitempty"`
}

// GenerateResult is the service-level outcome of a generation.
type GenerateResult struct {
	SessionID    string  `json:"session_id"`
	ModelID      string  `json:"model_id"`
	Text         string  `json:"text"`
	Usage        Usage   `json:"usage"`
	FinishReason string  `json:"finish_reason,omitempty"`
	LatencyMS    float64 `json:"latency_ms"`
}
