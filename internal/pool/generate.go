package pool

import (
	"context"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Generate runs one completion against modelID, or the active model when
// modelID is empty. Per-call sampling overrides are merged over the model's
// stored defaults. Usage stats on the model are updated on success.
func (p *Pool) Generate(ctx context.Context, modelID, prompt string, params types.SamplingParams) (engine.Result, error) {
	id := modelID
	if id == "" {
		id = p.Active()
	}
	if id == "" {
		return engine.Result{}, ErrNoModelLoaded()
	}

	lm, handle, release, err := p.admit(ctx, id)
	if err != nil {
		return engine.Result{}, err
	}
	defer release()

	p.mu.RLock()
	merged := params.Overlay(lm.Config.Sampling)
	p.mu.RUnlock()

	start := time.Now()
	res, err := handle.Complete(ctx, prompt, merged)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			generationsTotal.WithLabelValues(id, "canceled").Inc()
			return engine.Result{}, ctx.Err()
		}
		generationsTotal.WithLabelValues(id, "error").Inc()
		p.cfg.Logger.Error().Err(err).Str("model", id).Msg("generation failed")
		return engine.Result{}, inferenceFailedError{modelID: id, promptLen: len(prompt), err: err}
	}

	p.mu.Lock()
	lm.Queries++
	lm.TokensGenerated += int64(res.Usage.CompletionTokens)
	ms := float64(elapsed.Milliseconds())
	lm.AvgLatencyMS += (ms - lm.AvgLatencyMS) / float64(lm.Queries)
	lm.LastUsed = time.Now()
	p.mu.Unlock()

	generationsTotal.WithLabelValues(id, "ok").Inc()
	generationSeconds.WithLabelValues(id).Observe(elapsed.Seconds())
	tokensTotal.WithLabelValues(id).Add(float64(res.Usage.CompletionTokens))

	p.cfg.Logger.Debug().
		Str("model", id).
		Int("prompt_chars", len(prompt)).
		Int("completion_tokens", res.Usage.CompletionTokens).
		Dur("took", elapsed).
		Msg("generation complete")
	return res, nil
}
