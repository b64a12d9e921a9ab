package service

import (
	"context"
	"fmt"
	"time"

	"inferd/internal/conversation"
	"inferd/internal/pool"
	"inferd/pkg/types"
)

// Generate answers one conversational query. The prompt is assembled
// from the session's recent turns; on success the exchange is appended
// to the session. New generations are refused outright while memory or
// GPU memory sits in the exhausted tier, so recovery can make headway.
func (s *Service) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResult, error) {
	if req.Query == "" {
		return types.GenerateResult{}, fmt.Errorf("generate: empty query")
	}
	for _, m := range s.monitor.Current() {
		if m.Tier != types.TierExhausted {
			continue
		}
		if m.Resource == types.ResourceMemory || m.Resource == types.ResourceGPU {
			return types.GenerateResult{}, ErrResourceExhausted(m)
		}
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = s.pool.Active()
	}
	if modelID == "" {
		return types.GenerateResult{}, pool.ErrNoModelLoaded()
	}

	sessionID := s.conv.Ensure(req.SessionID)
	prompt, err := s.conv.BuildPrompt(sessionID, req.Query)
	if err != nil {
		return types.GenerateResult{}, err
	}

	start := time.Now()
	res, err := s.pool.Generate(ctx, modelID, prompt, req.Sampling)
	if err != nil {
		// Failed generations leave the session history untouched.
		return types.GenerateResult{}, err
	}
	latency := float64(time.Since(start).Microseconds()) / 1000

	s.conv.Append(sessionID, req.Query, res.Text)

	return types.GenerateResult{
		SessionID:    sessionID,
		ModelID:      modelID,
		Text:         res.Text,
		Usage:        res.Usage,
		FinishReason: res.FinishReason,
		LatencyMS:    latency,
	}, nil
}

// History returns a session's messages, system preamble first. The
// returned slice is a copy.
func (s *Service) History(sessionID string) []conversation.Message {
	return s.conv.History(sessionID)
}

// ClearSession drops a session's history entirely.
func (s *Service) ClearSession(sessionID string) {
	s.conv.Clear(sessionID)
}
