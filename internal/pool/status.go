package pool

import (
	"sort"

	"inferd/pkg/types"
)

// Status returns a point-in-time snapshot of the pool: every loaded and
// in-flight-loading model plus the concurrency allowance.
func (p *Pool) Status() types.PoolStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	models := make([]types.LoadedModelStatus, 0, len(p.models)+len(p.loading))
	for id, lm := range p.models {
		models = append(models, types.LoadedModelStatus{
			ID:              id,
			Name:            lm.Config.DisplayName(),
			State:           "ready",
			Active:          id == p.active,
			LoadedAt:        lm.LoadedAt.Unix(),
			LastUsed:        lm.LastUsed.Unix(),
			Queries:         lm.Queries,
			TokensGenerated: lm.TokensGenerated,
			AvgLatencyMS:    lm.AvgLatencyMS,
			QueueLen:        len(lm.queueCh),
			Inflight:        len(lm.genCh),
			MaxQueueDepth:   cap(lm.queueCh),
			CtxSize:         lm.Config.CtxSize,
			GPULayers:       lm.Config.GPULayers,
		})
	}
	for id := range p.loading {
		if _, ok := p.models[id]; ok {
			continue
		}
		models = append(models, types.LoadedModelStatus{ID: id, Name: id, State: "loading"})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	return types.PoolStatus{
		Models:        models,
		ActiveModel:   p.active,
		LoadedCount:   len(p.models),
		MaxLoaded:     p.cfg.MaxLoaded,
		MaxConcurrent: p.cfg.MaxConcurrent,
		Reserved:      p.reserved,
		CPUOnly:       p.cpuOnly,
	}
}
