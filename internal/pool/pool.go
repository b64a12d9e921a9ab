package pool

import (
	"sort"
	"sync"

	"inferd/pkg/types"
)

// Pool owns the loaded-model map and the active-model pointer.
type Pool struct {
	cfg Config

	mu      sync.RWMutex
	models  map[string]*LoadedModel
	active  string
	loading map[string]chan struct{} // single-flight guard per model id

	globalCh chan struct{} // counting semaphore: global generation allowance
	reserved int           // allowance slots consumed by ReduceConcurrency
	cpuOnly  bool          // force GPULayers=0 on subsequent loads

	stats map[string]usageRecord // persisted usage metadata by model id
}

// New constructs a Pool from Config.
func New(cfg Config) *Pool {
	cfg.applyDefaults()
	p := &Pool{
		cfg:      cfg,
		models:   make(map[string]*LoadedModel),
		loading:  make(map[string]chan struct{}),
		globalCh: make(chan struct{}, cfg.MaxConcurrent),
		stats:    make(map[string]usageRecord),
	}
	p.loadUsageMetadata()
	return p
}

// Active returns the active model id, empty when nothing is loaded.
func (p *Pool) Active() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Has reports whether the model id is currently loaded.
func (p *Pool) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.models[id]
	return ok
}

// Len returns the number of loaded models.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.models)
}

// LoadedIDs returns the loaded model ids in name order.
func (p *Pool) LoadedIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.models))
	for id := range p.models {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UsageFor returns lifetime usage metadata for a model: live counters
// when it is loaded, otherwise the persisted record from past loads.
// Used to enrich registry listings.
func (p *Pool) UsageFor(id string) (types.ModelUsage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if lm, ok := p.models[id]; ok {
		return types.ModelUsage{
			Queries:         lm.Queries,
			TokensGenerated: lm.TokensGenerated,
			AvgLatencyMS:    lm.AvgLatencyMS,
			LastUsed:        lm.LastUsed.Unix(),
		}, true
	}
	rec, ok := p.stats[id]
	if !ok {
		return types.ModelUsage{}, false
	}
	return types.ModelUsage{
		Queries:         rec.Queries,
		TokensGenerated: rec.TokensGenerated,
		AvgLatencyMS:    rec.AvgLatencyMS,
		LastUsed:        rec.LastUsedUnix,
	}, true
}
