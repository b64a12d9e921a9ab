package pool

import (
	"encoding/json"
	"os"
	"time"
)

// usageRecord is the on-disk shape of per-model lifetime usage. Counters
// survive restarts; timestamps are advisory only.
type usageRecord struct {
	LastUsedUnix    int64   `json:"last_used_unix"`
	Queries         int64   `json:"queries"`
	TokensGenerated int64   `json:"tokens_generated"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
}

func (p *Pool) loadUsageMetadata() {
	if p.cfg.StatsPath == "" {
		return
	}
	f, err := os.Open(p.cfg.StatsPath)
	if err != nil {
		return
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var data map[string]usageRecord
	if err := dec.Decode(&data); err == nil {
		p.stats = data
	}
}

// rememberUsageLocked folds a live model's counters into the stats map.
// Callers hold the write lock.
func (p *Pool) rememberUsageLocked(id string, lm *LoadedModel) {
	p.stats[id] = usageRecord{
		LastUsedUnix:    lm.LastUsed.Unix(),
		Queries:         lm.Queries,
		TokensGenerated: lm.TokensGenerated,
		AvgLatencyMS:    lm.AvgLatencyMS,
	}
}

// saveUsageMetadata writes the stats map, with still-loaded models folded
// in at their current counters. Best effort; stats are advisory.
func (p *Pool) saveUsageMetadata() {
	if p.cfg.StatsPath == "" {
		return
	}
	p.mu.RLock()
	snap := make(map[string]usageRecord, len(p.stats)+len(p.models))
	for id, rec := range p.stats {
		snap[id] = rec
	}
	for id, lm := range p.models {
		last := lm.LastUsed
		if last.IsZero() {
			last = time.Now()
		}
		snap[id] = usageRecord{
			LastUsedUnix:    last.Unix(),
			Queries:         lm.Queries,
			TokensGenerated: lm.TokensGenerated,
			AvgLatencyMS:    lm.AvgLatencyMS,
		}
	}
	p.mu.RUnlock()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(p.cfg.StatsPath, b, 0o644)
}

// SaveUsage flushes usage metadata to disk. Called on shutdown.
func (p *Pool) SaveUsage() {
	p.saveUsageMetadata()
}
