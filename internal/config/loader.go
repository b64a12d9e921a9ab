package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"inferd/pkg/types"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	// Addr is the listen address of the read-only diagnostics endpoint.
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// CacheDir holds recoverable scratch data; disk recovery may clean it.
	CacheDir     string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`

	// Pool limits.
	MaxLoadedModels int `json:"max_loaded_models" yaml:"max_loaded_models" toml:"max_loaded_models"`
	MaxConcurrent   int `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	MaxQueueDepth   int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSec      int `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`

	// Engine defaults applied to models registered without explicit values.
	CtxSize int `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	Threads int `json:"threads" yaml:"threads" toml:"threads"`

	// Conversation shaping.
	ConversationWindow int    `json:"conversation_window" yaml:"conversation_window" toml:"conversation_window"`
	SystemPrompt       string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`

	// Resource monitor.
	MonitorIntervalSec  int `json:"monitor_interval_sec" yaml:"monitor_interval_sec" toml:"monitor_interval_sec"`
	HistoryRetentionSec int `json:"history_retention_sec" yaml:"history_retention_sec" toml:"history_retention_sec"`
	HistoryMaxSamples   int `json:"history_max_samples" yaml:"history_max_samples" toml:"history_max_samples"`
	// Thresholds keyed by resource type name (cpu, memory, disk, gpu).
	// Unlisted types get the stock 70/85/95 boundaries.
	Thresholds map[string]types.ResourceThresholds `json:"thresholds" yaml:"thresholds" toml:"thresholds"`

	// Recovery & eviction.
	InactivityTimeoutSec int `json:"inactivity_timeout_sec" yaml:"inactivity_timeout_sec" toml:"inactivity_timeout_sec"`
	RecoveryCooldownSec  int `json:"recovery_cooldown_sec" yaml:"recovery_cooldown_sec" toml:"recovery_cooldown_sec"`
	RecoveryMaxAttempts  int `json:"recovery_max_attempts" yaml:"recovery_max_attempts" toml:"recovery_max_attempts"`

	// StatusCacheTTLSec bounds how stale the composite status view may be.
	StatusCacheTTLSec int `json:"status_cache_ttl_sec" yaml:"status_cache_ttl_sec" toml:"status_cache_ttl_sec"`

	// Logging: level (debug/info/warn/error) and format (console/json).
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Defaults applied for fields left unset.
const (
	DefaultAddr                = ":8090"
	DefaultModelsDir           = "~/models/llm"
	DefaultMaxLoadedModels     = 2
	DefaultMaxConcurrent       = 2
	DefaultMaxQueueDepth       = 32
	DefaultMaxWait             = 30 * time.Second
	DefaultCtxSize             = 2048
	DefaultThreads             = 4
	DefaultConversationWindow  = 10
	DefaultMonitorInterval     = 30 * time.Second
	DefaultHistoryRetention    = 24 * time.Hour
	DefaultHistoryMaxSamples   = 1000
	DefaultInactivityTimeout   = 30 * time.Minute
	DefaultRecoveryCooldown    = 5 * time.Minute
	DefaultRecoveryMaxAttempts = 3
	DefaultStatusCacheTTL      = 5 * time.Second
)

// DefaultSystemPrompt is the preamble every conversation starts with.
const DefaultSystemPrompt = "You are a helpful assistant running on an offline appliance. " +
	"Answer concisely and never claim access to the internet."

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field and returns the completed config.
func (c Config) ApplyDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.MaxLoadedModels <= 0 {
		c.MaxLoadedModels = DefaultMaxLoadedModels
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWaitSec <= 0 {
		c.MaxWaitSec = int(DefaultMaxWait / time.Second)
	}
	if c.CtxSize <= 0 {
		c.CtxSize = DefaultCtxSize
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads
	}
	if c.ConversationWindow <= 0 {
		c.ConversationWindow = DefaultConversationWindow
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.MonitorIntervalSec <= 0 {
		c.MonitorIntervalSec = int(DefaultMonitorInterval / time.Second)
	}
	if c.HistoryRetentionSec <= 0 {
		c.HistoryRetentionSec = int(DefaultHistoryRetention / time.Second)
	}
	if c.HistoryMaxSamples <= 0 {
		c.HistoryMaxSamples = DefaultHistoryMaxSamples
	}
	if c.InactivityTimeoutSec <= 0 {
		c.InactivityTimeoutSec = int(DefaultInactivityTimeout / time.Second)
	}
	if c.RecoveryCooldownSec <= 0 {
		c.RecoveryCooldownSec = int(DefaultRecoveryCooldown / time.Second)
	}
	if c.RecoveryMaxAttempts <= 0 {
		c.RecoveryMaxAttempts = DefaultRecoveryMaxAttempts
	}
	if c.StatusCacheTTLSec <= 0 {
		c.StatusCacheTTLSec = int(DefaultStatusCacheTTL / time.Second)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	return c
}

// MaxWait converts the queue wait limit to a duration.
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitSec) * time.Second }

// MonitorInterval converts the monitor tick to a duration.
func (c Config) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalSec) * time.Second
}

// HistoryRetention converts the history window to a duration.
func (c Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionSec) * time.Second
}

// InactivityTimeout converts the idle-eviction timeout to a duration.
func (c Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSec) * time.Second
}

// RecoveryCooldown converts the recovery cooldown to a duration.
func (c Config) RecoveryCooldown() time.Duration {
	return time.Duration(c.RecoveryCooldownSec) * time.Second
}

// StatusCacheTTL converts the status cache TTL to a duration.
func (c Config) StatusCacheTTL() time.Duration {
	return time.Duration(c.StatusCacheTTLSec) * time.Second
}

// ThresholdsFor resolves the configured thresholds for one resource type,
// falling back to the stock defaults.
func (c Config) ThresholdsFor(rt types.ResourceType) types.ResourceThresholds {
	if t, ok := c.Thresholds[string(rt)]; ok {
		return t
	}
	return types.DefaultThresholds()
}
