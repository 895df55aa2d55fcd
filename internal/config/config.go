// Package config loads the forwarder configuration from KONEY_* environment
// variables. Every knob has a default suitable for an in-cluster deployment
// next to a standard Tetragon install.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// ListenAddr is the bind address of the forwarder HTTP server.
	ListenAddr string `env:"KONEY_LISTEN_ADDR, default=:8080"`

	// AgentNamespace is where the Tetragon agent pods run.
	AgentNamespace string `env:"KONEY_AGENT_NAMESPACE, default=kube-system"`

	// AgentPodSelector selects the Tetragon agent pods whose export
	// containers are tailed.
	AgentPodSelector string `env:"KONEY_AGENT_POD_SELECTOR, default=app.kubernetes.io/name=tetragon"`

	// AgentExportContainer is the container emitting the JSON event export.
	AgentExportContainer string `env:"KONEY_AGENT_EXPORT_CONTAINER, default=export-stdout"`

	// SinkNamespace is where DeceptionAlertSink objects and their credential
	// secrets live.
	SinkNamespace string `env:"KONEY_SINK_NAMESPACE, default=koney-system"`

	// LookbackSeconds bounds how far back each log tail reaches. Must cover
	// the debounce interval plus scheduling slack, or events are missed.
	LookbackSeconds int `env:"KONEY_LOOKBACK_SECONDS, default=60"`

	// DebounceInterval is the quiet period between a trigger and the run it
	// schedules.
	DebounceInterval time.Duration `env:"KONEY_DEBOUNCE_INTERVAL, default=5s"`

	// MaxDeferral caps how long a continuous trigger stream can postpone a
	// run.
	MaxDeferral time.Duration `env:"KONEY_MAX_DEFERRAL, default=60s"`

	// DedupCacheSize bounds the line-hash deduplication cache.
	DedupCacheSize int `env:"KONEY_DEDUP_CACHE_SIZE, default=8192"`

	// SinkTimeout bounds a single delivery attempt to an external sink.
	SinkTimeout time.Duration `env:"KONEY_SINK_TIMEOUT, default=25s"`

	// TriggerRateLimit is the sustained trigger rate (per second) accepted
	// on the webhook endpoint before it starts replying 429.
	TriggerRateLimit float64 `env:"KONEY_TRIGGER_RATE_LIMIT, default=10"`

	// TriggerRateBurst is the burst allowance on top of TriggerRateLimit.
	TriggerRateBurst int `env:"KONEY_TRIGGER_RATE_BURST, default=20"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.LookbackSeconds <= 0 {
		return fmt.Errorf("lookback must be positive, got %d", c.LookbackSeconds)
	}
	if c.DebounceInterval <= 0 {
		return fmt.Errorf("debounce interval must be positive, got %s", c.DebounceInterval)
	}
	if c.MaxDeferral < c.DebounceInterval {
		return fmt.Errorf("max deferral %s must not undercut the debounce interval %s",
			c.MaxDeferral, c.DebounceInterval)
	}
	if c.DedupCacheSize <= 0 {
		return fmt.Errorf("dedup cache size must be positive, got %d", c.DedupCacheSize)
	}
	return nil
}
