// Package config loads the portal demo service's configuration: ring
// capacity, the uniprocessor publish toggle, and where to serve
// metrics.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zoxc-go/portal"
)

// PortalConfig configures a demo portal pair and the service wrapped
// around it.
type PortalConfig struct {
	// Capacity is the ring size per direction. Must be a power of
	// two; zero is normalized to portal.DefaultCapacity.
	Capacity uint64 `yaml:"capacity"`

	// Uniprocessor publishes the write counter immediately on every
	// Write instead of batching it behind Flush/Notify.
	Uniprocessor bool `yaml:"uniprocessor"`

	// MetricsAddr is the listen address for the Prometheus metrics
	// endpoint. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// ProducerBatch is how many messages the demo producer writes
	// before calling Notify.
	ProducerBatch int `yaml:"producer_batch"`
}

// Load reads and parses a PortalConfig from a YAML file at path.
func Load(path string) (*PortalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portal config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a PortalConfig from YAML bytes, applying defaults and
// validating the ring capacity.
func Parse(data []byte) (*PortalConfig, error) {
	cfg := &PortalConfig{
		Capacity:      portal.DefaultCapacity,
		ProducerBatch: 20,
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse portal config: %w", err)
	}

	if cfg.Capacity == 0 {
		cfg.Capacity = portal.DefaultCapacity
	}
	if cfg.Capacity&(cfg.Capacity-1) != 0 {
		return nil, fmt.Errorf("capacity %d is not a power of two", cfg.Capacity)
	}
	if cfg.ProducerBatch <= 0 {
		return nil, fmt.Errorf("producer_batch must be positive, got %d", cfg.ProducerBatch)
	}

	return cfg, nil
}
