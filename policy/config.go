package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// hashLength is the length of the config hash in hex characters.
const hashLength = 16

// ScheduledWrite programs the shadow limit at a given simulation cycle.
type ScheduledWrite struct {
	Cycle int    `yaml:"cycle"`
	Limit uint32 `yaml:"limit"`
}

// Config holds the operator-facing risk policy: the enable flag, the
// limit programmed at start of run, and optional scheduled limit changes.
// All of it reaches the core through the register interface; the policy
// layer never touches core state directly.
type Config struct {
	Enable bool             `yaml:"enable"`
	Limit  uint32           `yaml:"limit"`
	Writes []ScheduledWrite `yaml:"writes,omitempty"`
}

// DefaultConfig returns the policy matching the core's power-on state.
func DefaultConfig() *Config {
	return &Config{
		Enable: true,
		Limit:  1000,
	}
}

// LoadConfig loads a policy from a YAML file. A missing file returns
// defaults; invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read policy %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse policy %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the schedule for obvious mistakes.
func (c *Config) Validate() error {
	for i, w := range c.Writes {
		if w.Cycle < 0 {
			return fmt.Errorf("writes[%d]: cycle must be non-negative", i)
		}
	}
	return nil
}

// Hash returns a short fingerprint of the policy used to detect changes
// across hot reloads.
func (c *Config) Hash() string {
	if c == nil {
		return ""
	}
	input := fmt.Sprintf("%t-%d", c.Enable, c.Limit)
	for _, w := range c.Writes {
		input += fmt.Sprintf("-%d:%d", w.Cycle, w.Limit)
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:hashLength]
}
