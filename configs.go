package main

import (
	"github.com/example/sentinel_sim/core"
)

// NamedConfig represents a predefined simulation scenario
type NamedConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Config      *Config `json:"-"`
}

// GetPredefinedConfigs returns all available predefined scenarios
func GetPredefinedConfigs() []NamedConfig {
	return []NamedConfig{
		{
			Name:        "smoke",
			Description: "Short deterministic run: moderate traffic, consumer always ready",
			Config: &Config{
				TotalCycles:  400,
				Seed:         1,
				RequestRate:  0.6,
				DangerRate:   0.2,
				GroupSizeMin: 1,
				GroupSizeMax: 4,
				DestID:       0xBEEF,
				ReadyMode:    ReadyAlways,
				Headless:     false,
				VisualMode:   "web",
			},
		},
		{
			Name:        "backpressure",
			Description: "Slow consumer: random ready at 30%, verifies the cut-through slot holds data stable",
			Config: &Config{
				TotalCycles:  1000,
				Seed:         2,
				RequestRate:  0.9,
				DangerRate:   0.25,
				GroupSizeMin: 2,
				GroupSizeMax: 6,
				DestID:       0xBEEF,
				ReadyMode:    ReadyRandom,
				ReadyRate:    0.3,
				Headless:     false,
				VisualMode:   "web",
			},
		},
		{
			Name:        "hitless",
			Description: "Limit rewrites under sustained traffic: active limit may only move at safe boundaries",
			Config: &Config{
				TotalCycles:  2000,
				Seed:         3,
				RequestRate:  0.8,
				DangerRate:   0.3,
				GroupSizeMin: 2,
				GroupSizeMax: 8,
				DestID:       0xBEEF,
				ReadyMode:    ReadyRandom,
				ReadyRate:    0.7,
				RegisterOps: []RegisterOp{
					{Cycle: 200, Addr: core.AddrLimit, Data: 500},
					{Cycle: 600, Addr: core.AddrLimit, Data: 5000},
					{Cycle: 1000, Addr: core.AddrLimit, Data: 250},
					{Cycle: 1400, Addr: core.AddrLimit, Data: 1000},
					{Cycle: 1800, Read: true, Addr: core.AddrViolationCount},
				},
				Headless:   false,
				VisualMode: "web",
			},
		},
		{
			Name:        "fail_open",
			Description: "Disable and re-enable the filter mid-run: disabled stretches admit everything",
			Config: &Config{
				TotalCycles:  1200,
				Seed:         4,
				RequestRate:  0.8,
				DangerRate:   0.5,
				GroupSizeMin: 1,
				GroupSizeMax: 4,
				DestID:       0xBEEF,
				ReadyMode:    ReadyAlways,
				RegisterOps: []RegisterOp{
					{Cycle: 300, Addr: core.AddrCtrl, Data: 0x0},
					{Cycle: 700, Addr: core.AddrCtrl, Data: 0x1},
					{Cycle: 1100, Read: true, Addr: core.AddrSnapshotLo},
					{Cycle: 1100, Read: true, Addr: core.AddrSnapshotHi},
				},
				Headless:   false,
				VisualMode: "web",
			},
		},
		{
			Name:        "fuzz",
			Description: "Long randomized run with random ready and scattered limit rewrites, scoreboard-checked",
			Config: &Config{
				TotalCycles:  20000,
				Seed:         0, // time-seeded
				RequestRate:  0.75,
				DangerRate:   0.35,
				GroupSizeMin: 1,
				GroupSizeMax: 10,
				DestID:       0xBEEF,
				ReadyMode:    ReadyRandom,
				ReadyRate:    0.6,
				RegisterOps: []RegisterOp{
					{Cycle: 2000, Addr: core.AddrLimit, Data: 100},
					{Cycle: 5000, Addr: core.AddrLimit, Data: 100000},
					{Cycle: 8000, Addr: core.AddrCtrl, Data: 0x0},
					{Cycle: 11000, Addr: core.AddrCtrl, Data: 0x1},
					{Cycle: 14000, Addr: core.AddrLimit, Data: 777},
				},
				Headless:   true,
				VisualMode: "none",
			},
		},
	}
}

// GetConfigByName returns a copy of the Config for the named scenario.
// Returns nil if the scenario is not found.
func GetConfigByName(name string) *Config {
	for _, cfg := range GetPredefinedConfigs() {
		if cfg.Name != name {
			continue
		}
		original := cfg.Config
		if original == nil {
			return nil
		}
		cfgCopy := *original
		if original.RegisterOps != nil {
			cfgCopy.RegisterOps = make([]RegisterOp, len(original.RegisterOps))
			copy(cfgCopy.RegisterOps, original.RegisterOps)
		}
		if original.Plugins != nil {
			cfgCopy.Plugins = make([]string, len(original.Plugins))
			copy(cfgCopy.Plugins, original.Plugins)
		}
		return &cfgCopy
	}
	return nil
}
