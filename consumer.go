package main

import (
	"math/rand"

	"github.com/example/sentinel_sim/core"
)

// ConsumerStats tracks downstream acceptance.
type ConsumerStats struct {
	Forwarded int
}

// Consumer models the downstream sink of the filter. Its ready pattern is
// configurable so backpressure behavior can be exercised.
type Consumer struct {
	mode ReadyMode
	rate float64
	rng  *rand.Rand

	received []core.Record
	stats    ConsumerStats
}

// NewConsumer creates a consumer from config.
func NewConsumer(cfg *Config, rng *rand.Rand) *Consumer {
	mode := cfg.ReadyMode
	if mode == "" {
		mode = ReadyAlways
	}
	return &Consumer{
		mode: mode,
		rate: cfg.ReadyRate,
		rng:  rng,
	}
}

// Ready returns the ready signal for the current cycle.
func (c *Consumer) Ready() bool {
	switch c.mode {
	case ReadyNever:
		return false
	case ReadyRandom:
		return c.rng.Float64() < c.rate
	default:
		return true
	}
}

// Observe records a transfer when the presented output is accepted.
func (c *Consumer) Observe(rec core.Record, valid, ready bool) {
	if valid && ready {
		c.received = append(c.received, rec)
		c.stats.Forwarded++
	}
}

// Received returns the records accepted so far, in order.
func (c *Consumer) Received() []core.Record {
	out := make([]core.Record, len(c.received))
	copy(out, c.received)
	return out
}

// SnapshotStats returns a copy of the consumer counters.
func (c *Consumer) SnapshotStats() ConsumerStats {
	return c.stats
}
