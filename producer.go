package main

import (
	"math/rand"

	"github.com/example/sentinel_sim/core"
)

// ProducerStats tracks upstream traffic generation.
type ProducerStats struct {
	Offered  int // records first presented on the stream
	Accepted int // records transferred (valid and ready in the same cycle)
	Groups   int // groups started
}

// Producer drives the inbound stream. It honors the stream contract:
// payload and last are held stable while valid is asserted and ready has
// not yet been observed.
type Producer struct {
	rng        *rand.Rand
	rate       float64
	dangerRate float64
	groupMin   int
	groupMax   int
	dest       uint16

	cur   core.Record
	valid bool
	left  int // records remaining in the current group, including cur when valid

	stats ProducerStats
}

// NewProducer creates a traffic generator from config.
func NewProducer(cfg *Config, rng *rand.Rand) *Producer {
	groupMin := cfg.GroupSizeMin
	if groupMin < 1 {
		groupMin = 1
	}
	groupMax := cfg.GroupSizeMax
	if groupMax < groupMin {
		groupMax = groupMin
	}
	return &Producer{
		rng:        rng,
		rate:       cfg.RequestRate,
		dangerRate: cfg.DangerRate,
		groupMin:   groupMin,
		groupMax:   groupMax,
		dest:       cfg.DestID,
	}
}

// Drive returns the record presented this cycle. limit is the producer's
// view of the programmed limit, used only to shape safe versus dangerous
// amounts; the core enforces its own active copy.
func (p *Producer) Drive(limit uint64) (core.Record, bool) {
	if p.valid {
		// held stable under backpressure
		return p.cur, true
	}
	if p.left == 0 {
		if p.rng.Float64() >= p.rate {
			return core.Record{}, false
		}
		p.left = p.groupMin
		if p.groupMax > p.groupMin {
			p.left += p.rng.Intn(p.groupMax - p.groupMin + 1)
		}
		p.stats.Groups++
	}
	p.cur = core.Record{
		Payload: core.MakePayload(p.genAmount(limit), p.dest),
		Last:    p.left == 1,
	}
	p.valid = true
	p.stats.Offered++
	return p.cur, true
}

// genAmount picks a safe amount in [1, limit] or a dangerous one in
// (limit, 10*limit].
func (p *Producer) genAmount(limit uint64) uint64 {
	if limit < 1 {
		limit = 1
	}
	if p.rng.Float64() < p.dangerRate {
		return limit + 1 + uint64(p.rng.Int63n(int64(limit*9)))
	}
	return 1 + uint64(p.rng.Int63n(int64(limit)))
}

// Observe consumes the handshake result for the cycle just executed.
func (p *Producer) Observe(inReady bool) {
	if p.valid && inReady {
		p.valid = false
		p.left--
		p.stats.Accepted++
	}
}

// Presenting reports whether a record is currently held on the stream.
func (p *Producer) Presenting() bool {
	return p.valid
}

// SnapshotStats returns a copy of the producer counters.
func (p *Producer) SnapshotStats() ProducerStats {
	return p.stats
}
