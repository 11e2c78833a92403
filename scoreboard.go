package main

import (
	"github.com/example/sentinel_sim/core"
)

// Scoreboard is the reference model the simulator checks the core against
// every cycle. It mirrors the architectural rules independently of the
// core implementation: the shadow/active limit split, the safe-boundary
// promotion conditions, per-cycle forensic counting, and fail-open
// disable.
type Scoreboard struct {
	ctrl       uint32
	shadow     uint32
	active     uint64
	violations uint32
	snapshot   uint64
}

// NewScoreboard creates the model in the core's power-on state.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		ctrl:   core.DefaultCtrl,
		shadow: core.DefaultLimit,
		active: uint64(core.DefaultLimit),
	}
}

// Enabled reports the modeled enable flag.
func (m *Scoreboard) Enabled() bool {
	return m.ctrl&0x1 != 0
}

// Limit returns the modeled shadow limit, used by the producer to shape
// its traffic mix.
func (m *Scoreboard) Limit() uint32 {
	return m.shadow
}

// ActiveLimit returns the modeled active limit.
func (m *Scoreboard) ActiveLimit() uint64 {
	return m.active
}

// Violations returns the modeled violation counter.
func (m *Scoreboard) Violations() uint32 {
	return m.violations
}

// Snapshot returns the modeled forensic snapshot.
func (m *Scoreboard) Snapshot() uint64 {
	return m.snapshot
}

// Step evaluates one cycle with the same signals the core sampled, and
// returns the predicted outcome. Call it before CompleteWrite for writes
// landing at the same edge: the promotion and decision use pre-edge
// values, exactly like the hardware.
func (m *Scoreboard) Step(rec core.Record, valid, outReady bool) core.Outcome {
	outcome := core.Evaluate(rec.Amount(), m.active, m.Enabled())
	if valid && outcome == core.Reject {
		m.violations++
		m.snapshot = rec.Payload
	}

	idle := !valid
	boundary := valid && rec.Last && outcome == core.Admit && outReady
	if idle || !m.Enabled() || boundary {
		m.active = uint64(m.shadow)
	}
	return outcome
}

// CompleteWrite applies a control-plane write that landed at this edge.
func (m *Scoreboard) CompleteWrite(addr, data uint32) {
	switch addr {
	case core.AddrCtrl:
		m.ctrl = data
	case core.AddrLimit:
		m.shadow = data
	}
}
