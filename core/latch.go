package core

// LimitLatch holds the active limit used by the decision logic. The active
// copy is 40 bits wide, zero-extended from the 32-bit shadow register, and
// only this component may write it.
//
// The latch re-samples the shadow at a clock edge only when one of the
// safe-transition conditions holds:
//
//  1. the stream is idle (no valid record presented),
//  2. the filter is disabled,
//  3. the record being admitted is the last of its group and the
//     downstream consumer accepts it this cycle.
//
// Otherwise the active value holds, so an in-flight group is evaluated
// against a single limit for its whole duration. A limit update therefore
// never requires a pause, drain, or resynchronization handshake.
type LimitLatch struct {
	active uint64
}

// NewLimitLatch creates the latch with the power-on active limit.
func NewLimitLatch(reset uint32) *LimitLatch {
	return &LimitLatch{active: uint64(reset)}
}

// Active returns the limit currently enforced by the decision logic.
func (l *LimitLatch) Active() uint64 {
	return l.active
}

// Tick commits the latch for one clock edge. shadow must be the shadow
// value as of the previous edge: a register write landing this same edge
// becomes eligible for promotion only at the next safe boundary.
// Returns true when the shadow was sampled.
func (l *LimitLatch) Tick(shadow uint32, idle, enable, groupBoundary bool) bool {
	if idle || !enable || groupBoundary {
		l.active = uint64(shadow)
		return true
	}
	return false
}
