package core

// PipelineStage is the single cut-through register slot between the
// decision logic and the downstream consumer. One record of slack, no
// more: when the consumer stalls with the slot occupied, the slot holds
// and the stage exerts backpressure upstream.
//
// Upstream readiness is coupled directly to downstream readiness, which is
// what gives the stage its one-cycle cut-through latency.
type PipelineStage struct {
	slot  Record
	valid bool
}

// NewPipelineStage returns an empty stage.
func NewPipelineStage() *PipelineStage {
	return &PipelineStage{}
}

// Out returns the record currently presented downstream and its validity.
func (s *PipelineStage) Out() (Record, bool) {
	return s.slot, s.valid
}

// Occupied reports whether the slot holds an admitted record awaiting the
// consumer.
func (s *PipelineStage) Occupied() bool {
	return s.valid
}

// InReady returns the upstream ready signal for the current cycle. It
// mirrors the downstream ready combinationally.
func (s *PipelineStage) InReady(outReady bool) bool {
	return outReady
}

// Tick commits the slot for one clock edge. The slot refreshes only on
// cycles where the consumer is ready: it loads a record that is both
// present and admitted, and empties otherwise. Rejected records are
// consumed here and never reach the output. While the consumer stalls the
// slot holds unchanged, occupied or empty; upstream ready is low on those
// cycles, so a record presented into an empty slot during a stall is not
// taken until its handshake actually completes.
func (s *PipelineStage) Tick(in Record, inValid, admitted, outReady bool) {
	if !outReady {
		return
	}
	s.valid = inValid && admitted
	s.slot = in
}
