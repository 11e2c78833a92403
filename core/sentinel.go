package core

// Input carries every signal sampled by the core for one cycle.
type Input struct {
	In       Record
	InValid  bool
	OutReady bool

	Write WriteBus
	Read  ReadBus
}

// Output reports the post-edge state of the core together with the
// decisions taken at the edge.
type Output struct {
	// InReady mirrors OutReady for the executed cycle: upstream acceptance
	// is coupled directly to downstream acceptance.
	InReady bool

	// Registered stream output after the edge.
	Out      Record
	OutValid bool

	Write WriteBusReply
	Read  ReadBusReply

	// Observability of the decision taken at the edge.
	Presented   bool
	Outcome     Outcome
	Rejected    bool
	Promoted    bool
	ActiveLimit uint64
	Violations  uint32
}

// Core is the cycle-accurate model of the sentinel filter: register file,
// hitless limit latch, risk decision logic, cut-through pipeline stage,
// and forensic capture, all updating atomically once per simulated clock
// edge.
//
// Every Tick computes next-state values from current-state values and then
// commits them, which reproduces the clock-edge atomicity of the original
// core: control-plane writes and the data-plane decision path touch shared
// state only through the shadow-to-active hand-off inside the limit latch.
type Core struct {
	regs      *RegisterFile
	latch     *LimitLatch
	stage     *PipelineStage
	forensics ForensicCapture
}

// New creates a core in its power-on state: enable set, shadow and active
// limit at the default, counter and snapshot clear.
func New() *Core {
	return &Core{
		regs:  NewRegisterFile(),
		latch: NewLimitLatch(DefaultLimit),
		stage: NewPipelineStage(),
	}
}

// StreamOut returns the stream output currently presented downstream, as
// registered at the previous edge.
func (c *Core) StreamOut() (Record, bool) {
	return c.stage.Out()
}

// WriteReply exposes the write-exchange response signals for the current
// cycle.
func (c *Core) WriteReply() WriteBusReply {
	return c.regs.WriteReply()
}

// ReadReply exposes the read-exchange response signals for the current
// cycle.
func (c *Core) ReadReply() ReadBusReply {
	return c.regs.ReadReply()
}

// Enabled reports the current enable flag.
func (c *Core) Enabled() bool { return c.regs.Enabled() }

// Ctrl returns the full control word.
func (c *Core) Ctrl() uint32 { return c.regs.Ctrl() }

// ShadowLimit returns the pending limit.
func (c *Core) ShadowLimit() uint32 { return c.regs.ShadowLimit() }

// ActiveLimit returns the limit enforced by the decision logic.
func (c *Core) ActiveLimit() uint64 { return c.latch.Active() }

// Violations returns the violation counter.
func (c *Core) Violations() uint32 { return c.regs.Violations() }

// Snapshot returns the payload of the most recent violation.
func (c *Core) Snapshot() uint64 { return c.regs.Snapshot() }

// SlotOccupied reports whether the pipeline slot holds a pending record.
func (c *Core) SlotOccupied() bool { return c.stage.Occupied() }

// Tick advances the core by one clock edge and returns its post-edge
// outputs. All combinational values are derived from pre-edge state before
// any register commits, so the components update observationally
// simultaneously.
func (c *Core) Tick(in Input) Output {
	// sample pre-edge state
	enable := c.regs.Enabled()
	active := c.latch.Active()
	shadow := c.regs.ShadowLimit()

	// combinational decision path
	outcome := Evaluate(in.In.Amount(), active, enable)
	admitted := outcome == Admit
	rejected := in.InValid && outcome == Reject
	idle := !in.InValid
	boundary := in.InValid && in.In.Last && admitted && in.OutReady

	// commit at the edge: bus first so a read latched now observes
	// pre-edge counter and snapshot values, latch with the pre-edge
	// shadow so a write landing this edge waits for the next boundary.
	c.regs.TickBus(in.Write, in.Read)
	c.forensics.Tick(c.regs, rejected, in.In.Payload)
	promoted := c.latch.Tick(shadow, idle, enable, boundary)
	c.stage.Tick(in.In, in.InValid, admitted, in.OutReady)

	outRec, outValid := c.stage.Out()
	return Output{
		InReady:     c.stage.InReady(in.OutReady),
		Out:         outRec,
		OutValid:    outValid,
		Write:       c.regs.WriteReply(),
		Read:        c.regs.ReadReply(),
		Presented:   in.InValid,
		Outcome:     outcome,
		Rejected:    rejected,
		Promoted:    promoted,
		ActiveLimit: c.latch.Active(),
		Violations:  c.regs.Violations(),
	}
}
