package main

import (
	"math/rand"
	"time"

	"github.com/example/sentinel_sim/core"
	"github.com/example/sentinel_sim/hooks"
	"github.com/example/sentinel_sim/plugins/audit"
	"github.com/example/sentinel_sim/policy"
)

// cycleCounters accumulates per-cycle observations for one run.
type cycleCounters struct {
	AdmitCycles        int
	RejectCycles       int
	IdleCycles         int
	BackpressureCycles int
	Mismatches         int
	StreamMismatches   int
}

// Simulator drives the sentinel core cycle by cycle: the producer presents
// stream records, the bus driver steps the register exchanges, the core
// commits one clock edge, and the consumer samples the output. A reference
// scoreboard checks every decision.
type Simulator struct {
	Core     *core.Core
	Producer *Producer
	Consumer *Consumer
	Bus      *BusDriver
	Board    *Scoreboard

	registry *hooks.Registry
	broker   *hooks.PluginBroker
	Trail    *audit.Trail

	cfg        *Config
	rng        *rand.Rand
	current    int
	counters   cycleCounters
	visualizer Visualizer

	// admitted records transferred into the core but not yet observed at
	// the output; the forwarded stream is checked against this in order
	pendingForwards []core.Record

	lastFrame *SimulationFrame

	isPaused  bool
	isRunning bool
}

// NewSimulator builds a simulator for the given config.
func NewSimulator(cfg *Config) *Simulator {
	sim := &Simulator{cfg: cfg}
	sim.initRun()
	sim.visualizer = sim.initVisualizer()
	return sim
}

func (s *Simulator) initRun() {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))

	s.Core = core.New()
	s.Producer = NewProducer(s.cfg, s.rng)
	s.Consumer = NewConsumer(s.cfg, s.rng)
	s.Bus = NewBusDriver(s.registerProgram())
	s.Board = NewScoreboard()
	s.current = 0
	s.counters = cycleCounters{}
	s.pendingForwards = nil

	broker := hooks.NewPluginBroker()
	s.broker = broker
	s.registry = hooks.NewRegistry(broker)
	s.Trail = audit.NewTrail()
	if err := audit.Register(s.registry, s.Trail); err != nil {
		GetLogger().Errorf("Failed to register audit plugin: %v", err)
	}
	names := []string{audit.PluginName}
	for _, name := range s.cfg.Plugins {
		if name != audit.PluginName {
			names = append(names, name)
		}
	}
	if err := s.registry.Load(names); err != nil {
		GetLogger().Errorf("Failed to load plugins: %v", err)
	}
}

// registerProgram converts the policy file, when present, into register
// operations and merges them with the scripted ones.
func (s *Simulator) registerProgram() []RegisterOp {
	ops := make([]RegisterOp, 0, len(s.cfg.RegisterOps)+2)

	if s.cfg.PolicyPath != "" {
		pol, err := policy.LoadConfig(s.cfg.PolicyPath)
		if err != nil {
			GetLogger().Errorf("Failed to load policy: %v", err)
		} else {
			ops = append(ops, PolicyOps(pol, 0)...)
		}
	}
	ops = append(ops, s.cfg.RegisterOps...)
	return ops
}

// PolicyOps translates a policy into register writes starting at the given
// cycle.
func PolicyOps(pol *policy.Config, cycle int) []RegisterOp {
	if pol == nil {
		return nil
	}
	var ctrl uint32
	if pol.Enable {
		ctrl = 0x1
	}
	ops := []RegisterOp{
		{Cycle: cycle, Addr: core.AddrLimit, Data: pol.Limit},
		{Cycle: cycle, Addr: core.AddrCtrl, Data: ctrl},
	}
	for _, w := range pol.Writes {
		ops = append(ops, RegisterOp{Cycle: w.Cycle, Addr: core.AddrLimit, Data: w.Limit})
	}
	return ops
}

func (s *Simulator) initVisualizer() Visualizer {
	mode := s.cfg.VisualMode
	if mode == "" {
		mode = "web"
	}
	if s.cfg.Headless || mode == "none" {
		viz := NewNullVisualizer()
		viz.SetHeadless(true)
		return viz
	}
	viz := NewWebVisualizer(s.cfg.WebAddr, s.EnqueueOp)
	viz.SetHeadless(false)
	return viz
}

// EnqueueOp pushes a register operation from an asynchronous source (web
// API, policy hot-reload) onto the bus driver.
func (s *Simulator) EnqueueOp(op RegisterOp) {
	s.Bus.Push(op)
}

// ApplyPolicy pushes a reloaded policy through the register bus. The
// hitless latch in the core keeps the change invisible to in-flight
// groups.
func (s *Simulator) ApplyPolicy(pol *policy.Config) {
	for _, op := range PolicyOps(pol, 0) {
		s.EnqueueOp(op)
	}
	GetLogger().Infof("Policy applied: enable=%t limit=%d (hash %s)", pol.Enable, pol.Limit, pol.Hash())
}

// Cycle returns the number of cycles executed so far.
func (s *Simulator) Cycle() int {
	return s.current
}

// Mismatches returns the number of checker disagreements observed, both
// scoreboard decision mismatches and forwarded-stream mismatches.
func (s *Simulator) Mismatches() int {
	return s.counters.Mismatches + s.counters.StreamMismatches
}

// InFlight returns the number of admitted records transferred into the
// core and not yet seen at the output. The single-slot pipeline bounds it
// at one.
func (s *Simulator) InFlight() int {
	return len(s.pendingForwards)
}

// Run executes the configured number of cycles, honoring control commands
// from the visualizer.
func (s *Simulator) Run() {
	s.isRunning = true
	s.isPaused = false

	for s.current < s.cfg.TotalCycles {
		stepCommandPending := false
		if s.visualizer != nil {
			cmd, hasCmd := s.visualizer.NextCommand()
			if hasCmd {
				switch cmd.Type {
				case CommandPause:
					s.isPaused = true
				case CommandResume:
					s.isPaused = false
				case CommandReset:
					s.reset(cmd.ConfigOverride)
					continue
				case CommandStep:
					if s.isPaused {
						stepCommandPending = true
					}
				}
			}
		}

		if s.isPaused && !stepCommandPending {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		s.step()

		if s.visualizer != nil && !s.visualizer.IsHeadless() {
			s.visualizer.PublishFrame(s.lastFrame)
			time.Sleep(DefaultVisualizationDelay)
		}
	}

	s.isRunning = false
}

// RunHeadless executes every configured cycle without visualization
// delays, regardless of visual mode.
func (s *Simulator) RunHeadless() {
	for s.current < s.cfg.TotalCycles {
		s.step()
	}
}

// step executes exactly one clock cycle.
func (s *Simulator) step() {
	cycle := s.current
	s.current++

	// pre-edge: sample the registered output presented during this cycle
	outRec, outValid := s.Core.StreamOut()
	outReady := s.Consumer.Ready()
	s.Consumer.Observe(outRec, outValid, outReady)
	if outValid && outReady {
		// each forwarded record must be the oldest admitted transfer
		if len(s.pendingForwards) == 0 || s.pendingForwards[0] != outRec {
			s.counters.StreamMismatches++
			GetLogger().Errorf("Cycle %d: forwarded record 0x%X is not the next admitted transfer",
				cycle, outRec.Payload)
		} else {
			s.pendingForwards = s.pendingForwards[1:]
		}
	}
	if outValid && !outReady {
		s.counters.BackpressureCycles++
		metrics.RecordBackpressure()
	}

	rec, valid := s.Producer.Drive(uint64(s.Board.Limit()))
	wbus, rbus, completedWrites, readResults := s.Bus.Drive(cycle, s.Core.WriteReply(), s.Core.ReadReply())

	prevActive := s.Core.ActiveLimit()

	// clock edge
	out := s.Core.Tick(core.Input{
		In:       rec,
		InValid:  valid,
		OutReady: outReady,
		Write:    wbus,
		Read:     rbus,
	})
	s.Producer.Observe(out.InReady)
	if valid && out.InReady && out.Outcome == core.Admit {
		s.pendingForwards = append(s.pendingForwards, rec)
	}

	// reference model, then the writes that landed at this edge
	predicted := s.Board.Step(rec, valid, outReady)
	for _, op := range completedWrites {
		s.Board.CompleteWrite(op.Addr, op.Data)
	}
	if valid && predicted != out.Outcome {
		s.counters.Mismatches++
		GetLogger().Errorf("Cycle %d: scoreboard mismatch, amount=%d active=%d predicted=%s got=%s",
			cycle, rec.Amount(), prevActive, predicted, out.Outcome)
	}

	s.emitEvents(cycle, rec, valid, outRec, outValid, outReady, prevActive, out, completedWrites, readResults)
	s.updateCounters(valid, out)
	s.lastFrame = s.buildFrame(cycle, rec, valid, outRec, outValid, outReady, out)
	metrics.RecordCycles(1)
}

func (s *Simulator) updateCounters(valid bool, out core.Output) {
	switch {
	case !valid:
		s.counters.IdleCycles++
	case out.Rejected:
		s.counters.RejectCycles++
		metrics.RecordReject()
	default:
		s.counters.AdmitCycles++
	}
}

func (s *Simulator) emitEvents(cycle int, rec core.Record, valid bool, outRec core.Record, outValid, outReady bool, prevActive uint64, out core.Output, completedWrites []RegisterOp, readResults []RegisterResult) {
	if valid {
		rctx := hooks.RecordContext{
			Cycle:       cycle,
			Payload:     rec.Payload,
			Amount:      rec.Amount(),
			Destination: rec.Destination(),
			Last:        rec.Last,
			ActiveLimit: prevActive,
		}
		s.broker.EmitRecordPresented(&rctx)
		if out.Rejected {
			s.broker.EmitRecordRejected(&hooks.RejectContext{
				RecordContext: rctx,
				Violations:    out.Violations,
			})
		}
	}
	if outValid && outReady {
		s.broker.EmitRecordForwarded(&hooks.RecordContext{
			Cycle:       cycle,
			Payload:     outRec.Payload,
			Amount:      outRec.Amount(),
			Destination: outRec.Destination(),
			Last:        outRec.Last,
			ActiveLimit: prevActive,
		})
	}
	if out.Promoted && out.ActiveLimit != prevActive {
		s.broker.EmitLimitPromoted(&hooks.PromoteContext{
			Cycle:    cycle,
			OldLimit: prevActive,
			NewLimit: out.ActiveLimit,
		})
	}
	for _, op := range completedWrites {
		s.broker.EmitRegisterWritten(&hooks.RegisterContext{Cycle: cycle, Addr: op.Addr, Data: op.Data})
	}
	for _, res := range readResults {
		s.broker.EmitRegisterRead(&hooks.RegisterContext{Cycle: cycle, Addr: res.Addr, Data: res.Data})
	}
}

func (s *Simulator) buildFrame(cycle int, rec core.Record, valid bool, outRec core.Record, outValid, outReady bool, out core.Output) *SimulationFrame {
	stream := StreamSnapshot{
		InValid:      valid,
		InReady:      out.InReady,
		InPayload:    rec.Payload,
		InAmount:     rec.Amount(),
		InLast:       rec.Last,
		OutValid:     outValid,
		OutReady:     outReady,
		OutPayload:   outRec.Payload,
		OutLast:      outRec.Last,
		SlotOccupied: s.Core.SlotOccupied(),
	}
	if valid {
		stream.Outcome = out.Outcome.String()
	}
	snap := s.Core.Snapshot()
	regs := RegisterSnapshot{
		Ctrl:        s.Core.Ctrl(),
		Enabled:     s.Core.Enabled(),
		ShadowLimit: s.Core.ShadowLimit(),
		ActiveLimit: s.Core.ActiveLimit(),
		Violations:  s.Core.Violations(),
		SnapshotLo:  uint32(snap),
		SnapshotHi:  uint32(snap >> 32),
	}
	return &SimulationFrame{
		Cycle:      cycle,
		Paused:     s.isPaused,
		Stream:     stream,
		Registers:  regs,
		Stats:      s.CollectStats(),
		ConfigHash: computeConfigHash(s.cfg),
	}
}

func (s *Simulator) reset(newCfg *Config) {
	if newCfg != nil {
		s.cfg = newCfg
	}
	s.initRun()
	s.isPaused = false
	GetLogger().Infof("Simulator reset (config hash %s)", computeConfigHash(s.cfg))
}
