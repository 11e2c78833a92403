package core

import (
	"math/rand"
	"testing"
)

// cpuWrite drives a full write exchange through Tick: issue until the
// request is accepted, then consume the response.
func cpuWrite(t *testing.T, c *Core, addr, data uint32) {
	t.Helper()
	for i := 0; ; i++ {
		if i > 4 {
			t.Fatalf("write to 0x%02X never accepted", addr)
		}
		rep := c.WriteReply()
		c.Tick(Input{Write: WriteBus{AddrValid: true, Addr: addr, DataValid: true, Data: data}})
		if rep.AddrReady && rep.DataReady {
			break
		}
	}
	for i := 0; ; i++ {
		if i > 4 {
			t.Fatalf("write response for 0x%02X never presented", addr)
		}
		rep := c.WriteReply()
		c.Tick(Input{Write: WriteBus{RespReady: true}})
		if rep.RespValid {
			return
		}
	}
}

// cpuRead drives a full read exchange through Tick and returns the data.
func cpuRead(t *testing.T, c *Core, addr uint32) uint32 {
	t.Helper()
	for i := 0; ; i++ {
		if i > 4 {
			t.Fatalf("read of 0x%02X never accepted", addr)
		}
		rep := c.ReadReply()
		c.Tick(Input{Read: ReadBus{AddrValid: true, Addr: addr}})
		if rep.AddrReady {
			break
		}
	}
	for i := 0; ; i++ {
		if i > 4 {
			t.Fatalf("read data for 0x%02X never presented", addr)
		}
		rep := c.ReadReply()
		c.Tick(Input{Read: ReadBus{DataReady: true}})
		if rep.DataValid {
			return rep.Data
		}
	}
}

func TestCorePowerOnState(t *testing.T) {
	c := New()
	if !c.Enabled() {
		t.Fatalf("core must come out of reset enabled")
	}
	if c.ShadowLimit() != DefaultLimit || c.ActiveLimit() != uint64(DefaultLimit) {
		t.Fatalf("limits not at reset value: shadow=%d active=%d", c.ShadowLimit(), c.ActiveLimit())
	}
	if c.Violations() != 0 || c.Snapshot() != 0 {
		t.Fatalf("forensic state not clear at power-on")
	}
	if _, valid := c.StreamOut(); valid {
		t.Fatalf("stream output valid out of reset")
	}
}

func TestCoreSingleCycleDecision(t *testing.T) {
	c := New()

	safe := Record{Payload: MakePayload(500, 0x1234), Last: true}
	out := c.Tick(Input{In: safe, InValid: true, OutReady: true})
	if out.Outcome != Admit || !out.OutValid {
		t.Fatalf("safe record not forwarded after one edge: %+v", out)
	}
	if out.Out.Payload != safe.Payload || !out.Out.Last {
		t.Fatalf("forwarded record corrupted: %+v", out.Out)
	}

	// output drains on the next idle cycle
	out = c.Tick(Input{OutReady: true})
	if out.OutValid {
		t.Fatalf("stale output after idle cycle")
	}

	bad := Record{Payload: MakePayload(1001, 0x1234), Last: true}
	out = c.Tick(Input{In: bad, InValid: true, OutReady: true})
	if !out.Rejected || out.OutValid {
		t.Fatalf("dangerous record leaked: %+v", out)
	}
	if out.Violations != 1 {
		t.Fatalf("violation not counted: %d", out.Violations)
	}
	if c.Snapshot() != bad.Payload {
		t.Fatalf("snapshot: expected 0x%X, got 0x%X", bad.Payload, c.Snapshot())
	}
}

func TestCoreHitlessUpdateMidGroup(t *testing.T) {
	c := New()
	mid := Record{Payload: MakePayload(900, 1)}
	last := Record{Payload: MakePayload(900, 1), Last: true}

	// limit write lands while the first record of the group is in flight
	out := c.Tick(Input{
		In: mid, InValid: true, OutReady: true,
		Write: WriteBus{AddrValid: true, Addr: AddrLimit, DataValid: true, Data: 100},
	})
	if out.Outcome != Admit || out.Promoted {
		t.Fatalf("first record: %+v", out)
	}
	if c.ShadowLimit() != 100 {
		t.Fatalf("shadow not written: %d", c.ShadowLimit())
	}

	// the rest of the group still runs under the old limit
	out = c.Tick(Input{In: mid, InValid: true, OutReady: true, Write: WriteBus{RespReady: true}})
	if out.Outcome != Admit || out.ActiveLimit != 1000 {
		t.Fatalf("second record saw the new limit early: %+v", out)
	}

	// accepted last-of-group is the promotion point
	out = c.Tick(Input{In: last, InValid: true, OutReady: true})
	if out.Outcome != Admit {
		t.Fatalf("last record of group rejected: %+v", out)
	}
	if !out.Promoted || out.ActiveLimit != 100 {
		t.Fatalf("no promotion at group boundary: %+v", out)
	}

	// the next group is evaluated under the new limit
	out = c.Tick(Input{In: last, InValid: true, OutReady: true})
	if !out.Rejected {
		t.Fatalf("record above the new limit admitted: %+v", out)
	}
}

func TestCoreBoundaryNeedsDownstreamAccept(t *testing.T) {
	c := New()
	cpuWrite(t, c, AddrLimit, 100)
	// cpuWrite runs on idle cycles, so the new limit is already active;
	// raise it back through a stalled boundary to observe the hold
	c.Tick(Input{Write: WriteBus{AddrValid: true, Addr: AddrLimit, DataValid: true, Data: 5000},
		In: Record{Payload: MakePayload(50, 0), Last: true}, InValid: true, OutReady: false})

	// last-of-group admitted but the consumer did not take it: no boundary
	out := c.Tick(Input{In: Record{Payload: MakePayload(50, 0), Last: true}, InValid: true, OutReady: false,
		Write: WriteBus{RespReady: true}})
	if out.Promoted || out.ActiveLimit != 100 {
		t.Fatalf("promotion without downstream accept: %+v", out)
	}

	out = c.Tick(Input{In: Record{Payload: MakePayload(50, 0), Last: true}, InValid: true, OutReady: true})
	if !out.Promoted || out.ActiveLimit != 5000 {
		t.Fatalf("promotion missing once the transfer completed: %+v", out)
	}
}

func TestCoreFailOpenWhileDisabled(t *testing.T) {
	c := New()
	cpuWrite(t, c, AddrCtrl, 0x0)

	huge := Record{Payload: MakePayload(AmountMask, 0xFFFF), Last: true}
	out := c.Tick(Input{In: huge, InValid: true, OutReady: true})
	if out.Outcome != Admit || !out.OutValid {
		t.Fatalf("disabled filter rejected: %+v", out)
	}
	if out.Violations != 0 {
		t.Fatalf("disabled filter counted a violation")
	}

	// while disabled the active limit tracks the shadow continuously,
	// boundaries or not
	c.Tick(Input{
		In: Record{Payload: MakePayload(1, 0)}, InValid: true, OutReady: true,
		Write: WriteBus{AddrValid: true, Addr: AddrLimit, DataValid: true, Data: 5},
	})
	out = c.Tick(Input{In: Record{Payload: MakePayload(1, 0)}, InValid: true, OutReady: true,
		Write: WriteBus{RespReady: true}})
	if !out.Promoted || out.ActiveLimit != 5 {
		t.Fatalf("active not tracking shadow while disabled: %+v", out)
	}

	cpuWrite(t, c, AddrCtrl, 0x1)
	out = c.Tick(Input{In: Record{Payload: MakePayload(6, 0), Last: true}, InValid: true, OutReady: true})
	if !out.Rejected {
		t.Fatalf("re-enabled filter did not enforce the limit: %+v", out)
	}
}

func TestCoreForensicsKeepMostRecentViolation(t *testing.T) {
	c := New()
	first := Record{Payload: MakePayload(2000, 1), Last: true}
	second := Record{Payload: MakePayload(3000, 2), Last: true}

	c.Tick(Input{In: first, InValid: true, OutReady: true})
	// capture happens even when the consumer is stalled
	c.Tick(Input{In: second, InValid: true, OutReady: false})

	if got := cpuRead(t, c, AddrViolationCount); got != 2 {
		t.Fatalf("violation count: expected 2, got %d", got)
	}
	lo := cpuRead(t, c, AddrSnapshotLo)
	hi := cpuRead(t, c, AddrSnapshotHi)
	if got := uint64(hi)<<32 | uint64(lo); got != second.Payload {
		t.Fatalf("snapshot: expected 0x%X, got 0x%X", second.Payload, got)
	}
}

func TestCoreRecountsHeldRejectedRecord(t *testing.T) {
	c := New()
	bad := Record{Payload: MakePayload(4000, 3), Last: true}

	// the consumer stalls, so the handshake never completes and the same
	// rejected record is presented on three consecutive cycles
	for i := 0; i < 3; i++ {
		c.Tick(Input{In: bad, InValid: true, OutReady: false})
	}
	if got := c.Violations(); got != 3 {
		t.Fatalf("counter tallies presentation cycles: expected 3, got %d", got)
	}
	if c.Snapshot() != bad.Payload {
		t.Fatalf("snapshot lost: 0x%X", c.Snapshot())
	}
}

func TestCoreBackpressureHoldsOutput(t *testing.T) {
	c := New()
	rec := Record{Payload: MakePayload(10, 7), Last: true}
	c.Tick(Input{In: rec, InValid: true, OutReady: true})

	for i := 0; i < 3; i++ {
		out := c.Tick(Input{OutReady: false})
		if !out.OutValid || out.Out.Payload != rec.Payload {
			t.Fatalf("cycle %d: output not held under backpressure: %+v", i, out)
		}
		if out.InReady {
			t.Fatalf("cycle %d: upstream ready while downstream stalled", i)
		}
	}

	out := c.Tick(Input{OutReady: true})
	if out.OutValid {
		t.Fatalf("output not drained after ready returned")
	}
}

// TestCoreNoDuplicateThroughStalledEntry drives the hold-stable pattern a
// contract-following producer uses: present a record while the consumer
// stalls, keep presenting it until upstream ready goes high, then drop
// valid. The record must come out exactly once.
func TestCoreNoDuplicateThroughStalledEntry(t *testing.T) {
	c := New()
	rec := Record{Payload: MakePayload(7, 0xA), Last: true}

	// consumer stalled, slot empty: the record is presented but upstream
	// ready stays low, so no transfer completes
	for i := 0; i < 3; i++ {
		out := c.Tick(Input{In: rec, InValid: true, OutReady: false})
		if out.InReady {
			t.Fatalf("cycle %d: upstream ready during consumer stall", i)
		}
		if out.OutValid {
			t.Fatalf("cycle %d: output valid before any transfer", i)
		}
	}

	// ready returns while the record is still held: the handshake completes
	out := c.Tick(Input{In: rec, InValid: true, OutReady: true})
	if !out.InReady {
		t.Fatalf("transfer did not complete once ready returned")
	}

	// sample the output the way a consumer does, before each edge
	forwards := 0
	for i := 0; i < 4; i++ {
		if fwd, valid := c.StreamOut(); valid {
			forwards++
			if fwd.Payload != rec.Payload {
				t.Fatalf("forwarded record corrupted: %+v", fwd)
			}
		}
		c.Tick(Input{OutReady: true})
	}
	if forwards != 1 {
		t.Fatalf("record forwarded %d times, expected exactly once", forwards)
	}
}

func TestCoreOperatorScenario(t *testing.T) {
	c := New()
	cpuWrite(t, c, AddrLimit, 500)

	// amount equal to the limit passes
	atLimit := Record{Payload: MakePayload(500, 9), Last: true}
	out := c.Tick(Input{In: atLimit, InValid: true, OutReady: true})
	if out.Outcome != Admit || !out.OutValid || out.Out.Payload != atLimit.Payload {
		t.Fatalf("amount at limit: %+v", out)
	}
	c.Tick(Input{OutReady: true})

	// one above is captured
	above := Record{Payload: MakePayload(501, 9), Last: true}
	out = c.Tick(Input{In: above, InValid: true, OutReady: true})
	if !out.Rejected || out.Violations != 1 {
		t.Fatalf("amount above limit: %+v", out)
	}
	if c.Snapshot() != above.Payload {
		t.Fatalf("snapshot 0x%X, expected 0x%X", c.Snapshot(), above.Payload)
	}
	c.Tick(Input{OutReady: true})

	// limit write inside a group does not affect the rest of the group
	mid := Record{Payload: MakePayload(450, 9)}
	last := Record{Payload: MakePayload(450, 9), Last: true}
	c.Tick(Input{In: mid, InValid: true, OutReady: true,
		Write: WriteBus{AddrValid: true, Addr: AddrLimit, DataValid: true, Data: 100}})
	out = c.Tick(Input{In: last, InValid: true, OutReady: true, Write: WriteBus{RespReady: true}})
	if out.Outcome != Admit {
		t.Fatalf("remaining group record judged by the new limit: %+v", out)
	}

	// first record of the next group runs under 100
	out = c.Tick(Input{In: last, InValid: true, OutReady: true})
	if !out.Rejected {
		t.Fatalf("next group not evaluated at the new limit: %+v", out)
	}
}

// TestCoreStochastic stress-tests with random limit rewrites between
// single-record groups, a mixed stream of safe and dangerous amounts, and
// a final forensic readback against a reference model.
func TestCoreStochastic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := New()

	limit := uint64(DefaultLimit)
	drops := 0
	var lastDropped uint64

	for i := 0; i < 1000; i++ {
		if rng.Float64() < 0.1 {
			newLimit := uint64(500 + rng.Intn(4501))
			cpuWrite(t, c, AddrLimit, uint32(newLimit))
			// bus cycles are stream-idle, so the new limit is active
			// before the next record
			limit = newLimit
		}

		var amount uint64
		if rng.Intn(2) == 1 {
			amount = limit + 1 + uint64(rng.Int63n(int64(limit*9)))
		} else {
			amount = 1 + uint64(rng.Int63n(int64(limit)))
		}
		payload := MakePayload(amount, 0x1234)

		out := c.Tick(Input{In: Record{Payload: payload, Last: true}, InValid: true, OutReady: true})

		expectPass := amount <= limit
		if expectPass && !out.OutValid {
			t.Fatalf("iter %d: safe amount %d (limit %d) was dropped", i, amount, limit)
		}
		if !expectPass && out.OutValid {
			t.Fatalf("iter %d: dangerous amount %d (limit %d) leaked", i, amount, limit)
		}
		if !expectPass {
			drops++
			lastDropped = payload
		}

		c.Tick(Input{OutReady: true})
	}

	if got := cpuRead(t, c, AddrViolationCount); got != uint32(drops) {
		t.Fatalf("counter mismatch: hw=%d model=%d", got, drops)
	}
	if drops > 0 {
		lo := cpuRead(t, c, AddrSnapshotLo)
		hi := cpuRead(t, c, AddrSnapshotHi)
		if got := uint64(hi)<<32 | uint64(lo); got != lastDropped {
			t.Fatalf("snapshot mismatch: hw=0x%X model=0x%X", got, lastDropped)
		}
	}
}
