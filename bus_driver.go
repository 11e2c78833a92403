package main

import (
	"sort"
	"sync"

	"github.com/example/sentinel_sim/core"
)

type busState int

const (
	busIdle busState = iota
	busWriteIssue
	busWriteResp
	busReadIssue
	busReadResp
)

// BusDriver sequences register operations through the core's write and
// read exchanges, observing the request-acknowledge discipline: an
// operation is driven until its request is accepted at a clock edge, then
// its response is consumed, then the next operation starts. Scripted
// operations are gated by their cycle; asynchronously pushed operations
// (policy reload, web API) run at the earliest idle cycle and take
// priority over not-yet-due scripted ones.
type BusDriver struct {
	mu       sync.Mutex
	scripted []RegisterOp
	async    []RegisterOp

	state   busState
	cur     RegisterOp
	results []RegisterResult
}

// NewBusDriver creates a driver over the scripted operation list.
func NewBusDriver(ops []RegisterOp) *BusDriver {
	scripted := make([]RegisterOp, len(ops))
	copy(scripted, ops)
	sort.SliceStable(scripted, func(i, j int) bool {
		return scripted[i].Cycle < scripted[j].Cycle
	})
	return &BusDriver{scripted: scripted}
}

// Push enqueues an operation from an asynchronous source.
func (d *BusDriver) Push(op RegisterOp) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.async = append(d.async, op)
	d.mu.Unlock()
}

// Drive computes the bus request signals for this cycle and advances the
// driver state machine. The replies must be the core's pre-edge reply
// state for the same cycle. completed reports writes whose data lands at
// this edge (the point where they take architectural effect); results
// reports reads whose data is consumed at this edge.
func (d *BusDriver) Drive(cycle int, wrep core.WriteBusReply, rrep core.ReadBusReply) (w core.WriteBus, r core.ReadBus, completed []RegisterOp, results []RegisterResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == busIdle {
		d.dequeueLocked(cycle)
	}

	switch d.state {
	case busWriteIssue:
		w = core.WriteBus{
			AddrValid: true,
			Addr:      d.cur.Addr,
			DataValid: true,
			Data:      d.cur.Data,
		}
		if wrep.AddrReady && wrep.DataReady {
			completed = append(completed, d.cur)
			d.state = busWriteResp
		}
	case busWriteResp:
		w.RespReady = true
		if wrep.RespValid {
			d.state = busIdle
		}
	case busReadIssue:
		r = core.ReadBus{AddrValid: true, Addr: d.cur.Addr}
		if rrep.AddrReady {
			d.state = busReadResp
		}
	case busReadResp:
		r.DataReady = true
		if rrep.DataValid {
			res := RegisterResult{Cycle: cycle, Addr: d.cur.Addr, Data: rrep.Data}
			d.results = append(d.results, res)
			results = append(results, res)
			d.state = busIdle
		}
	}
	return w, r, completed, results
}

func (d *BusDriver) dequeueLocked(cycle int) {
	if len(d.async) > 0 {
		d.cur = d.async[0]
		d.async = d.async[1:]
	} else if len(d.scripted) > 0 && d.scripted[0].Cycle <= cycle {
		d.cur = d.scripted[0]
		d.scripted = d.scripted[1:]
	} else {
		return
	}
	if d.cur.Read {
		d.state = busReadIssue
	} else {
		d.state = busWriteIssue
	}
}

// Idle reports whether no exchange is in flight and no operation queued.
func (d *BusDriver) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == busIdle && len(d.scripted) == 0 && len(d.async) == 0
}

// Results returns completed read results so far.
func (d *BusDriver) Results() []RegisterResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RegisterResult, len(d.results))
	copy(out, d.results)
	return out
}
