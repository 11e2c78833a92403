package core

// Register address map. Word addressed, 32-bit data.
const (
	AddrCtrl           uint32 = 0x00 // bit 0: enable; other bits reserved, preserved verbatim
	AddrLimit          uint32 = 0x04 // shadow (pending) limit
	AddrViolationCount uint32 = 0x08 // read-only
	AddrSnapshotLo     uint32 = 0x0C // read-only
	AddrSnapshotHi     uint32 = 0x10 // read-only
)

// Power-on defaults.
const (
	DefaultCtrl  uint32 = 0x1 // filter enabled
	DefaultLimit uint32 = 1000
)

// WriteBus carries the write-exchange request signals for one cycle.
type WriteBus struct {
	AddrValid bool
	Addr      uint32
	DataValid bool
	Data      uint32
	RespReady bool
}

// WriteBusReply carries the write-exchange response signals.
type WriteBusReply struct {
	AddrReady bool
	DataReady bool
	RespValid bool
	RespOK    bool
}

// ReadBus carries the read-exchange request signals for one cycle.
type ReadBus struct {
	AddrValid bool
	Addr      uint32
	DataReady bool
}

// ReadBusReply carries the read-exchange response signals.
type ReadBusReply struct {
	AddrReady bool
	DataValid bool
	Data      uint32
	RespOK    bool
}

// RegisterFile owns storage for the control word, the shadow limit, the
// violation counter, and the forensic snapshot, and implements the
// two-channel register bus contract: independent write and read exchanges
// with a simple request-acknowledge discipline, at most one outstanding
// operation per exchange.
//
// Writes to read-only addresses are silently dropped and unmapped
// addresses read as zero; every write completes with OK. There is no
// error status path.
type RegisterFile struct {
	ctrl       uint32
	shadow     uint32
	violations uint32
	snapshot   uint64

	// write exchange: response outstanding
	writePending bool

	// read exchange: data outstanding
	readPending bool
	readData    uint32
}

// NewRegisterFile creates the register file in its power-on state.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{ctrl: DefaultCtrl, shadow: DefaultLimit}
}

// Enabled reports bit 0 of the control word.
func (r *RegisterFile) Enabled() bool {
	return r.ctrl&0x1 != 0
}

// Ctrl returns the full control word, reserved bits included.
func (r *RegisterFile) Ctrl() uint32 {
	return r.ctrl
}

// ShadowLimit returns the pending risk ceiling.
func (r *RegisterFile) ShadowLimit() uint32 {
	return r.shadow
}

// Violations returns the violation counter.
func (r *RegisterFile) Violations() uint32 {
	return r.violations
}

// Snapshot returns the 64-bit payload of the most recent violation.
func (r *RegisterFile) Snapshot() uint64 {
	return r.snapshot
}

// WriteReply returns the write-exchange response signals as of the current
// edge. Address and data are accepted together, only while no response is
// outstanding.
func (r *RegisterFile) WriteReply() WriteBusReply {
	return WriteBusReply{
		AddrReady: !r.writePending,
		DataReady: !r.writePending,
		RespValid: r.writePending,
		RespOK:    true,
	}
}

// ReadReply returns the read-exchange response signals as of the current
// edge.
func (r *RegisterFile) ReadReply() ReadBusReply {
	return ReadBusReply{
		AddrReady: !r.readPending,
		DataValid: r.readPending,
		Data:      r.readData,
		RespOK:    true,
	}
}

// TickBus commits both exchanges for one clock edge. Read data latches
// before any write or forensic update of the same edge, so a read always
// observes register values as of the previous edge, never a value in the
// process of changing.
func (r *RegisterFile) TickBus(w WriteBus, rd ReadBus) {
	// read exchange
	if r.readPending {
		if rd.DataReady {
			r.readPending = false
		}
	} else if rd.AddrValid {
		r.readData = r.readWord(rd.Addr)
		r.readPending = true
	}

	// write exchange
	if r.writePending {
		if w.RespReady {
			r.writePending = false
		}
	} else if w.AddrValid && w.DataValid {
		r.writeWord(w.Addr, w.Data)
		r.writePending = true
	}
}

func (r *RegisterFile) readWord(addr uint32) uint32 {
	switch addr {
	case AddrCtrl:
		return r.ctrl
	case AddrLimit:
		return r.shadow
	case AddrViolationCount:
		return r.violations
	case AddrSnapshotLo:
		return uint32(r.snapshot)
	case AddrSnapshotHi:
		return uint32(r.snapshot >> 32)
	}
	// unmapped addresses read as zero, no fault
	return 0
}

func (r *RegisterFile) writeWord(addr, data uint32) {
	switch addr {
	case AddrCtrl:
		// written as a whole word so reserved bits survive round trips
		r.ctrl = data
	case AddrLimit:
		r.shadow = data
	}
	// read-only and unmapped writes are dropped without error
}

// bumpViolations increments the counter, wrapping at 2^32. Wrap is
// documented behavior, not an error.
func (r *RegisterFile) bumpViolations() {
	r.violations++
}

func (r *RegisterFile) setSnapshot(payload uint64) {
	r.snapshot = payload
}
