package core

// ForensicCapture records evidence for rejected records. It is the only
// writer of the violation counter and snapshot registers, whose storage
// lives in the register file.
//
// Capture triggers every cycle a record is presented and rejected,
// regardless of downstream readiness: nothing is forwarded for a rejected
// record, but evidence is still taken. A rejected record whose handshake
// stalls is re-presented by the producer and counted again on each of
// those cycles, so the counter tallies rejected presentation cycles, not
// distinct records. Only the most recent violation is retained; the
// counter is the only record of how many snapshots were overwritten.
// There is no interrupt or alarm; an external reader polls.
type ForensicCapture struct{}

// Tick commits the capture for one clock edge.
func (ForensicCapture) Tick(regs *RegisterFile, rejected bool, payload uint64) {
	if !rejected {
		return
	}
	regs.bumpViolations()
	regs.setSnapshot(payload)
}
