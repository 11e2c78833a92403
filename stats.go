package main

import (
	"fmt"
)

// SimulationStats aggregates the counters of one run.
type SimulationStats struct {
	Cycles int `json:"cycles"`

	// stream traffic
	OfferedRecords   int `json:"offeredRecords"`
	AcceptedRecords  int `json:"acceptedRecords"`
	ForwardedRecords int `json:"forwardedRecords"`
	Groups           int `json:"groups"`

	// per-cycle observations
	AdmitCycles        int `json:"admitCycles"`
	RejectCaptures     int `json:"rejectCaptures"`
	IdleCycles         int `json:"idleCycles"`
	BackpressureCycles int `json:"backpressureCycles"`

	// checking
	ScoreboardMismatches int `json:"scoreboardMismatches"`
	StreamMismatches     int `json:"streamMismatches"`

	// architectural state at collection time
	Enabled     bool   `json:"enabled"`
	ShadowLimit uint32 `json:"shadowLimit"`
	ActiveLimit uint64 `json:"activeLimit"`
	Violations  uint32 `json:"violations"`
	Snapshot    uint64 `json:"snapshot"`
}

// CollectStats gathers statistics from all simulator components.
func (s *Simulator) CollectStats() *SimulationStats {
	prod := s.Producer.SnapshotStats()
	cons := s.Consumer.SnapshotStats()
	return &SimulationStats{
		Cycles:               s.current,
		OfferedRecords:       prod.Offered,
		AcceptedRecords:      prod.Accepted,
		ForwardedRecords:     cons.Forwarded,
		Groups:               prod.Groups,
		AdmitCycles:          s.counters.AdmitCycles,
		RejectCaptures:       s.counters.RejectCycles,
		IdleCycles:           s.counters.IdleCycles,
		BackpressureCycles:   s.counters.BackpressureCycles,
		ScoreboardMismatches: s.counters.Mismatches,
		StreamMismatches:     s.counters.StreamMismatches,
		Enabled:              s.Core.Enabled(),
		ShadowLimit:          s.Core.ShadowLimit(),
		ActiveLimit:          s.Core.ActiveLimit(),
		Violations:           s.Core.Violations(),
		Snapshot:             s.Core.Snapshot(),
	}
}

func PrintStats(stats *SimulationStats) {
	if stats == nil {
		fmt.Println("No stats available")
		return
	}
	fmt.Println("=== Stream Statistics ===")
	fmt.Printf("Cycles: %d\n", stats.Cycles)
	fmt.Printf("Groups Started: %d\n", stats.Groups)
	fmt.Printf("Records Offered: %d\n", stats.OfferedRecords)
	fmt.Printf("Records Accepted: %d\n", stats.AcceptedRecords)
	fmt.Printf("Records Forwarded: %d\n", stats.ForwardedRecords)
	fmt.Printf("Admit Cycles: %d\n", stats.AdmitCycles)
	fmt.Printf("Reject Captures: %d\n", stats.RejectCaptures)
	fmt.Printf("Idle Cycles: %d\n", stats.IdleCycles)
	fmt.Printf("Backpressure Cycles: %d\n", stats.BackpressureCycles)

	fmt.Println()
	fmt.Println("=== Filter State ===")
	fmt.Printf("Enabled: %t\n", stats.Enabled)
	fmt.Printf("Shadow Limit: %d\n", stats.ShadowLimit)
	fmt.Printf("Active Limit: %d\n", stats.ActiveLimit)
	fmt.Printf("Violation Count: %d\n", stats.Violations)
	fmt.Printf("Violation Snapshot: 0x%016x\n", stats.Snapshot)

	fmt.Println()
	fmt.Println("=== Checking ===")
	fmt.Printf("Scoreboard Mismatches: %d\n", stats.ScoreboardMismatches)
	fmt.Printf("Stream Mismatches: %d\n", stats.StreamMismatches)
}
