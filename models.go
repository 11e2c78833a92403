package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Simulation constants
const (
	// DefaultVisualizationDelay is the delay between visualization updates in web mode
	DefaultVisualizationDelay = 50 * time.Millisecond

	// DefaultWebAddr is the default listen address for the web visualizer
	DefaultWebAddr = "127.0.0.1:8080"

	// ConfigHashLength is the length of the config hash in hex characters
	ConfigHashLength = 16
)

// ReadyMode selects how the downstream consumer asserts ready.
type ReadyMode string

const (
	ReadyAlways ReadyMode = "always"
	ReadyRandom ReadyMode = "random"
	ReadyNever  ReadyMode = "never"
)

// RegisterOp is one scripted control-plane operation driven through the
// register bus.
type RegisterOp struct {
	Cycle int    `json:"cycle"` // earliest cycle the exchange may start
	Read  bool   `json:"read"`
	Addr  uint32 `json:"addr"`
	Data  uint32 `json:"data"`
}

// RegisterResult is the completion of a read exchange.
type RegisterResult struct {
	Cycle int    `json:"cycle"`
	Addr  uint32 `json:"addr"`
	Data  uint32 `json:"data"`
}

// Config holds simulation configuration values.
type Config struct {
	TotalCycles int
	Seed        int64

	// traffic generation
	RequestRate  float64 // probability a new group starts on an idle producer cycle
	DangerRate   float64 // probability a generated amount exceeds the programmed limit
	GroupSizeMin int     // records per group, inclusive bounds
	GroupSizeMax int
	DestID       uint16

	// downstream consumer behavior
	ReadyMode ReadyMode
	ReadyRate float64 // probability of ready per cycle in ReadyRandom mode

	// control plane
	RegisterOps []RegisterOp // scripted operations, ordered by cycle
	PolicyPath  string       // optional YAML policy applied through the bus

	// plugins activated by registry name
	Plugins []string

	// visualization settings
	Headless   bool
	VisualMode string // "web" | "none"
	WebAddr    string
}

// StreamSnapshot captures the data-plane signals of one cycle for
// visualization.
type StreamSnapshot struct {
	InValid      bool   `json:"inValid"`
	InReady      bool   `json:"inReady"`
	InPayload    uint64 `json:"inPayload"`
	InAmount     uint64 `json:"inAmount"`
	InLast       bool   `json:"inLast"`
	Outcome      string `json:"outcome,omitempty"`
	OutValid     bool   `json:"outValid"`
	OutReady     bool   `json:"outReady"`
	OutPayload   uint64 `json:"outPayload"`
	OutLast      bool   `json:"outLast"`
	SlotOccupied bool   `json:"slotOccupied"`
}

// RegisterSnapshot captures the architectural register state after a cycle.
type RegisterSnapshot struct {
	Ctrl        uint32 `json:"ctrl"`
	Enabled     bool   `json:"enabled"`
	ShadowLimit uint32 `json:"shadowLimit"`
	ActiveLimit uint64 `json:"activeLimit"`
	Violations  uint32 `json:"violations"`
	SnapshotLo  uint32 `json:"snapshotLo"`
	SnapshotHi  uint32 `json:"snapshotHi"`
}

// SimulationFrame aggregates information required by frontends for a cycle.
type SimulationFrame struct {
	Cycle      int              `json:"cycle"`
	Paused     bool             `json:"paused"`
	Stream     StreamSnapshot   `json:"stream"`
	Registers  RegisterSnapshot `json:"registers"`
	Stats      *SimulationStats `json:"stats,omitempty"`
	ConfigHash string           `json:"configHash,omitempty"`
}

// computeConfigHash computes a hash of the configuration to detect config
// changes across resets.
func computeConfigHash(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	hashInput := fmt.Sprintf("%d-%d-%f-%f-%d-%d-%d-%s-%f-%d",
		cfg.TotalCycles,
		cfg.Seed,
		cfg.RequestRate,
		cfg.DangerRate,
		cfg.GroupSizeMin,
		cfg.GroupSizeMax,
		cfg.DestID,
		cfg.ReadyMode,
		cfg.ReadyRate,
		len(cfg.RegisterOps))

	hash := sha256.Sum256([]byte(hashInput))
	return hex.EncodeToString(hash[:])[:ConfigHashLength]
}
