// Package audit provides a hook-based audit trail of filter violations.
// The core itself retains only the most recent violation; this plugin
// records every capture it observes during a run.
package audit

import (
	"fmt"
	"sync"

	"github.com/example/sentinel_sim/hooks"
)

// PluginName is the registry name of the audit trail plugin.
const PluginName = "audit/trail"

// Violation is one observed forensic capture.
type Violation struct {
	Cycle       int    `json:"cycle"`
	Payload     uint64 `json:"payload"`
	Amount      uint64 `json:"amount"`
	Destination uint16 `json:"destination"`
	ActiveLimit uint64 `json:"activeLimit"`
	Violations  uint32 `json:"violations"` // counter value after this capture
}

// Trail accumulates violations observed through the rejection hook.
type Trail struct {
	mu     sync.Mutex
	events []Violation
}

// NewTrail creates an empty audit trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Events returns a copy of the recorded violations.
func (t *Trail) Events() []Violation {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Violation, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of recorded violations.
func (t *Trail) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *Trail) record(ctx *hooks.RejectContext) error {
	if t == nil || ctx == nil {
		return nil
	}
	t.mu.Lock()
	t.events = append(t.events, Violation{
		Cycle:       ctx.Cycle,
		Payload:     ctx.Payload,
		Amount:      ctx.Amount,
		Destination: ctx.Destination,
		ActiveLimit: ctx.ActiveLimit,
		Violations:  ctx.Violations,
	})
	t.mu.Unlock()
	return nil
}

// Register installs the audit trail plugin into the registry.
func Register(reg *hooks.Registry, trail *Trail) error {
	if reg == nil {
		return fmt.Errorf("registry is nil")
	}
	if trail == nil {
		return fmt.Errorf("trail is nil")
	}
	desc := hooks.PluginDescriptor{
		Name:        PluginName,
		Category:    hooks.PluginCategoryAudit,
		Description: "records every observed violation with its payload",
	}
	return reg.Register(PluginName, desc, func(b *hooks.PluginBroker) error {
		if b == nil {
			return fmt.Errorf("plugin broker is nil")
		}
		b.RegisterRecordRejected(trail.record)
		return nil
	})
}
