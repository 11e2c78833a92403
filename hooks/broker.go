package hooks

import (
	"sync"
)

// PluginCategory represents the high-level role of a plugin.
type PluginCategory string

const (
	// PluginCategoryInstrumentation covers metrics, tracing, and diagnostics.
	PluginCategoryInstrumentation PluginCategory = "instrumentation"
	// PluginCategoryVisualization covers UI and monitoring plugins.
	PluginCategoryVisualization PluginCategory = "visualization"
	// PluginCategoryAudit covers forensic and compliance plugins.
	PluginCategoryAudit PluginCategory = "audit"
)

// PluginDescriptor describes a plugin registered with the broker.
type PluginDescriptor struct {
	Name        string
	Category    PluginCategory
	Description string
}

// RecordContext carries information about a record presented to the filter.
type RecordContext struct {
	Cycle       int
	Payload     uint64
	Amount      uint64
	Destination uint16
	Last        bool
	ActiveLimit uint64
}

// RejectContext extends RecordContext with the counter value after capture.
type RejectContext struct {
	RecordContext
	Violations uint32
}

// PromoteContext describes an active-limit resample.
type PromoteContext struct {
	Cycle    int
	OldLimit uint64
	NewLimit uint64
}

// RegisterContext describes a completed control-plane register access.
type RegisterContext struct {
	Cycle int
	Addr  uint32
	Data  uint32
}

type RecordPresentedHook func(ctx *RecordContext) error
type RecordForwardedHook func(ctx *RecordContext) error
type RecordRejectedHook func(ctx *RejectContext) error
type LimitPromotedHook func(ctx *PromoteContext) error
type RegisterWrittenHook func(ctx *RegisterContext) error
type RegisterReadHook func(ctx *RegisterContext) error

// HookBundle groups multiple hook handlers that belong to one plugin.
type HookBundle struct {
	RecordPresented []RecordPresentedHook
	RecordForwarded []RecordForwardedHook
	RecordRejected  []RecordRejectedHook
	LimitPromoted   []LimitPromotedHook
	RegisterWritten []RegisterWrittenHook
	RegisterRead    []RegisterReadHook
}

// PluginBroker coordinates hook registration and triggering.
type PluginBroker struct {
	mu sync.RWMutex

	presentedHooks []RecordPresentedHook
	forwardedHooks []RecordForwardedHook
	rejectedHooks  []RecordRejectedHook
	promotedHooks  []LimitPromotedHook
	regWriteHooks  []RegisterWrittenHook
	regReadHooks   []RegisterReadHook

	pluginCatalog map[PluginCategory][]PluginDescriptor
	pluginIndex   map[string]PluginDescriptor
}

// NewPluginBroker creates an empty broker instance.
func NewPluginBroker() *PluginBroker {
	return &PluginBroker{
		pluginCatalog: make(map[PluginCategory][]PluginDescriptor),
		pluginIndex:   make(map[string]PluginDescriptor),
	}
}

// RegisterRecordPresented adds a hook executed when a record is presented.
func (p *PluginBroker) RegisterRecordPresented(h RecordPresentedHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presentedHooks = append(p.presentedHooks, h)
}

// RegisterRecordForwarded adds a hook executed when a record is accepted
// by the downstream consumer.
func (p *PluginBroker) RegisterRecordForwarded(h RecordForwardedHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forwardedHooks = append(p.forwardedHooks, h)
}

// RegisterRecordRejected adds a hook executed on every forensic capture.
func (p *PluginBroker) RegisterRecordRejected(h RecordRejectedHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejectedHooks = append(p.rejectedHooks, h)
}

// RegisterLimitPromoted adds a hook executed when the active limit
// re-samples the shadow.
func (p *PluginBroker) RegisterLimitPromoted(h LimitPromotedHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promotedHooks = append(p.promotedHooks, h)
}

// RegisterRegisterWritten adds a hook executed when a write exchange
// completes.
func (p *PluginBroker) RegisterRegisterWritten(h RegisterWrittenHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regWriteHooks = append(p.regWriteHooks, h)
}

// RegisterRegisterRead adds a hook executed when a read exchange completes.
func (p *PluginBroker) RegisterRegisterRead(h RegisterReadHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regReadHooks = append(p.regReadHooks, h)
}

// EmitRecordPresented triggers presented hooks.
func (p *PluginBroker) EmitRecordPresented(ctx *RecordContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RecordPresentedHook, len(p.presentedHooks))
	copy(handlers, p.presentedHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRecordForwarded triggers forwarded hooks.
func (p *PluginBroker) EmitRecordForwarded(ctx *RecordContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RecordForwardedHook, len(p.forwardedHooks))
	copy(handlers, p.forwardedHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRecordRejected triggers rejected hooks.
func (p *PluginBroker) EmitRecordRejected(ctx *RejectContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RecordRejectedHook, len(p.rejectedHooks))
	copy(handlers, p.rejectedHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitLimitPromoted triggers promotion hooks.
func (p *PluginBroker) EmitLimitPromoted(ctx *PromoteContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]LimitPromotedHook, len(p.promotedHooks))
	copy(handlers, p.promotedHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRegisterWritten triggers write-completion hooks.
func (p *PluginBroker) EmitRegisterWritten(ctx *RegisterContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RegisterWrittenHook, len(p.regWriteHooks))
	copy(handlers, p.regWriteHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitRegisterRead triggers read-completion hooks.
func (p *PluginBroker) EmitRegisterRead(ctx *RegisterContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := make([]RegisterReadHook, len(p.regReadHooks))
	copy(handlers, p.regReadHooks)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBundle registers a plugin descriptor together with all hook
// handlers.
func (p *PluginBroker) RegisterBundle(desc PluginDescriptor, bundle HookBundle) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.registerDescriptorLocked(desc)

	p.presentedHooks = append(p.presentedHooks, bundle.RecordPresented...)
	p.forwardedHooks = append(p.forwardedHooks, bundle.RecordForwarded...)
	p.rejectedHooks = append(p.rejectedHooks, bundle.RecordRejected...)
	p.promotedHooks = append(p.promotedHooks, bundle.LimitPromoted...)
	p.regWriteHooks = append(p.regWriteHooks, bundle.RegisterWritten...)
	p.regReadHooks = append(p.regReadHooks, bundle.RegisterRead...)
}

// RegisterPluginMetadata stores plugin metadata without registering hooks.
func (p *PluginBroker) RegisterPluginMetadata(desc PluginDescriptor) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerDescriptorLocked(desc)
}

// ListPlugins returns descriptors for plugins in the requested category.
func (p *PluginBroker) ListPlugins(category PluginCategory) []PluginDescriptor {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	catalog := p.pluginCatalog[category]
	if len(catalog) == 0 {
		return nil
	}
	out := make([]PluginDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// ListAllPlugins returns descriptors of every registered plugin.
func (p *PluginBroker) ListAllPlugins() []PluginDescriptor {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]PluginDescriptor, 0, len(p.pluginIndex))
	for _, desc := range p.pluginIndex {
		out = append(out, desc)
	}
	return out
}

func (p *PluginBroker) registerDescriptorLocked(desc PluginDescriptor) {
	if desc.Name == "" {
		return
	}
	if _, exists := p.pluginIndex[desc.Name]; exists {
		return
	}
	p.pluginIndex[desc.Name] = desc
	p.pluginCatalog[desc.Category] = append(p.pluginCatalog[desc.Category], desc)
}
