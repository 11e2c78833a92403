package hooks

import (
	"fmt"
	"sync"
)

// PluginFactory installs hooks into the broker.
type PluginFactory func(broker *PluginBroker) error

type registryEntry struct {
	desc    PluginDescriptor
	factory PluginFactory
}

// Registry keeps plugin factories that can be activated via configuration.
type Registry struct {
	mu     sync.RWMutex
	broker *PluginBroker

	plugins map[string]registryEntry
}

// NewRegistry creates an empty plugin registry bound to a broker.
func NewRegistry(broker *PluginBroker) *Registry {
	if broker == nil {
		broker = NewPluginBroker()
	}
	return &Registry{
		broker:  broker,
		plugins: make(map[string]registryEntry),
	}
}

// Broker returns the underlying broker associated with the registry.
func (r *Registry) Broker() *PluginBroker {
	if r == nil {
		return nil
	}
	return r.broker
}

// Register registers a plugin factory under a unique name.
func (r *Registry) Register(name string, desc PluginDescriptor, factory PluginFactory) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("plugin factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin already registered: %s", name)
	}

	r.plugins[name] = registryEntry{
		desc:    desc,
		factory: factory,
	}
	return nil
}

// Load activates the requested plugins in order.
func (r *Registry) Load(names []string) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	for _, name := range names {
		entry, err := r.get(name)
		if err != nil {
			return err
		}
		if err := entry.factory(r.broker); err != nil {
			return fmt.Errorf("plugin %s failed: %w", name, err)
		}
		r.broker.RegisterPluginMetadata(entry.desc)
	}
	return nil
}

// Descriptor returns metadata registered under the provided name.
func (r *Registry) Descriptor(name string) (PluginDescriptor, bool) {
	if r == nil {
		return PluginDescriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.plugins[name]
	if !ok {
		return PluginDescriptor{}, false
	}
	return entry.desc, true
}

func (r *Registry) get(name string) (registryEntry, error) {
	r.mu.RLock()
	entry, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return registryEntry{}, fmt.Errorf("plugin not found: %s", name)
	}
	return entry, nil
}
