package hooks

import (
	"fmt"
	"testing"
)

func TestRegistryLoadActivatesFactory(t *testing.T) {
	reg := NewRegistry(nil)

	installed := false
	desc := PluginDescriptor{Name: "trace", Category: PluginCategoryInstrumentation}
	err := reg.Register("trace", desc, func(b *PluginBroker) error {
		installed = true
		b.RegisterRecordPresented(func(ctx *RecordContext) error { return nil })
		return nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if installed {
		t.Fatalf("factory ran before Load")
	}

	if err := reg.Load([]string{"trace"}); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !installed {
		t.Fatalf("factory did not run on Load")
	}
	if got := reg.Broker().ListAllPlugins(); len(got) != 1 {
		t.Fatalf("descriptor not published to broker: %v", got)
	}
}

func TestRegistryRejectsDuplicatesAndUnknown(t *testing.T) {
	reg := NewRegistry(NewPluginBroker())
	factory := func(b *PluginBroker) error { return nil }

	if err := reg.Register("dup", PluginDescriptor{Name: "dup"}, factory); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := reg.Register("dup", PluginDescriptor{Name: "dup"}, factory); err == nil {
		t.Fatalf("duplicate register accepted")
	}
	if err := reg.Register("", PluginDescriptor{}, factory); err == nil {
		t.Fatalf("empty name accepted")
	}
	if err := reg.Register("nil", PluginDescriptor{}, nil); err == nil {
		t.Fatalf("nil factory accepted")
	}
	if err := reg.Load([]string{"missing"}); err == nil {
		t.Fatalf("load of unknown plugin succeeded")
	}
}

func TestRegistryPropagatesFactoryError(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("bad", PluginDescriptor{Name: "bad"}, func(b *PluginBroker) error {
		return fmt.Errorf("init failed")
	})
	if err := reg.Load([]string{"bad"}); err == nil {
		t.Fatalf("factory error swallowed")
	}
}

func TestRegistryDescriptorLookup(t *testing.T) {
	reg := NewRegistry(nil)
	want := PluginDescriptor{Name: "audit/trail", Category: PluginCategoryAudit, Description: "trail"}
	reg.Register("audit/trail", want, func(b *PluginBroker) error { return nil })

	got, ok := reg.Descriptor("audit/trail")
	if !ok || got != want {
		t.Fatalf("descriptor lookup: ok=%t got=%+v", ok, got)
	}
	if _, ok := reg.Descriptor("nope"); ok {
		t.Fatalf("lookup of unknown name reported ok")
	}
}
