package policy

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long to wait after the last write before applying.
const reloadDebounce = 500 * time.Millisecond

// ApplyFunc receives a freshly loaded policy. Implementations are expected
// to translate it into register writes; the hitless latch in the core
// guarantees the change never disturbs an in-flight group.
type ApplyFunc func(cfg *Config)

// Reloader watches a policy file for changes and triggers hot-reload.
type Reloader struct {
	watcher *fsnotify.Watcher
	apply   ApplyFunc
	path    string
	last    string // hash of last applied policy
}

// NewReloader creates a file watcher for the given policy path.
func NewReloader(path string, apply ApplyFunc) (*Reloader, error) {
	if path == "" {
		return nil, fmt.Errorf("policy path is empty")
	}
	if apply == nil {
		return nil, fmt.Errorf("apply callback is nil")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("policy file %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %q: %w", path, err)
	}

	return &Reloader{
		watcher: watcher,
		apply:   apply,
		path:    path,
	}, nil
}

// Run watches for file changes and reloads the policy. Blocks until ctx is
// cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "policy watcher error: %v\n", err)
		}
	}
}

func (r *Reloader) reload() {
	cfg, err := LoadConfig(r.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy hot-reload failed: %v\n", err)
		return
	}
	hash := cfg.Hash()
	if hash == r.last {
		return
	}
	r.last = hash
	r.apply(cfg)
}
