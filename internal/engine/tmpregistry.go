package engine

import (
	"log/slog"
	"os"
	"sync"
)

// parts holds the .cuesplit-tmp files currently being written. A sweep
// after the pool stops catches files whose worker was cancelled mid-copy
// and never reached its own deferred remove.
var parts = &partRegistry{live: map[string]struct{}{}}

type partRegistry struct {
	mu   sync.Mutex
	live map[string]struct{}
}

func (r *partRegistry) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[path] = struct{}{}
}

func (r *partRegistry) drop(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, path)
}

// sweep removes every registered part file and empties the registry.
func (r *partRegistry) sweep() {
	r.mu.Lock()
	stale := make([]string, 0, len(r.live))
	for p := range r.live {
		stale = append(stale, p)
	}
	r.live = map[string]struct{}{}
	r.mu.Unlock()

	for _, p := range stale {
		if os.Remove(p) == nil {
			slog.Debug("removed stale part file", "path", p)
		}
	}
}
