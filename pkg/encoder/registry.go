package encoder

import (
	"sort"
	"sync"

	"github.com/user/screenrec/pkg/ports"
)

// CodecFactory creates a fresh, unopened codec.
type CodecFactory func() ports.VideoCodec

// Registry maps codec identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[ports.CodecID]CodecFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[ports.CodecID]CodecFactory)}
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id ports.CodecID, factory CodecFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// Lookup returns the factory for id.
func (r *Registry) Lookup(id ports.CodecID) (CodecFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []ports.CodecID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ports.CodecID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
