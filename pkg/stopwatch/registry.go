package stopwatch

import (
	"fmt"
	"sync"
)

// Registry owns a set of stopwatches indexed by unique identifier. Entries
// are added exactly once per identifier and never removed or replaced. A
// Registry is an explicit value with caller-owned lifetime; construct one
// with NewRegistry and share it by reference.
type Registry struct {
	mu      sync.Mutex
	watches map[string]*Stopwatch
}

// NewRegistry returns an empty registry ready for use.
func NewRegistry() *Registry {
	return &Registry{
		watches: make(map[string]*Stopwatch),
	}
}

// Create constructs a new Idle stopwatch under the given identifier and
// returns it. It returns ErrInvalidID for an empty identifier and
// ErrDuplicateID if the identifier is already taken. The existence check
// and the insert are a single atomic step: under concurrent calls with the
// same identifier exactly one succeeds.
func (r *Registry) Create(id string) (*Stopwatch, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watches[id]; exists {
		return nil, fmt.Errorf("create %q: %w", id, ErrDuplicateID)
	}
	sw := newStopwatch(id)
	r.watches[id] = sw
	return sw, nil
}

// Get returns the stopwatch registered under id, if any.
func (r *Registry) Get(id string) (*Stopwatch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sw, ok := r.watches[id]
	return sw, ok
}

// List returns a point-in-time snapshot of all stopwatches created so far,
// in no particular order. The returned slice is never a live view into the
// registry.
func (r *Registry) List() []*Stopwatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Stopwatch, 0, len(r.watches))
	for _, sw := range r.watches {
		out = append(out, sw)
	}
	return out
}

// Len returns the number of stopwatches created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watches)
}
