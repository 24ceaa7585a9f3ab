// Package registry manages the loop idiom matchers with thread-safe
// operations. The registry is idiom-agnostic and works solely through the
// Matcher interface, so new loop idioms can be added without touching the
// engine.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chainkt/chainkt/internal/ir"
	"github.com/chainkt/chainkt/internal/transform"
)

// Matcher recognizes one family of loop idioms. Match inspects a normalized
// loop and returns the rewrite transformation, or nil when the loop does not
// fit. MatchWithFilter additionally receives the filter condition peeled off
// the loop body, nil when the body had no leading filter.
type Matcher interface {
	Name() string
	Match(state *ir.MatchingState) *transform.Result
	MatchWithFilter(state *ir.MatchingState, filter *ir.FilterCondition) *transform.Result
}

// Registry holds the registered matchers.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
	order    []string
}

// NewRegistry creates an empty matcher registry. Matchers must be registered
// explicitly; the registry has zero knowledge of specific idioms.
func NewRegistry() *Registry {
	return &Registry{matchers: make(map[string]Matcher)}
}

// Register adds a matcher to the registry.
func (r *Registry) Register(m Matcher) error {
	if m == nil {
		return fmt.Errorf("matcher cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if name == "" {
		return fmt.Errorf("matcher must have a non-empty name")
	}
	if _, exists := r.matchers[name]; exists {
		return fmt.Errorf("matcher '%s' already registered", name)
	}

	r.matchers[name] = m
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a matcher by name.
func (r *Registry) Get(name string) (Matcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.matchers[name]
	if !exists {
		return nil, fmt.Errorf("no matcher registered for '%s'", name)
	}
	return m, nil
}

// Has checks whether a matcher is registered under the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.matchers[name]
	return exists
}

// List returns the registered matchers in registration order.
func (r *Registry) List() []Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Matcher, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.matchers[name])
	}
	return out
}

// Names returns the registered matcher names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.matchers))
	for name := range r.matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a matcher. Primarily used for testing.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matchers[name]; !exists {
		return fmt.Errorf("matcher '%s' not found", name)
	}
	delete(r.matchers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all matchers. Primarily used for testing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matchers = make(map[string]Matcher)
	r.order = nil
}

// DefaultRegistry is the global instance the CLI wires its matchers into.
var DefaultRegistry = NewRegistry()

// Register adds a matcher to the default registry.
func Register(m Matcher) error {
	return DefaultRegistry.Register(m)
}

// Get retrieves a matcher from the default registry.
func Get(name string) (Matcher, error) {
	return DefaultRegistry.Get(name)
}

// List returns all matchers from the default registry.
func List() []Matcher {
	return DefaultRegistry.List()
}
