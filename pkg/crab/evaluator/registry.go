package evaluator

import (
	"strings"
	"sync"

	"github.com/google/btree"
)

// Registry maps native names to implementations. It is filled before a
// program runs and read concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	natives map[string]*Native
	names   *btree.BTreeG[string]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		natives: make(map[string]*Native),
		names:   btree.NewG[string](8, func(a, b string) bool { return a < b }),
	}
}

// Register adds or replaces a native.
func (r *Registry) Register(name string, fn NativeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.natives[name] = &Native{name: name, Fn: fn, registry: r}
	r.names.ReplaceOrInsert(name)
}

// Lookup returns the native registered under name.
func (r *Registry) Lookup(name string) (*Native, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.natives[name]
	return n, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, r.names.Len())
	r.names.Ascend(func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Complete returns the registered names starting with prefix, sorted.
func (r *Registry) Complete(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	r.names.AscendGreaterOrEqual(prefix, func(name string) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		names = append(names, name)
		return true
	})
	return names
}

// sameNative reports whether a and b are the same registry entry.
func sameNative(a, b Callable) bool {
	na, ok := a.(*Native)
	if !ok {
		return false
	}
	nb, ok := b.(*Native)
	if !ok {
		return false
	}
	return na.registry == nb.registry && na.name == nb.name
}
