package evaluator

import "sync"

// Scope is one activation of a { } block. Bindings live in slots the parser
// assigned; identifiers address them by (slot, depth) where depth counts
// scopes from the root.
type Scope struct {
	mu     sync.RWMutex
	slots  []Value
	parent *Scope
	depth  int
	rt     *Runtime

	args      []Value
	hasArgs   bool
	argsOwner *Scope
}

// Runtime returns the runtime the scope belongs to.
func (s *Scope) Runtime() *Runtime { return s.rt }

// Depth returns the number of ancestors of s.
func (s *Scope) Depth() int { return s.depth }

// NewChild creates a scope nested in s.
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, depth: s.depth + 1, rt: s.rt}
}

// ancestor walks up to the scope at depth.
func (s *Scope) ancestor(depth int) *Scope {
	if depth > s.depth || depth < 0 {
		fail("INTERNAL-0002", map[string]any{"Depth": depth, "From": s.depth})
	}
	cur := s
	for cur.depth > depth {
		cur = cur.parent
	}
	return cur
}

// Define binds slot in s. Slots are normally defined in order; a slot that
// is already bound means the name was declared twice in one activation.
func (s *Scope) Define(slot int, name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case slot == len(s.slots):
		s.slots = append(s.slots, v)
	case slot < len(s.slots):
		if s.slots[slot] != nil {
			fail("STATE-0001", map[string]any{"Name": name})
		}
		s.slots[slot] = v
	default:
		// An earlier declaration was skipped, e.g. a branch that did not run
		// or a REPL input that failed half way. Its slot stays unbound.
		for len(s.slots) < slot {
			s.slots = append(s.slots, nil)
		}
		s.slots = append(s.slots, v)
	}
}

// Lookup returns the value in (slot, depth). It reports false when the slot
// has not been bound yet.
func (s *Scope) Lookup(slot, depth int) (Value, bool) {
	owner := s.ancestor(depth)
	owner.mu.RLock()
	defer owner.mu.RUnlock()

	if slot >= len(owner.slots) || owner.slots[slot] == nil {
		return nil, false
	}
	return owner.slots[slot], true
}

// View runs fn on the value in (slot, depth) while holding the owning
// scope's read lock and returns what fn returns. fn must not touch scopes.
// It reports false when the slot has not been bound yet.
func (s *Scope) View(slot, depth int, fn func(Value) Value) (Value, bool) {
	owner := s.ancestor(depth)
	owner.mu.RLock()
	defer owner.mu.RUnlock()

	if slot >= len(owner.slots) || owner.slots[slot] == nil {
		return nil, false
	}
	return fn(owner.slots[slot]), true
}

// Get returns the value in (slot, depth). An unbound slot is an internal
// error.
func (s *Scope) Get(slot, depth int) Value {
	v, ok := s.Lookup(slot, depth)
	if !ok {
		fail("INTERNAL-0001", map[string]any{"Slot": slot, "Depth": depth})
	}
	return v
}

// Set overwrites the bound value in (slot, depth). It reports false when
// the slot is unbound.
func (s *Scope) Set(slot, depth int, v Value) bool {
	owner := s.ancestor(depth)
	owner.mu.Lock()
	defer owner.mu.Unlock()

	if slot >= len(owner.slots) || owner.slots[slot] == nil {
		return false
	}
	owner.slots[slot] = v
	return true
}

// Update runs fn on the value in (slot, depth) while holding the owning
// scope's write lock, storing what fn returns. It reports false when the
// slot is unbound.
func (s *Scope) Update(slot, depth int, fn func(Value) Value) bool {
	owner := s.ancestor(depth)
	owner.mu.Lock()
	defer owner.mu.Unlock()

	if slot >= len(owner.slots) || owner.slots[slot] == nil {
		return false
	}
	owner.slots[slot] = fn(owner.slots[slot])
	return true
}

// Clear drops every binding, keeping the scope itself.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.slots)
	s.slots = s.slots[:0]
}

// DefineArguments makes s the activation scope of a call with args.
func (s *Scope) DefineArguments(args []Value) {
	s.args = args
	s.hasArgs = true
	s.argsOwner = s
}

// argumentScope finds the nearest scope holding call arguments and caches it.
func (s *Scope) argumentScope() *Scope {
	if s.argsOwner != nil {
		return s.argsOwner
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur.hasArgs {
			s.argsOwner = cur
			return cur
		}
	}
	fail("STATE-0004", nil)
	return nil
}

// Arguments returns a copy of the current call's arguments.
func (s *Scope) Arguments() []Value {
	owner := s.argumentScope()
	out := make([]Value, len(owner.args))
	for i, v := range owner.args {
		out[i] = v.Clone()
	}
	return out
}

// Argument returns the i-th argument of the current call.
func (s *Scope) Argument(i int) (Value, bool) {
	owner := s.argumentScope()
	if i < 0 || i >= len(owner.args) {
		return nil, false
	}
	return owner.args[i].Clone(), true
}
