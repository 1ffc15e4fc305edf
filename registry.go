package cinit

import (
	"fmt"
	"sync"
)

// ConstantRegistry manages named integer constants in a thread-safe
// manner. It backs the Environments handed to the expression evaluator;
// the package keeps no global instance, so independent extractions never
// share state.
type ConstantRegistry struct {
	mu     sync.RWMutex
	consts map[string]int64
}

// NewConstantRegistry creates a new constant registry
func NewConstantRegistry() *ConstantRegistry {
	return &ConstantRegistry{
		consts: make(map[string]int64),
	}
}

// Register adds a constant to the registry
func (r *ConstantRegistry) Register(name string, value int64) error {
	if name == "" {
		return fmt.Errorf("constant name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.consts[name]; exists {
		return fmt.Errorf("constant %s already registered", name)
	}

	r.consts[name] = value
	return nil
}

// RegisterDefines evaluates a define map against base and registers every
// define that resolves to an integer. Already-registered names are kept.
func (r *ConstantRegistry) RegisterDefines(defines map[string]string, base *Environment) {
	if base == nil {
		base = DefaultEnv()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, value := range defines {
		if _, exists := r.consts[name]; exists {
			continue
		}
		if n, err := EvaluateWith(value, base); err == nil {
			r.consts[name] = n
		}
	}
}

// Lookup retrieves a constant from the registry
func (r *ConstantRegistry) Lookup(name string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.consts[name]
	return value, ok
}

// List returns all registered constant names
func (r *ConstantRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.consts))
	for name := range r.consts {
		names = append(names, name)
	}
	return names
}

// Clear removes all registered constants
func (r *ConstantRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consts = make(map[string]int64)
}

// Environment snapshots the registry into an Environment chained onto
// base. The snapshot does not observe later registrations.
func (r *ConstantRegistry) Environment(base *Environment) *Environment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	env := NewEnv(base)
	for name, value := range r.consts {
		env.vars[name] = value
	}
	return env
}
