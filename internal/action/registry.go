package action

import (
	"context"
	"fmt"
	"sync"
)

// ExecutorFunc performs a non-terminal action's side effect and returns an
// outcome description for the narration pass.
type ExecutorFunc func(ctx context.Context, callID string, call *FunctionCall) (string, error)

// Registry stores executors keyed by function name.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]ExecutorFunc
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]ExecutorFunc),
	}
}

// Register adds a new executor for a function name.
func (r *Registry) Register(name string, exec ExecutorFunc) error {
	if name == "" {
		return fmt.Errorf("function name is required")
	}
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[name]; exists {
		return fmt.Errorf("executor already registered for %s", name)
	}
	r.executors[name] = exec
	return nil
}

// MustRegister adds an executor or panics.
func (r *Registry) MustRegister(name string, exec ExecutorFunc) {
	if err := r.Register(name, exec); err != nil {
		panic(err)
	}
}

// Has reports whether an executor is registered for the function name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[name]
	return ok
}

// Execute runs the executor for the function name.
func (r *Registry) Execute(ctx context.Context, callID string, call *FunctionCall) (string, error) {
	r.mu.RLock()
	exec := r.executors[call.Name]
	r.mu.RUnlock()
	if exec == nil {
		return "", fmt.Errorf("no executor registered for %s", call.Name)
	}
	return exec(ctx, callID, call)
}
