package discovery

import (
	"context"
	"fmt"
	"sync"
)

// Registry is a Loader backed by modules registered at compile time, keyed
// by mount path. A source file without a registered module fails to load.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]any)}
}

// Register adds a module value for the given mount path, replacing any
// previous registration.
func (r *Registry) Register(mountPath string, module any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[mountPath] = module
	return r
}

// Load returns the module registered for d.MountPath.
func (r *Registry) Load(_ context.Context, d Descriptor) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[d.MountPath]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrMissingModule, d.MountPath)
	}
	return m, nil
}
