package renderer

import (
	"sort"
	"sync"

	"github.com/clifactory/clifactory/internal/errors"
)

// Factory builds a renderer on first use. Construction parses the target's
// entry template, so it is deferred until a render actually needs it.
type Factory func() (Renderer, error)

// Registry maps target identifiers onto renderers. The target set is fixed
// at startup; renderers are never discovered at runtime.
type Registry struct {
	mutex     sync.Mutex
	factories map[string]Factory
	instances map[string]Renderer
}

// NewRegistry returns a registry pre-wired with the supported targets.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Renderer),
	}
	r.Register("python", func() (Renderer, error) { return newTargetRenderer(pythonProfile()) })
	r.Register("nodejs", func() (Renderer, error) { return newTargetRenderer(nodeProfile()) })
	r.Register("typescript", func() (Renderer, error) { return newTargetRenderer(typescriptProfile()) })
	r.Register("rust", func() (Renderer, error) { return newTargetRenderer(rustProfile()) })
	return r
}

// Register installs a factory for a target, replacing any previous one.
func (r *Registry) Register(target string, factory Factory) {
	r.mutex.Lock()
	r.factories[target] = factory
	delete(r.instances, target)
	r.mutex.Unlock()
}

// ForTarget returns the renderer for a target, constructing and caching it
// on first request.
func (r *Registry) ForTarget(target string) (Renderer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if instance, ok := r.instances[target]; ok {
		return instance, nil
	}
	factory, ok := r.factories[target]
	if !ok {
		return nil, errors.ErrUnknownTarget(target, r.availableLocked())
	}
	instance, err := factory()
	if err != nil {
		return nil, err
	}
	r.instances[target] = instance
	return instance, nil
}

// Available lists the registered targets in sorted order.
func (r *Registry) Available() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.availableLocked()
}

func (r *Registry) availableLocked() []string {
	targets := make([]string, 0, len(r.factories))
	for target := range r.factories {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}
