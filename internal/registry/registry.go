package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/clifactory/clifactory/internal/errors"
	"github.com/clifactory/clifactory/internal/logging"
)

// Registry is the process-wide component catalogue. It is constructed once
// and passed by reference into the dispatcher; there is no package-level
// singleton, so tests can build and discard registries freely.
type Registry struct {
	dir    string
	logger logging.Logger

	mutex      sync.RWMutex
	components map[string]*Component
	// fallbacks are consulted only when the library has no file for a
	// requested component.
	fallbacks map[string]*Component

	// loads collapses concurrent first requests for the same component
	// into a single disk read.
	loads singleflight.Group

	watcher *fsnotify.Watcher
}

// New creates a registry backed by a component library directory laid out
// as <dir>/<target>/<name>.tmpl. dir may be empty when only registered
// (built-in) components are wanted.
func New(dir string, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		dir:        dir,
		logger:     logger.WithComponent("registry"),
		components: make(map[string]*Component),
		fallbacks:  make(map[string]*Component),
	}
}

// Register adds a component directly, taking precedence over the library
// directory. Tests and explicit overrides use this path.
func (r *Registry) Register(c *Component) {
	c.DependsOn = parseDependencies(c.Content)
	r.mutex.Lock()
	r.components[c.key()] = c
	r.mutex.Unlock()
}

// RegisterFallback adds a component used only when the library has no file
// for its (name, target). Library fragments shadow fallbacks.
func (r *Registry) RegisterFallback(c *Component) {
	c.DependsOn = parseDependencies(c.Content)
	r.mutex.Lock()
	r.fallbacks[c.key()] = c
	r.mutex.Unlock()
}

// Get returns the component for (name, target), loading it from the library
// on first request. A missing component is a not-found error, never a nil
// component.
func (r *Registry) Get(ctx context.Context, name, target string) (*Component, error) {
	key := Key(name, target)

	r.mutex.RLock()
	cached, ok := r.components[key]
	r.mutex.RUnlock()
	if ok {
		return cached, nil
	}

	loaded, err, _ := r.loads.Do(key, func() (any, error) {
		// Another caller may have finished loading between the cache miss
		// and entering the flight group.
		r.mutex.RLock()
		cached, ok := r.components[key]
		r.mutex.RUnlock()
		if ok {
			return cached, nil
		}

		component, err := r.loadFromDir(ctx, name, target)
		if err != nil {
			return nil, err
		}
		r.mutex.Lock()
		r.components[key] = component
		r.mutex.Unlock()
		return component, nil
	})
	if err != nil {
		return nil, err
	}
	return loaded.(*Component), nil
}

// Has reports whether the component is available without treating absence
// as an error.
func (r *Registry) Has(ctx context.Context, name, target string) bool {
	_, err := r.Get(ctx, name, target)
	return err == nil
}

func (r *Registry) loadFromDir(ctx context.Context, name, target string) (*Component, error) {
	if r.dir == "" {
		return r.fallback(name, target)
	}
	path := filepath.Join(r.dir, target, name+".tmpl")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r.fallback(name, target)
		}
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("reading component %s: %v", path, err))
	}

	component := &Component{
		Name:      name,
		Target:    target,
		Content:   string(content),
		DependsOn: parseDependencies(string(content)),
	}
	r.logger.Debug(ctx, "component loaded",
		"name", name, "target", target, "path", path, "deps", len(component.DependsOn))
	return component, nil
}

func (r *Registry) fallback(name, target string) (*Component, error) {
	r.mutex.RLock()
	c, ok := r.fallbacks[Key(name, target)]
	r.mutex.RUnlock()
	if !ok {
		return nil, notFound(name, target)
	}
	return c, nil
}

func notFound(name, target string) error {
	err := errors.NewRenderError(target, errors.ErrCodeComponentNotFound,
		fmt.Sprintf("component %q is not available for target %q", name, target), nil)
	err.Component = name
	return err
}

// IsNotFound reports whether err marks a component absent for a target, as
// opposed to a broken library.
func IsNotFound(err error) bool {
	var perr *errors.PipelineError
	return errors.As(err, &perr) && perr.Code == errors.ErrCodeComponentNotFound
}

// MissingComponent returns the name of the component a not-found error is
// about. Resolve surfaces the error of the innermost missing dependency, so
// this names the actual gap rather than the component that pulled it in.
func MissingComponent(err error) (string, bool) {
	var perr *errors.PipelineError
	if errors.As(err, &perr) && perr.Code == errors.ErrCodeComponentNotFound {
		return perr.Component, true
	}
	return "", false
}

// Resolve returns the component plus its transitive dependencies for one
// target, dependencies first. Cyclic dependency declarations are a
// configuration error, mirroring how cyclic validator dependencies are
// rejected.
func (r *Registry) Resolve(ctx context.Context, name, target string) ([]*Component, error) {
	var ordered []*Component
	visiting := make(map[string]bool)
	resolved := make(map[string]bool)

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		if resolved[name] {
			return nil
		}
		if visiting[name] {
			return errors.NewConfigError(errors.ErrCodeComponentCycle,
				fmt.Sprintf("component dependency cycle: %v -> %s", chain, name))
		}
		visiting[name] = true

		component, err := r.Get(ctx, name, target)
		if err != nil {
			return err
		}
		for _, dep := range component.DependsOn {
			if err := visit(dep, append(chain, name)); err != nil {
				return err
			}
		}

		visiting[name] = false
		resolved[name] = true
		ordered = append(ordered, component)
		return nil
	}

	if err := visit(name, nil); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Invalidate drops one cached component so the next request reloads it.
func (r *Registry) Invalidate(name, target string) {
	r.mutex.Lock()
	delete(r.components, Key(name, target))
	r.mutex.Unlock()
}

// Clear empties the cache and the fallback set. Primarily for tests.
func (r *Registry) Clear() {
	r.mutex.Lock()
	r.components = make(map[string]*Component)
	r.fallbacks = make(map[string]*Component)
	r.mutex.Unlock()
}

// Len returns the number of cached components.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.components)
}
