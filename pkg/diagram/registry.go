package diagram

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/canvaskit/pkg/errors"
)

// ShapeFactory builds a detached shape of one registered type with the
// given id.
type ShapeFactory func(id string) *Shape

// ToolbarFactory builds a shape for a toolbar item id.
type ToolbarFactory func(id string) (*Shape, error)

// Built-in shape type names.
const (
	TypeRectangle = "rectangle"
	TypeCustom    = "custom"
)

// Registry maps shape type names to factories. Lookups of unknown names fail
// unless a fallback factory is set.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ShapeFactory
	fallback  ShapeFactory
}

// NewRegistry returns a registry with the built-in "rectangle" (regular)
// and "custom" types.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]ShapeFactory)}
	r.Register(TypeRectangle, func(id string) *Shape { return NewShape(id, KindRegular) })
	r.Register(TypeCustom, func(id string) *Shape { return NewShape(id, KindCustom) })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f ShapeFactory) {
	if name == "" || f == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// SetFallback sets the factory used for unknown type names.
func (r *Registry) SetFallback(f ShapeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// New builds a shape of type name. The shape's Type is set to name.
func (r *Registry) New(name, id string) (*Shape, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	if !ok {
		f = r.fallback
	}
	r.mu.RUnlock()
	if f == nil {
		return nil, errors.New(errors.ErrCodeUnknownType, "unknown shape type %q", name)
	}
	s := f(id)
	if s == nil {
		return nil, errors.New(errors.ErrCodeInternal, "factory for %q returned nil", name)
	}
	if ok || s.Type == "" {
		s.Type = name
	}
	return s, nil
}
