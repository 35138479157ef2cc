package registry

import (
	"fmt"
	"maps"
	"sync"
)

// Category groups block types for the palette UI. Purely presentational.
type Category struct {
	Key   string
	Label string
	Types []BlockType
}

// Registry is the process-wide block catalog. It is read-only after
// construction and is the single source of truth for legal property names,
// constraints, and defaults.
type Registry struct {
	mu         sync.RWMutex
	entries    map[BlockType]ComponentDefinition
	order      []BlockType
	categories []Category
}

// Option customises registry construction.
type Option func(*Registry)

// WithCategories declares the palette grouping exposed via Categories().
func WithCategories(categories []Category) Option {
	return func(r *Registry) {
		r.categories = categories
	}
}

// New builds a registry from the supplied definitions. Construction fails
// fast on duplicate block types and on definitions whose defaults or zones
// violate their own invariants.
func New(definitions []ComponentDefinition, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries: make(map[BlockType]ComponentDefinition, len(definitions)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, def := range definitions {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.entries[def.Type]; dup {
			return nil, fmt.Errorf("registry: duplicate block type %q", def.Type)
		}
		r.entries[def.Type] = cloneDefinition(def)
		r.order = append(r.order, def.Type)
	}

	for _, category := range r.categories {
		for _, t := range category.Types {
			if _, ok := r.entries[t]; !ok {
				return nil, fmt.Errorf("registry: category %q references unknown type %q", category.Key, t)
			}
		}
	}

	return r, nil
}

// DefinitionFor returns the definition registered for t.
func (r *Registry) DefinitionFor(t BlockType) (ComponentDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.entries[t]
	if !ok {
		return ComponentDefinition{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return cloneDefinition(def), nil
}

// Types lists the registered block types in registration order.
func (r *Registry) Types() []BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]BlockType, len(r.order))
	copy(out, r.order)
	return out
}

// Categories returns the palette grouping declared at construction.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, 0, len(r.categories))
	for _, category := range r.categories {
		types := make([]BlockType, len(category.Types))
		copy(types, category.Types)
		category.Types = types
		out = append(out, category)
	}
	return out
}

func cloneDefinition(def ComponentDefinition) ComponentDefinition {
	cloned := def

	cloned.FieldOrder = make([]string, len(def.FieldOrder))
	copy(cloned.FieldOrder, def.FieldOrder)

	cloned.Fields = make(map[string]FieldSpec, len(def.Fields))
	for name, spec := range def.Fields {
		options := make([]SelectOption, len(spec.Options))
		copy(options, spec.Options)
		spec.Options = options
		cloned.Fields[name] = spec
	}

	cloned.Defaults = make(map[string]any, len(def.Defaults))
	maps.Copy(cloned.Defaults, def.Defaults)

	cloned.Zones = make([]string, len(def.Zones))
	copy(cloned.Zones, def.Zones)

	return cloned
}
