package schema

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateType is returned when two schemas share a name.
var ErrDuplicateType = errors.New("duplicate type")

// Registry serves type schemas by name. It is filled once and read-only
// afterwards, so it is safe for concurrent readers.
type Registry struct {
	types map[string]*TypeSchema
	order []string
}

// NewRegistry returns a registry holding the given schemas.
func NewRegistry(types ...TypeSchema) (*Registry, error) {
	r := &Registry{types: make(map[string]*TypeSchema, len(types))}

	for i := range types {
		if err := r.add(types[i]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for tests
// and static schema tables.
func MustRegistry(types ...TypeSchema) *Registry {
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}

	return r
}

func (r *Registry) add(t TypeSchema) error {
	if t.Name == "" {
		return errors.New("type name is empty")
	}

	if _, ok := r.types[t.Name]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateType, t.Name)
	}

	r.types[t.Name] = &t
	r.order = append(r.order, t.Name)

	return nil
}

// Has reports whether name is a known type.
func (r *Registry) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Get returns the schema for name.
func (r *Registry) Get(name string) (*TypeSchema, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns the type names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.order)
}
