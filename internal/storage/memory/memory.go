// Package memory provides a map-backed storage.Repository.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"content-loader/internal/schema"
	"content-loader/internal/storage"
)

// Repository keeps saved objects in memory. Stored objects are snapshots:
// changes made to a returned object are visible only after Save.
type Repository struct {
	schemas *schema.Registry

	mu      sync.RWMutex
	objects map[string]*storage.Entity
	order   []string // ids in first-save order
}

var _ storage.Repository = (*Repository)(nil)

// New returns an empty repository serving the types in reg.
func New(reg *schema.Registry) *Repository {
	return &Repository{
		schemas: reg,
		objects: map[string]*storage.Entity{},
	}
}

func (r *Repository) HasType(name string) bool {
	return r.schemas.Has(name)
}

func (r *Repository) Schema(name string) (*schema.TypeSchema, bool) {
	return r.schemas.Get(name)
}

// Create returns a new unsaved object with a random UUID.
func (r *Repository) Create(ctx context.Context, typeName string, props map[string]any) (storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts, ok := r.schemas.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownType, typeName)
	}

	return storage.NewEntity(ts, uuid.NewString(), props), nil
}

// Query returns saved objects of typeName matching all conditions, oldest first.
func (r *Repository) Query(ctx context.Context, typeName string, conds []storage.Condition) ([]storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !r.schemas.Has(typeName) {
		return nil, fmt.Errorf("%w %q", storage.ErrUnknownType, typeName)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []storage.Object

	for _, id := range r.order {
		e := r.objects[id]
		if e.Type() != typeName || !storage.Matches(e, conds) {
			continue
		}

		out = append(out, e.Clone())
	}

	return out, nil
}

func (r *Repository) Load(ctx context.Context, typeName, id string) (storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.objects[id]
	if !ok || e.Type() != typeName {
		return nil, fmt.Errorf("%w: %s:%s", storage.ErrNotFound, typeName, id)
	}

	return e.Clone(), nil
}

func (r *Repository) Save(ctx context.Context, obj storage.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ts, ok := r.schemas.Get(obj.Type())
	if !ok {
		return fmt.Errorf("%w %q", storage.ErrUnknownType, obj.Type())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[obj.ID()]; !exists {
		r.order = append(r.order, obj.ID())
	}

	obj.MarkSaved()
	r.objects[obj.ID()] = storage.Snapshot(ts, obj)

	return nil
}

func (r *Repository) Delete(ctx context.Context, obj storage.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[obj.ID()]; !ok {
		return fmt.Errorf("%w: %s:%s", storage.ErrNotFound, obj.Type(), obj.ID())
	}

	delete(r.objects, obj.ID())
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == obj.ID() })

	return nil
}

// Len returns the number of saved objects.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.objects)
}
