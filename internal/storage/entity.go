package storage

import (
	"fmt"
	"maps"
	"slices"

	"content-loader/internal/schema"
)

// Entity is the Object implementation shared by the repositories.
type Entity struct {
	id     string
	schema *schema.TypeSchema
	props  map[string]any
	fields map[string][]any
	saved  bool
}

var _ Object = (*Entity)(nil)

// NewEntity returns an unsaved entity of type ts.
func NewEntity(ts *schema.TypeSchema, id string, props map[string]any) *Entity {
	e := &Entity{
		id:     id,
		schema: ts,
		props:  make(map[string]any, len(props)),
		fields: map[string][]any{},
	}

	maps.Copy(e.props, props)

	return e
}

func (e *Entity) ID() string   { return e.id }
func (e *Entity) Type() string { return e.schema.Name }

// Schema returns the type schema of the entity.
func (e *Entity) Schema() *schema.TypeSchema { return e.schema }

func (e *Entity) Property(key string) (any, bool) {
	v, ok := e.props[key]
	return v, ok
}

// Properties returns a copy of the structural properties.
func (e *Entity) Properties() map[string]any {
	return maps.Clone(e.props)
}

// SetProperty sets a structural property.
func (e *Entity) SetProperty(key string, value any) {
	e.props[key] = value
}

func (e *Entity) HasField(name string) bool {
	_, ok := e.schema.Field(name)
	return ok
}

// Field returns a copy of the field values.
func (e *Entity) Field(name string) []any {
	return slices.Clone(e.fields[name])
}

// SetField replaces the field content with a single value.
func (e *Entity) SetField(name string, value any) error {
	if _, err := e.field(name); err != nil {
		return err
	}

	e.fields[name] = []any{value}

	return nil
}

// AppendField adds a value after the existing ones.
func (e *Entity) AppendField(name string, value any) error {
	fd, err := e.field(name)
	if err != nil {
		return err
	}

	if !fd.Cardinality.Allows(len(e.fields[name]) + 1) {
		return fmt.Errorf("%w: %s.%s holds at most %s values", ErrCardinality, e.Type(), name, fd.Cardinality)
	}

	e.fields[name] = append(e.fields[name], value)

	return nil
}

func (e *Entity) ClearField(name string) {
	delete(e.fields, name)
}

// FieldNames returns the names of fields holding values, in schema order.
func (e *Entity) FieldNames() []string {
	var names []string

	for _, fd := range e.schema.Fields {
		if len(e.fields[fd.Name]) > 0 {
			names = append(names, fd.Name)
		}
	}

	return names
}

func (e *Entity) IsNew() bool { return !e.saved }
func (e *Entity) MarkSaved()  { e.saved = true }

// Clone returns a deep copy of the entity's maps; values are shared.
func (e *Entity) Clone() *Entity {
	c := &Entity{
		id:     e.id,
		schema: e.schema,
		props:  maps.Clone(e.props),
		fields: make(map[string][]any, len(e.fields)),
		saved:  e.saved,
	}

	for k, v := range e.fields {
		c.fields[k] = slices.Clone(v)
	}

	return c
}

// String returns "type:id".
func (e *Entity) String() string {
	return e.Type() + ":" + e.id
}

func (e *Entity) field(name string) (*schema.FieldDef, error) {
	fd, ok := e.schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUndefinedField, e.Type(), name)
	}

	return fd, nil
}

// Snapshot copies an Object into a fresh Entity of schema ts.
func Snapshot(ts *schema.TypeSchema, obj Object) *Entity {
	e := NewEntity(ts, obj.ID(), obj.Properties())

	for _, fd := range ts.Fields {
		if values := obj.Field(fd.Name); len(values) > 0 {
			e.fields[fd.Name] = values
		}
	}

	e.saved = !obj.IsNew()

	return e
}
