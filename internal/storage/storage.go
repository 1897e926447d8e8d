package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"content-loader/internal/schema"
)

var (
	// ErrNotFound is returned by Load when no object has the given identity.
	ErrNotFound = errors.New("object not found")
	// ErrUnknownType is returned for type names without a schema.
	ErrUnknownType = errors.New("unknown type")
	// ErrUndefinedField is returned when writing a field the schema does not declare.
	ErrUndefinedField = errors.New("undefined field")
	// ErrCardinality is returned when appending past a field's cardinality.
	ErrCardinality = errors.New("field cardinality exceeded")
)

// Repository is the storage collaborator: schema lookup, object creation,
// condition queries and persistence. Objects returned by Create are not
// persisted until Save.
type Repository interface {
	HasType(name string) bool
	Schema(name string) (*schema.TypeSchema, bool)

	Create(ctx context.Context, typeName string, props map[string]any) (Object, error)
	Query(ctx context.Context, typeName string, conds []Condition) ([]Object, error)
	Load(ctx context.Context, typeName, id string) (Object, error)
	Save(ctx context.Context, obj Object) error
	Delete(ctx context.Context, obj Object) error
}

// Object is an instance of a content type.
type Object interface {
	ID() string
	Type() string

	// Property returns a structural property (identity or subtype selector).
	Property(key string) (any, bool)
	Properties() map[string]any

	HasField(name string) bool
	Field(name string) []any
	SetField(name string, value any) error
	AppendField(name string, value any) error
	ClearField(name string)

	// IsNew reports whether the object has never been saved.
	IsNew() bool
	MarkSaved()
}

// Reference is the resolved value of an entity reference field.
type Reference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// String returns "type:id".
func (r Reference) String() string {
	return r.Type + ":" + r.ID
}

// RefTo returns a reference to obj.
func RefTo(obj Object) Reference {
	return Reference{Type: obj.Type(), ID: obj.ID()}
}

// Condition is an equality match on a property or a field value.
type Condition struct {
	Field string
	Value any
}

// String returns "field=value".
func (c Condition) String() string {
	return fmt.Sprintf("%s=%v", c.Field, c.Value)
}

// Equal compares two stored values. Numbers compare by value regardless of
// their Go type and times compare as instants.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}

	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Matches reports whether obj satisfies every condition. A condition on a
// structural property compares the property; otherwise it matches when any
// value of the field equals the condition value.
func Matches(obj Object, conds []Condition) bool {
	for _, c := range conds {
		if v, ok := obj.Property(c.Field); ok {
			if !Equal(v, c.Value) {
				return false
			}

			continue
		}

		found := false

		for _, v := range obj.Field(c.Field) {
			if Equal(v, c.Value) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
