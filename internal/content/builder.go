package content

import (
	"context"
	"fmt"

	"content-loader/internal/record"
	"content-loader/internal/schema"
	"content-loader/internal/storage"
)

// build creates or finds the object for one record of type typeName and
// populates its fields. data must no longer carry the type key or
// directives. The object is not saved.
func (s *session) build(ctx context.Context, typeName string, data *record.Node) (storage.Object, error) {
	ts, ok := s.repo.Schema(typeName)
	if !ok {
		return nil, &UnknownTypeError{Name: typeName, Line: data.Line}
	}

	if !data.IsMapping() {
		return nil, fmt.Errorf("line %d: %s record must be a mapping, got %s", data.Line, typeName, data.Kind)
	}

	props, err := s.structuralProps(ts, data)
	if err != nil {
		return nil, err
	}

	var (
		obj      storage.Object
		updating bool
	)

	if s.existenceCheck {
		obj, err = s.find(ctx, ts, props, data)
		if err != nil {
			return nil, err
		}

		updating = obj != nil
	} else {
		s.saltUnique(ts, data)
	}

	if obj == nil {
		obj, err = s.repo.Create(ctx, typeName, props)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", typeName, err)
		}
	}

	for field, value := range data.All() {
		if err := s.populate(ctx, obj, ts, field, value, updating); err != nil {
			if !isFieldLevel(err) {
				return nil, err
			}

			s.report(err, typeName, field, value)
		}
	}

	return obj, nil
}

// structuralProps takes the key alias entries out of data. For each alias
// the source key is checked before the target key; when both are present
// the target entry is dropped.
func (s *session) structuralProps(ts *schema.TypeSchema, data *record.Node) (map[string]any, error) {
	props := map[string]any{}

	for _, k := range ts.Keys {
		src := data.Delete(k.Source)

		var tgt *record.Node
		if k.Target != k.Source {
			tgt = data.Delete(k.Target)
		}

		v := src
		if v == nil {
			v = tgt
		} else if tgt != nil {
			s.warn("shadowed_key", fmt.Sprintf("%s: %q ignored, %q given", ts.Name, k.Target, k.Source), ts.Name, k.Target, src)
		}

		if v == nil {
			continue
		}

		if !v.IsScalar() {
			return nil, fmt.Errorf("line %d: %s structural key %q must be a scalar, got %s", v.Line, ts.Name, k.Source, v.Kind)
		}

		props[k.Target] = v.Value
	}

	return props, nil
}

// saltUnique appends a timestamp to the principal identifier so records
// imported without an existence check never collide on it.
func (s *session) saltUnique(ts *schema.TypeSchema, data *record.Node) {
	if ts.UniqueField == "" {
		return
	}

	v := data.Get(ts.UniqueField)
	if !v.IsScalar() || v.Value == nil {
		return
	}

	salted := record.Scalar(fmt.Sprintf("%v_%d", v.Value, s.now().UnixNano()))
	salted.Line, salted.Column = v.Line, v.Column

	data.Set(ts.UniqueField, salted)
}
