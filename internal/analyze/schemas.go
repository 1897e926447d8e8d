package analyze

import (
	"errors"
	"fmt"
	"slices"

	"content-loader/internal/schema"
	"content-loader/primitive"
)

// LoadSchemas loads packages and returns the schemas of their content structs.
func (a *Analyzer) LoadSchemas(patterns ...string) ([]schema.TypeSchema, error) {
	graph, err := a.LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	return SchemasFromGraph(graph)
}

// SchemasFromGraph converts every struct carrying content tags into a
// TypeSchema. Schemas are ordered by package path, then by Go type name.
func SchemasFromGraph(graph *TypeGraph) ([]schema.TypeSchema, error) {
	structs := contentStructs(graph)

	names := make(map[TypeID]string, len(structs))
	for _, info := range structs {
		name, err := typeName(info)
		if err != nil {
			return nil, err
		}

		names[info.ID] = name
	}

	var (
		out  []schema.TypeSchema
		errs []error
	)

	for _, info := range structs {
		ts, err := buildSchema(info, names)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		out = append(out, ts)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return out, nil
}

// contentStructs returns the named structs with at least one content tag.
func contentStructs(graph *TypeGraph) []*TypeInfo {
	var out []*TypeInfo

	paths := make([]string, 0, len(graph.Packages))
	for path := range graph.Packages {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	for _, path := range paths {
		for _, id := range graph.Packages[path].Types {
			info := graph.GetType(id)
			if info == nil || info.Kind != TypeKindStruct {
				continue
			}

			if slices.ContainsFunc(info.Fields, func(f FieldInfo) bool { return f.HasTag(TagKey) }) {
				out = append(out, info)
			}
		}
	}

	return out
}

// typeName returns the content type name of a struct: the blank field's tag
// name, or the snake_case Go name.
func typeName(info *TypeInfo) (string, error) {
	for i := range info.Fields {
		f := &info.Fields[i]
		if !f.IsBlank() {
			continue
		}

		ct, ok, err := f.ContentTag()
		if err != nil {
			return "", fmt.Errorf("%s: %w", info.ID, err)
		}

		if ok && ct.Name != "" {
			return ct.Name, nil
		}
	}

	return SnakeName(info.ID.Name), nil
}

func buildSchema(info *TypeInfo, names map[TypeID]string) (schema.TypeSchema, error) {
	ts := schema.TypeSchema{Name: names[info.ID]}

	for i := range info.Fields {
		f := &info.Fields[i]

		ct, ok, err := f.ContentTag()
		if err != nil {
			return ts, fmt.Errorf("%s: %s.%s: %w", f.Pos, info.ID.Name, f.Name, err)
		}

		if !ok || ct.Skip {
			continue
		}

		if f.IsBlank() {
			ts.Label = ct.Label
			if ct.Component {
				reusable := false
				ts.Reusable = &reusable
			}

			continue
		}

		name := ct.Name
		if name == "" {
			name = SnakeName(f.Name)
		}

		if ct.Key != "" {
			ts.Keys = append(ts.Keys, schema.KeyAlias{Source: ct.Key, Target: name})
			continue
		}

		fd, err := fieldDef(name, f.Type, names)
		if err != nil {
			return ts, fmt.Errorf("%s: %s.%s: %w", f.Pos, info.ID.Name, f.Name, err)
		}

		if ct.Cardinality != nil {
			fd.Cardinality = *ct.Cardinality
		}

		if ct.Kind != nil {
			fd.Kind = *ct.Kind
		}

		if ct.Unique {
			ts.UniqueField = name
		}

		ts.Fields = append(ts.Fields, fd)
	}

	return ts, nil
}

// fieldDef derives cardinality, reference target and kind from a Go type.
func fieldDef(name string, t *TypeInfo, names map[TypeID]string) (schema.FieldDef, error) {
	fd := schema.FieldDef{Name: name, Cardinality: 1}

	elem := t.Deref()
	if elem == nil {
		return fd, errors.New("missing type information")
	}

	switch elem.Kind {
	case TypeKindSlice:
		fd.Cardinality = schema.Unlimited
		elem = elem.Elem.Deref()
	case TypeKindArray:
		fd.Cardinality = schema.Cardinality(elem.Len)
		elem = elem.Elem.Deref()
	}

	if elem.Kind == TypeKindStruct && elem.IsNamed() {
		target, ok := names[elem.ID]
		if !ok {
			return fd, fmt.Errorf("referenced struct %s has no content tags", elem.ID)
		}

		fd.Reference = true
		fd.Target = target

		return fd, nil
	}

	switch elem.Kind {
	case TypeKindScalar, TypeKindOpaque:
		fd.Kind = primitive.FromGoType(elem.GoType)
	default:
		return fd, fmt.Errorf("unsupported field type %s", elem.Kind)
	}

	return fd, nil
}
