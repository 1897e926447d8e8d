package schema

import (
	"fmt"

	"content-loader/internal/diagnostic"
	"content-loader/internal/match"
)

// Validate checks a schema file for structural problems: duplicate types and
// fields, unknown reference targets, key aliases colliding with fields,
// undeclared unique fields and invalid cardinalities.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("schema_is_nil", "schema file is nil", "", "")
		return res
	}

	if len(f.Types) == 0 {
		res.AddWarning("no_types", "schema declares no types", "", "")
	}

	known := map[string]struct{}{}
	names := make([]string, 0, len(f.Types))

	for i := range f.Types {
		name := f.Types[i].Name
		if name == "" {
			res.AddError("type_name_empty", fmt.Sprintf("type #%d has no name", i+1), "", "")
			continue
		}

		if _, ok := known[name]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("duplicate type %q", name), name, "")
			continue
		}

		known[name] = struct{}{}
		names = append(names, name)
	}

	for i := range f.Types {
		validateType(res, &f.Types[i], known, names)
	}

	return res
}

func validateType(res *diagnostic.Diagnostics, t *TypeSchema, known map[string]struct{}, typeNames []string) {
	seenFields := map[string]struct{}{}

	for i := range t.Fields {
		fd := &t.Fields[i]
		if fd.Name == "" {
			res.AddError("field_name_empty", fmt.Sprintf("field #%d has no name", i+1), t.Name, "")
			continue
		}

		if _, ok := seenFields[fd.Name]; ok {
			res.AddError("duplicate_field", fmt.Sprintf("duplicate field %q", fd.Name), t.Name, fd.Name)
			continue
		}

		seenFields[fd.Name] = struct{}{}

		validateField(res, t, fd, known, typeNames)
	}

	seenKeys := map[string]struct{}{}

	for _, alias := range t.Keys {
		if alias.Source == "" || alias.Target == "" {
			res.AddError("key_alias_empty", "key alias needs a source and a target", t.Name, alias.Source)
			continue
		}

		for _, key := range []string{alias.Source, alias.Target} {
			if _, ok := seenFields[key]; ok {
				res.AddError("key_alias_collision",
					fmt.Sprintf("structural key %q collides with a field", key), t.Name, key)
			}
		}

		if _, ok := seenKeys[alias.Source]; ok {
			res.AddWarning("duplicate_key_alias",
				fmt.Sprintf("key alias %q declared more than once; first one wins", alias.Source), t.Name, alias.Source)
		}

		seenKeys[alias.Source] = struct{}{}
	}

	if t.UniqueField != "" {
		fd, ok := t.Field(t.UniqueField)

		switch {
		case !ok:
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        "unique_field_not_found",
				Message:     fmt.Sprintf("unique field %q is not declared", t.UniqueField),
				TypeName:    t.Name,
				FieldPath:   t.UniqueField,
				Suggestions: match.Suggest(t.UniqueField, t.FieldNames(), match.DefaultMaxSuggestions),
			})
		case fd.Cardinality != 1 || fd.Reference:
			res.AddError("unique_field_not_scalar",
				fmt.Sprintf("unique field %q must be a single scalar value", t.UniqueField), t.Name, t.UniqueField)
		}
	}
}

func validateField(res *diagnostic.Diagnostics, t *TypeSchema, fd *FieldDef, known map[string]struct{}, typeNames []string) {
	if fd.Cardinality < Unlimited {
		res.AddError("invalid_cardinality",
			fmt.Sprintf("cardinality %d is invalid", int(fd.Cardinality)), t.Name, fd.Name)
	}

	if fd.Cardinality == 0 {
		res.AddWarning("zero_cardinality", "field cannot hold any value", t.Name, fd.Name)
	}

	if !fd.Kind.IsValid() {
		res.AddError("invalid_kind", fmt.Sprintf("kind %s is invalid", fd.Kind), t.Name, fd.Name)
	}

	if !fd.Reference {
		if fd.Target != "" {
			res.AddWarning("target_without_reference",
				fmt.Sprintf("target %q is ignored on a non-reference field", fd.Target), t.Name, fd.Name)
		}

		return
	}

	if fd.Target == "" {
		return
	}

	if _, ok := known[fd.Target]; !ok {
		res.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.SeverityError,
			Code:        "reference_target_not_found",
			Message:     fmt.Sprintf("reference target type %q not found", fd.Target),
			TypeName:    t.Name,
			FieldPath:   fd.Name,
			Value:       fd.Target,
			Suggestions: match.Suggest(fd.Target, typeNames, match.DefaultMaxSuggestions),
		})
	}
}
