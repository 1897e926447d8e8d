package content

import (
	"context"
	"errors"
	"fmt"

	"content-loader/internal/common"
	"content-loader/internal/match"
	"content-loader/internal/processor"
	"content-loader/internal/record"
	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/primitive"
)

// populate imports the data of one field into obj. updating clears the
// previous content of the field first, so a rejected value leaves it unset.
func (s *session) populate(ctx context.Context, obj storage.Object, ts *schema.TypeSchema, field string, value *record.Node, updating bool) error {
	fd, ok := ts.Field(field)
	if !ok {
		return &UndefinedFieldError{
			Type:        ts.Name,
			Field:       field,
			Suggestions: match.Suggest(field, ts.FieldNames(), match.DefaultMaxSuggestions),
		}
	}

	if updating {
		if err := s.clearField(ctx, obj, fd); err != nil {
			return err
		}
	}

	ic := processor.Context{processor.KeyEntity: obj, processor.KeyField: fd}

	var frame *processor.Frame

	if s.isDirectiveBlock(value) {
		f, err := s.pipeline.Preprocess(ctx, value, ic)
		if err != nil {
			return err
		}

		frame, value = f, f.Node
	}

	items := s.fieldItems(value)

	if err := checkCardinality(ts, fd, len(items), value); err != nil {
		return err
	}

	if fd.Cardinality == 1 && common.IsMultiple(items) {
		s.warn("cardinality_overflow",
			fmt.Sprintf("%s.%s holds one value, %d given; keeping the first", ts.Name, fd.Name, len(items)),
			ts.Name, fd.Name, value)

		items = items[:1]
	}

	var values []any

	for _, item := range items {
		resolved, err := s.importItem(ctx, ts, fd, item, ic)
		if err != nil {
			if !isFieldLevel(err) {
				return err
			}

			s.report(err, ts.Name, field, item)

			continue
		}

		values = append(values, resolved...)
	}

	if err := s.assign(obj, ts, fd, values); err != nil {
		return err
	}

	if frame == nil {
		return nil
	}

	if err := frame.MarkBuilt(); err != nil {
		return err
	}

	return s.pipeline.Postprocess(ctx, frame, obj.Field(field))
}

// isDirectiveBlock reports whether n is a mapping carrying directives for
// its own level rather than a nested record.
func (s *session) isDirectiveBlock(n *record.Node) bool {
	return n.IsMapping() && !n.Has(s.typeKey) && record.HasDirectives(n)
}

// fieldItems normalizes field data into its items. A scalar is one item,
// null and the empty mapping left by a directive block are none.
func (s *session) fieldItems(n *record.Node) []*record.Node {
	switch {
	case n == nil:
		return nil
	case n.IsSequence():
		return n.Items
	case n.IsMapping() && n.Len() == 0:
		return nil
	case n.IsScalar() && n.Value == nil:
		return nil
	default:
		return []*record.Node{n}
	}
}

func checkCardinality(ts *schema.TypeSchema, fd *schema.FieldDef, n int, value *record.Node) error {
	card := fd.Cardinality

	switch {
	case card == 0:
		return &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: value.Interface(),
			Reason: "field cannot hold any value"}
	case card > 1 && n > int(card):
		return &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: value.Interface(),
			Reason: fmt.Sprintf("%d values given, field holds at most %d", n, card)}
	}

	return nil
}

// clearField removes the current values of the field. Referenced objects
// of non-reusable types are owned by obj and deleted with it.
func (s *session) clearField(ctx context.Context, obj storage.Object, fd *schema.FieldDef) error {
	for _, v := range obj.Field(fd.Name) {
		ref, ok := v.(storage.Reference)
		if !ok {
			continue
		}

		ts, ok := s.repo.Schema(ref.Type)
		if !ok || ts.IsReusable() {
			continue
		}

		owned, err := s.repo.Load(ctx, ref.Type, ref.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}

		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, owned); err != nil {
			return fmt.Errorf("delete owned %s: %w", ref, err)
		}
	}

	obj.ClearField(fd.Name)

	return nil
}

// importItem resolves one field item into zero or more values. Directives
// on the item run first and may expand it into several items.
func (s *session) importItem(ctx context.Context, ts *schema.TypeSchema, fd *schema.FieldDef, item *record.Node, ic processor.Context) ([]any, error) {
	var frame *processor.Frame

	if s.isDirectiveBlock(item) {
		f, err := s.pipeline.Preprocess(ctx, item, ic)
		if err != nil {
			return nil, err
		}

		frame, item = f, f.Node
	}

	var values []any

	for _, n := range s.fieldItems(item) {
		v, err := s.resolveValue(ctx, ts, fd, n)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	if frame == nil {
		return values, nil
	}

	if err := frame.MarkBuilt(); err != nil {
		return nil, err
	}

	if err := s.pipeline.Postprocess(ctx, frame, values); err != nil {
		return nil, err
	}

	return values, nil
}

// resolveValue turns one item into the stored value: nested records become
// references, scalars are converted to the field kind and anything else is
// stored as plain data.
func (s *session) resolveValue(ctx context.Context, ts *schema.TypeSchema, fd *schema.FieldDef, n *record.Node) (any, error) {
	switch {
	case n.IsMapping() && n.Has(s.typeKey):
		if name, ok := s.typeName(n); ok && fd.Target != "" && name != fd.Target {
			return nil, &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: name,
				Reason: fmt.Sprintf("field references %s, got %s", fd.Target, name)}
		}

		nested, err := s.importRecord(ctx, n)
		if err != nil {
			return nil, err
		}

		return storage.RefTo(nested), nil
	case n.IsScalar():
		if ref, ok := n.Value.(storage.Reference); ok {
			return ref, nil
		}

		v, err := primitive.Coerce(n.Value, fd.Kind, primitive.CategoryDefault)
		if err != nil {
			return nil, &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: n.Value,
				Reason: "cannot convert to " + fd.Kind.Name(), Err: err}
		}

		return v, nil
	default:
		return n.Interface(), nil
	}
}

// assign stores the resolved values. A single-value field takes the first
// value and warns about the rest.
func (s *session) assign(obj storage.Object, ts *schema.TypeSchema, fd *schema.FieldDef, values []any) error {
	if len(values) == 0 {
		return nil
	}

	if fd.Cardinality == 1 {
		if len(values) > 1 {
			s.warn("cardinality_overflow",
				fmt.Sprintf("%s.%s holds one value, %d given; keeping the first", ts.Name, fd.Name, len(values)),
				ts.Name, fd.Name, nil)
		}

		return obj.SetField(fd.Name, values[0])
	}

	if !fd.Cardinality.IsUnlimited() && len(values) > int(fd.Cardinality) {
		return &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: values,
			Reason: fmt.Sprintf("%d values resolved, field holds at most %d", len(values), fd.Cardinality)}
	}

	for _, v := range values {
		if err := obj.AppendField(fd.Name, v); err != nil {
			return &InvalidFieldError{Type: ts.Name, Field: fd.Name, Value: v, Reason: "append failed", Err: err}
		}
	}

	return nil
}

// suggestions returns the suggestions carried by err, if any.
func suggestions(err error) []string {
	var undefined *UndefinedFieldError
	if errors.As(err, &undefined) {
		return undefined.Suggestions
	}

	return nil
}
