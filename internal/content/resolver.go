package content

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"content-loader/internal/common"
	"content-loader/internal/record"
	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/primitive"
)

// find looks up an existing object of type ts matching the record. It
// returns nil when nothing matches, the type is not reusable or the record
// offers no condition.
func (s *session) find(ctx context.Context, ts *schema.TypeSchema, props map[string]any, data *record.Node) (storage.Object, error) {
	if !ts.IsReusable() {
		return nil, nil
	}

	conds := matchConditions(ts, props, data)
	if len(conds) == 0 {
		return nil, nil
	}

	found, err := s.repo.Query(ctx, ts.Name, conds)
	if err != nil {
		return nil, fmt.Errorf("existence check for %s: %w", ts.Name, err)
	}

	switch {
	case common.IsEmpty(found):
		return nil, nil
	case common.IsSingle(found):
		return found[0], nil
	}

	switch s.matchPolicy {
	case MatchUnique:
		return nil, &AmbiguousMatchError{Type: ts.Name, Count: len(found)}
	case MatchLatest:
		latest, _ := common.Last(found)
		return latest, nil
	default:
		s.warn("ambiguous_match",
			fmt.Sprintf("%s: %d objects match %v, reusing the oldest", ts.Name, len(found), conds), ts.Name, "", data)

		return found[0], nil
	}
}

// matchConditions returns the structural properties and the scalar field
// values of the record as equality conditions. Sequence and mapping values
// are not compared, nor are values that do not convert to the field kind.
func matchConditions(ts *schema.TypeSchema, props map[string]any, data *record.Node) []storage.Condition {
	conds := make([]storage.Condition, 0, len(props)+data.Len())

	for _, k := range slices.Sorted(maps.Keys(props)) {
		conds = append(conds, storage.Condition{Field: k, Value: props[k]})
	}

	for field, value := range data.All() {
		if !value.IsScalar() || value.Value == nil {
			continue
		}

		fd, ok := ts.Field(field)
		if !ok {
			continue
		}

		v, err := primitive.Coerce(value.Value, fd.Kind, primitive.CategoryDefault)
		if err != nil {
			continue
		}

		conds = append(conds, storage.Condition{Field: field, Value: v})
	}

	return conds
}
