package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/primitive"
)

// refKey wraps encoded references so they decode back into storage.Reference
// instead of a plain map.
const refKey = "$ref"

// encodeValue returns the JSON text stored for v. Durations are written in
// their textual form so they survive the round trip through JSON numbers.
func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case time.Duration:
		v = x.String()
	case storage.Reference:
		v = map[string]any{refKey: x}
	case time.Time:
		v = x.UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// encodeFieldValue coerces v to the field kind before encoding, so condition
// values compare equal to stored ones.
func encodeFieldValue(fd *schema.FieldDef, v any) (string, error) {
	if _, isRef := v.(storage.Reference); !isRef {
		coerced, err := primitive.Coerce(v, fd.Kind, primitive.CategoryAll)
		if err != nil {
			return "", err
		}

		v = coerced
	}

	return encodeValue(v)
}

func decodeValue(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return normalize(v), nil
}

func decodeFieldValue(fd *schema.FieldDef, raw string) (any, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	if _, isRef := v.(storage.Reference); isRef {
		return v, nil
	}

	coerced, err := primitive.Coerce(v, fd.Kind, primitive.CategoryAll)
	if err != nil {
		return nil, fmt.Errorf("stored value %s: %w", raw, err)
	}

	return coerced, nil
}

// normalize turns json.Number into int or float64 and wrapped references
// into storage.Reference, recursively.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}

		f, _ := x.Float64()

		return f
	case map[string]any:
		if ref, ok := asReference(x); ok {
			return ref
		}

		for k, item := range x {
			x[k] = normalize(item)
		}

		return x
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}

		return x
	default:
		return v
	}
}

func asReference(m map[string]any) (storage.Reference, bool) {
	if len(m) != 1 {
		return storage.Reference{}, false
	}

	inner, ok := m[refKey].(map[string]any)
	if !ok {
		return storage.Reference{}, false
	}

	typ, _ := inner["type"].(string)
	id, _ := inner["id"].(string)

	if typ == "" || id == "" {
		return storage.Reference{}, false
	}

	return storage.Reference{Type: typ, ID: id}, true
}
