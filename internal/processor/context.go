package processor

import (
	"maps"

	"github.com/go-viper/mapstructure/v2"

	"content-loader/primitive"
)

// Ambient keys set by the importer.
const (
	// KeyEntity holds the storage.Object being populated.
	KeyEntity = "entity"
	// KeyEntityType holds the target type name.
	KeyEntityType = "entity_type"
	// KeyField holds the *schema.FieldDef being populated.
	KeyField = "field"
)

// Context is the key-value data visible to a plugin: the ambient import
// context merged with the directive parameters.
type Context map[string]any

// With returns a copy of c overlaid with params. Params win on conflict.
func (c Context) With(params map[string]any) Context {
	out := make(Context, len(c)+len(params))
	maps.Copy(out, c)
	maps.Copy(out, params)

	return out
}

// Value returns the raw value stored under key.
func (c Context) Value(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// Has reports whether key is set to a non-nil value.
func (c Context) Has(key string) bool {
	return c[key] != nil
}

// String returns the value under key as a string, or "" when it is absent
// or not a scalar.
func (c Context) String(key string) string {
	v, err := primitive.Coerce(c[key], primitive.KindString, primitive.CategoryDefault)
	if err != nil || v == nil {
		return ""
	}

	return v.(string)
}

// Int returns the value under key as an int, or def when it is absent or
// not convertible.
func (c Context) Int(key string, def int) int {
	v, err := primitive.Coerce(c[key], primitive.KindInt, primitive.CategoryDefault)
	if err != nil || v == nil {
		return def
	}

	return v.(int)
}

// Bool returns the value under key as a bool, or def when it is absent or
// not convertible.
func (c Context) Bool(key string, def bool) bool {
	v, err := primitive.Coerce(c[key], primitive.KindBool, primitive.CategoryDefault|primitive.CategoryNumericBool)
	if err != nil || v == nil {
		return def
	}

	return v.(bool)
}

// Decode fills the struct pointed to by target from the context. Fields are
// matched by their `param` tag, and scalar values are converted weakly
// ("3" decodes into an int).
func (c Context) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "param",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}

	return dec.Decode(map[string]any(c))
}
