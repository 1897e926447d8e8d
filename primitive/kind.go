package primitive

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind is the scalar value kind a content field stores.
type Kind int

const (
	KindAny Kind = iota // zero value: the field keeps whatever the record supplies

	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindDuration

	// KindTotal is the number of kinds.
	KindTotal = int(iota)
)

var kindNames = map[Kind]string{
	KindAny:      "any",
	KindString:   "string",
	KindInt:      "int",
	KindFloat:    "float",
	KindBool:     "bool",
	KindTime:     "time",
	KindDuration: "duration",
}

var kindAliases = map[string]Kind{
	"":         KindAny,
	"any":      KindAny,
	"string":   KindString,
	"text":     KindString,
	"int":      KindInt,
	"integer":  KindInt,
	"float":    KindFloat,
	"number":   KindFloat,
	"decimal":  KindFloat,
	"bool":     KindBool,
	"boolean":  KindBool,
	"time":     KindTime,
	"datetime": KindTime,
	"date":     KindTime,
	"duration": KindDuration,
}

// IsValid reports whether k is one of the declared kinds.
func (k Kind) IsValid() bool {
	return k >= 0 && int(k) < KindTotal
}

// Name returns the lowercase name used in schema files.
func (k Kind) Name() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return k.String()
}

// ParseKind parses a schema kind name. Matching is case-insensitive and accepts
// a few common aliases ("integer", "boolean", "datetime").
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}

	return KindAny, fmt.Errorf("unknown value kind %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*k = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (any, error) {
	return k.Name(), nil
}

// FromValue classifies a decoded scalar value.
func FromValue(v any) Kind {
	if v == nil {
		return KindAny
	}

	return FromReflectType(reflect.TypeOf(v))
}

// FromReflectType classifies a Go type seen at run time.
func FromReflectType(rtype reflect.Type) Kind {
	if rtype == nil {
		return KindAny
	}

	switch rtype {
	case reflect.TypeOf(time.Time{}):
		return KindTime
	case reflect.TypeOf(time.Duration(0)):
		return KindDuration
	}

	switch rtype.Kind() {
	default:
		return KindAny
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	}
}

// FromGoType classifies a type-checked Go type, as seen by the struct analyzer.
func FromGoType(t types.Type) Kind {
	if t == nil {
		return KindAny
	}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" {
			switch obj.Name() {
			case "Time":
				return KindTime
			case "Duration":
				return KindDuration
			}
		}
	}

	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return KindAny
	}

	info := basic.Info()

	switch {
	case info&types.IsString != 0:
		return KindString
	case info&types.IsInteger != 0:
		return KindInt
	case info&types.IsFloat != 0:
		return KindFloat
	case info&types.IsBoolean != 0:
		return KindBool
	default:
		return KindAny
	}
}
