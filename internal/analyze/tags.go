package analyze

import (
	"fmt"
	"strings"

	"content-loader/internal/match"
	"content-loader/internal/schema"
	"content-loader/primitive"
)

// TagKey is the struct tag key read by the analyzer.
const TagKey = "content"

// ContentTag is a parsed `content` struct tag.
type ContentTag struct {
	Name        string
	Key         string // structural source key; the field is a key alias when set
	Cardinality *schema.Cardinality
	Kind        *primitive.Kind
	Unique      bool
	Component   bool
	Label       string
	Skip        bool
}

// ParseContentTag parses the value of a `content` tag.
func ParseContentTag(tag string) (ContentTag, error) {
	if tag == "-" {
		return ContentTag{Skip: true}, nil
	}

	parts := strings.Split(tag, ",")
	ct := ContentTag{Name: strings.TrimSpace(parts[0])}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		key, value, hasValue := strings.Cut(opt, "=")

		switch {
		case opt == "":
			continue
		case key == "unique" && !hasValue:
			ct.Unique = true
		case key == "component" && !hasValue:
			ct.Component = true
		case key == "key" && hasValue:
			ct.Key = value
		case key == "label" && hasValue:
			ct.Label = value
		case key == "card" && hasValue:
			c, err := schema.ParseCardinality(value)
			if err != nil {
				return ContentTag{}, err
			}

			ct.Cardinality = &c
		case key == "kind" && hasValue:
			k, err := primitive.ParseKind(value)
			if err != nil {
				return ContentTag{}, err
			}

			ct.Kind = &k
		default:
			return ContentTag{}, fmt.Errorf("unknown tag option %q", opt)
		}
	}

	return ct, nil
}

// ContentTag returns the parsed content tag of the field. ok is false when the field
// has no content tag.
func (f *FieldInfo) ContentTag() (ct ContentTag, ok bool, err error) {
	raw, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return ContentTag{}, false, nil
	}

	ct, err = ParseContentTag(raw)

	return ct, true, err
}

// SnakeName converts a Go identifier to the snake_case name used when a tag
// leaves the name empty.
func SnakeName(ident string) string {
	return strings.Join(match.TokenizeIdent(ident), "_")
}
