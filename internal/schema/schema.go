package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"content-loader/primitive"
)

// File represents the root of a YAML schema definition file.
type File struct {
	// Version of the schema format (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Types is the list of content types, in declaration order.
	Types []TypeSchema `yaml:"types"`
}

// TypeSchema describes one target content type.
type TypeSchema struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label,omitempty"`

	// Keys are the structural key aliases, checked in declaration order.
	Keys KeyAliases `yaml:"keys,omitempty"`

	Fields []FieldDef `yaml:"fields,omitempty"`

	// Reusable types may be matched by existence checks. Nil means true.
	Reusable *bool `yaml:"reusable,omitempty"`

	// UniqueField names the principal identifier that must be globally unique.
	UniqueField string `yaml:"unique,omitempty"`
}

// IsReusable reports whether existing objects of the type may be matched.
func (t *TypeSchema) IsReusable() bool {
	return t.Reusable == nil || *t.Reusable
}

// Field returns the field definition named name.
func (t *TypeSchema) Field(name string) (*FieldDef, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}

	return nil, false
}

// FieldNames returns the declared field names in declaration order.
func (t *TypeSchema) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}

	return names
}

// IsStructural reports whether key is the source or target of a key alias.
func (t *TypeSchema) IsStructural(key string) bool {
	for _, k := range t.Keys {
		if k.Source == key || k.Target == key {
			return true
		}
	}

	return false
}

// DisplayName returns the label, falling back to the name.
func (t *TypeSchema) DisplayName() string {
	if t.Label != "" {
		return t.Label
	}

	return t.Name
}

// KeyAlias maps a structural input key onto the property it sets.
// Records may use either the source or the target key.
type KeyAlias struct {
	Source string
	Target string
}

// KeyAliases is an ordered list of key aliases. In YAML it is written as a
// mapping from source key to target property; order is preserved.
type KeyAliases []KeyAlias

// UnmarshalYAML implements custom YAML unmarshaling for KeyAliases.
// Accepts a mapping (source: target) or a list of keys aliased to themselves.
func (k *KeyAliases) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(KeyAliases, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			var source, target string

			if err := node.Content[i].Decode(&source); err != nil {
				return err
			}

			if err := node.Content[i+1].Decode(&target); err != nil {
				return err
			}

			if target == "" {
				target = source
			}

			out = append(out, KeyAlias{Source: source, Target: target})
		}

		*k = out

		return nil

	case yaml.SequenceNode:
		var keys []string
		if err := node.Decode(&keys); err != nil {
			return err
		}

		out := make(KeyAliases, 0, len(keys))
		for _, key := range keys {
			out = append(out, KeyAlias{Source: key, Target: key})
		}

		*k = out

		return nil

	default:
		return fmt.Errorf("line %d: keys must be a mapping or a list, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for KeyAliases.
func (k KeyAliases) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, alias := range k {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: alias.Source},
			&yaml.Node{Kind: yaml.ScalarNode, Value: alias.Target},
		)
	}

	return node, nil
}

// FieldDef describes one field of a type.
type FieldDef struct {
	Name        string         `yaml:"name"`
	Cardinality Cardinality    `yaml:"cardinality"`
	Reference   bool           `yaml:"reference,omitempty"`
	Target      string         `yaml:"target,omitempty"` // referenced type, for reference fields
	Kind        primitive.Kind `yaml:"kind,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler; an omitted cardinality is 1.
func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	type plain FieldDef

	raw := plain{Cardinality: 1}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*f = FieldDef(raw)

	return nil
}

// Cardinality is the number of values a field may hold.
type Cardinality int

// Unlimited marks fields without an upper bound.
const Unlimited Cardinality = -1

// IsUnlimited reports whether the field has no upper bound.
func (c Cardinality) IsUnlimited() bool {
	return c == Unlimited
}

// IsMultiple reports whether the field holds a list of values.
func (c Cardinality) IsMultiple() bool {
	return c == Unlimited || c > 1
}

// Allows reports whether n values fit into the field.
func (c Cardinality) Allows(n int) bool {
	return c == Unlimited || n <= int(c)
}

// String returns the YAML representation.
func (c Cardinality) String() string {
	if c == Unlimited {
		return "unlimited"
	}

	return strconv.Itoa(int(c))
}

// ParseCardinality parses an integer, "unlimited" or "*".
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unlimited", "*", "-1":
		return Unlimited, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cardinality %q", s)
	}

	return Cardinality(n), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cardinality) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cardinality must be a scalar", node.Line)
	}

	parsed, err := ParseCardinality(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*c = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Cardinality) MarshalYAML() (any, error) {
	if c == Unlimited {
		return "unlimited", nil
	}

	return int(c), nil
}
