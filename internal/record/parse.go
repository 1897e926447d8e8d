package record

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateKey is returned when a mapping declares the same key twice.
	ErrDuplicateKey = errors.New("duplicate mapping key")
	// ErrAliasCycle is returned when an alias refers to an anchor enclosing it.
	ErrAliasCycle = errors.New("anchor value contains itself")
	// ErrExcessiveAliasing is returned when alias expansion dominates the
	// document, as in "billion laughs" input.
	ErrExcessiveAliasing = errors.New("excessive aliasing")
)

const mergeTag = "!!merge"

// Parse decodes a YAML document into a record tree. Aliases are expanded and
// "<<" merge keys are applied; explicit keys win over merged ones. An empty
// document yields an empty sequence.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content YAML: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Sequence(), nil
	}

	c := converter{active: map[*yaml.Node]bool{}}

	return c.convert(&doc)
}

// converter turns yaml.v3 nodes into a record tree. It tracks the anchored
// nodes being converted to reject cycles and counts nodes produced under
// aliases to bound expansion.
type converter struct {
	active map[*yaml.Node]bool

	aliasDepth int
	nodes      int
	aliased    int
}

// allowedAliasRatio is the share of alias-produced nodes tolerated for a
// document of n nodes; it follows the limits of yaml.v3's own decoder.
func allowedAliasRatio(n int) float64 {
	switch {
	case n <= 400_000:
		return 0.99
	case n >= 4_000_000:
		return 0.10
	default:
		return 0.99 - 0.89*float64(n-400_000)/3_600_000
	}
}

func (c *converter) count(y *yaml.Node) error {
	c.nodes++
	if c.aliasDepth > 0 {
		c.aliased++
	}

	if c.aliased > 100 && c.nodes > 1000 && float64(c.aliased)/float64(c.nodes) > allowedAliasRatio(c.nodes) {
		return fmt.Errorf("line %d: %w", y.Line, ErrExcessiveAliasing)
	}

	return nil
}

func (c *converter) convert(y *yaml.Node) (*Node, error) {
	if err := c.count(y); err != nil {
		return nil, err
	}

	if y.Anchor != "" {
		c.active[y] = true
		defer delete(c.active, y)
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Sequence(), nil
		}

		return c.convert(y.Content[0])

	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("line %d: unknown anchor %q", y.Line, y.Value)
		}

		if c.active[y.Alias] {
			return nil, fmt.Errorf("line %d: %w: %q", y.Line, ErrAliasCycle, y.Value)
		}

		c.active[y.Alias] = true
		c.aliasDepth++
		n, err := c.convert(y.Alias)
		c.aliasDepth--
		delete(c.active, y.Alias)

		if err != nil {
			return nil, err
		}

		n.Line, n.Column = y.Line, y.Column

		return n, nil

	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}

		return at(Scalar(v), y), nil

	case yaml.SequenceNode:
		n := at(Sequence(), y)

		for _, item := range y.Content {
			child, err := c.convert(item)
			if err != nil {
				return nil, err
			}

			n.Append(child)
		}

		return n, nil

	case yaml.MappingNode:
		return c.convertMapping(y)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", y.Line, y.Kind)
	}
}

func (c *converter) convertMapping(y *yaml.Node) (*Node, error) {
	n := at(Mapping(), y)
	explicit := map[string]bool{}

	for i := 0; i+1 < len(y.Content); i += 2 {
		keyNode, valueNode := y.Content[i], y.Content[i+1]

		value, err := c.convert(valueNode)
		if err != nil {
			return nil, err
		}

		if isMergeKey(keyNode) {
			if err := merge(n, value, keyNode.Line); err != nil {
				return nil, err
			}

			continue
		}

		key := keyNode.Value
		if explicit[key] {
			return nil, fmt.Errorf("line %d: %w %q", keyNode.Line, ErrDuplicateKey, key)
		}

		explicit[key] = true
		n.Set(key, value)
	}

	return n, nil
}

// merge copies entries of a mapping (or a sequence of mappings) into n.
// Existing entries are kept, so earlier sources win.
func merge(n, source *Node, line int) error {
	var sources []*Node

	switch source.Kind {
	case KindMapping:
		sources = []*Node{source}
	case KindSequence:
		sources = source.Items
	}

	if len(sources) == 0 {
		return fmt.Errorf("line %d: merge key expects a mapping or a sequence of mappings", line)
	}

	for _, src := range sources {
		if !src.IsMapping() {
			return fmt.Errorf("line %d: merge key expects a mapping or a sequence of mappings", line)
		}

		for k, v := range src.All() {
			if n.Has(k) {
				continue
			}

			n.Set(k, v.Clone())
		}
	}

	return nil
}

func isMergeKey(y *yaml.Node) bool {
	return y.Kind == yaml.ScalarNode && (y.Tag == mergeTag || (y.Value == "<<" && y.Style == 0))
}

func at(n *Node, y *yaml.Node) *Node {
	n.Line, n.Column = y.Line, y.Column
	return n
}
