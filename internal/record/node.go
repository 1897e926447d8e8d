package record

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
)

// Kind is the shape of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one level of a record tree.
type Node struct {
	Kind  Kind
	Value any     // scalar value
	Items []*Node // sequence items

	keys   []string
	fields map[string]*Node

	// Source position, zero for nodes built in code.
	Line   int
	Column int
}

// Scalar returns a scalar node holding v.
func Scalar(v any) *Node {
	return &Node{Kind: KindScalar, Value: v}
}

// Sequence returns a sequence node with the given items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// Mapping returns an empty mapping node.
func Mapping() *Node {
	return &Node{Kind: KindMapping, fields: map[string]*Node{}}
}

// FromValue converts plain Go values into a tree. Maps become mappings with
// sorted keys, slices become sequences and *Node values are used as is.
func FromValue(v any) *Node {
	switch x := v.(type) {
	case *Node:
		return x
	case map[string]any:
		n := Mapping()

		keys := slices.Collect(maps.Keys(x))
		sort.Strings(keys)

		for _, k := range keys {
			n.Set(k, FromValue(x[k]))
		}

		return n
	case []any:
		n := Sequence()
		for _, item := range x {
			n.Append(FromValue(item))
		}

		return n
	case []string:
		n := Sequence()
		for _, item := range x {
			n.Append(Scalar(item))
		}

		return n
	default:
		return Scalar(v)
	}
}

func (n *Node) IsScalar() bool   { return n != nil && n.Kind == KindScalar }
func (n *Node) IsSequence() bool { return n != nil && n.Kind == KindSequence }
func (n *Node) IsMapping() bool  { return n != nil && n.Kind == KindMapping }

// Len returns the number of items or keys; scalars have length 0.
func (n *Node) Len() int {
	switch {
	case n.IsSequence():
		return len(n.Items)
	case n.IsMapping():
		return len(n.keys)
	default:
		return 0
	}
}

// Get returns the value for key, or nil when the node is not a mapping or the
// key is absent.
func (n *Node) Get(key string) *Node {
	if !n.IsMapping() {
		return nil
	}

	return n.fields[key]
}

// Has reports whether the mapping has key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Set stores value under key. An existing key keeps its position.
func (n *Node) Set(key string, value *Node) {
	if n.fields == nil {
		n.fields = map[string]*Node{}
	}

	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}

	n.fields[key] = value
}

// Delete removes key and returns its value, or nil if absent.
func (n *Node) Delete(key string) *Node {
	if !n.IsMapping() {
		return nil
	}

	value, ok := n.fields[key]
	if !ok {
		return nil
	}

	delete(n.fields, key)
	n.keys = slices.DeleteFunc(n.keys, func(k string) bool { return k == key })

	return value
}

// Keys returns the mapping keys in insertion order.
func (n *Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}

	return slices.Clone(n.keys)
}

// All iterates over mapping entries in insertion order. Entries deleted during
// iteration are skipped.
func (n *Node) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, k := range n.Keys() {
			v, ok := n.fields[k]
			if !ok {
				continue
			}

			if !yield(k, v) {
				return
			}
		}
	}
}

// Append adds items to a sequence.
func (n *Node) Append(items ...*Node) {
	n.Items = append(n.Items, items...)
}

// Clone returns a deep copy of the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := &Node{Kind: n.Kind, Value: n.Value, Line: n.Line, Column: n.Column}

	switch n.Kind {
	case KindSequence:
		c.Items = make([]*Node, 0, len(n.Items))
		for _, item := range n.Items {
			c.Items = append(c.Items, item.Clone())
		}
	case KindMapping:
		c.fields = make(map[string]*Node, len(n.keys))
		c.keys = slices.Clone(n.keys)

		for k, v := range n.fields {
			c.fields[k] = v.Clone()
		}
	}

	return c
}

// Interface converts the tree to plain Go values: map[string]any, []any and
// the scalar values themselves.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindSequence:
		out := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			out = append(out, item.Interface())
		}

		return out
	case KindMapping:
		out := make(map[string]any, len(n.keys))
		for k, v := range n.All() {
			out[k] = v.Interface()
		}

		return out
	default:
		return n.Value
	}
}

// String returns a short description for diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	switch n.Kind {
	case KindScalar:
		return fmt.Sprintf("%v", n.Value)
	case KindSequence:
		return fmt.Sprintf("sequence(%d)", len(n.Items))
	default:
		return fmt.Sprintf("mapping%v", n.keys)
	}
}
