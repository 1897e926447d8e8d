package processor

import (
	"context"

	"content-loader/internal/record"
)

// ImportProcessor is implemented by plugins that run during import.
type ImportProcessor interface {
	// Preprocess runs before the level is built. It returns the node to build,
	// which may be the same node mutated in place or a replacement.
	Preprocess(ctx context.Context, node *record.Node, c Context) (*record.Node, error)

	// Postprocess runs after the level is built with the finalized node and the
	// built result (an object, a field value list or a field item).
	Postprocess(ctx context.Context, node *record.Node, result any, c Context) error
}

// Base is a no-op ImportProcessor for plugins to embed.
type Base struct{}

func (Base) Preprocess(_ context.Context, node *record.Node, _ Context) (*record.Node, error) {
	return node, nil
}

func (Base) Postprocess(context.Context, *record.Node, any, Context) error {
	return nil
}

// AppendItems appends items to the node a plugin received and returns the
// result. An empty mapping, left behind by a directive-only block, becomes a
// sequence; any other non-sequence node becomes the first item.
func AppendItems(node *record.Node, items ...*record.Node) *record.Node {
	switch {
	case node == nil || (node.IsMapping() && node.Len() == 0):
		return record.Sequence(items...)
	case node.IsSequence():
		node.Append(items...)
		return node
	default:
		return record.Sequence(append([]*record.Node{node}, items...)...)
	}
}
