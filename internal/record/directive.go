package record

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"content-loader/internal/common"
)

// Reserved directive keys.
const (
	PreprocessKey  = "#preprocess"
	PostprocessKey = "#postprocess"
	// ProcessKey is the older inline dialect: {callable: <plugin>, args: [...]}.
	// It runs as a preprocess directive.
	ProcessKey = "#process"
)

// ErrMalformedDirective is returned for directive blocks that are not mappings
// (or sequences of mappings) or that do not name a plugin.
var ErrMalformedDirective = errors.New("malformed processor directive")

// Directive is one plugin invocation declared in a record.
type Directive struct {
	Plugin string
	Params map[string]any
	Line   int
}

// IsDirectiveKey reports whether key is reserved for processing instructions.
func IsDirectiveKey(key string) bool {
	return strings.HasPrefix(key, common.DirectivePrefix)
}

// HasDirectives reports whether the mapping carries any directive key.
func HasDirectives(n *Node) bool {
	for _, k := range n.Keys() {
		if IsDirectiveKey(k) {
			return true
		}
	}

	return false
}

// OnlyDirectives reports whether n is a non-empty mapping whose keys are all
// directive keys.
func OnlyDirectives(n *Node) bool {
	if !n.IsMapping() || n.Len() == 0 {
		return false
	}

	for _, k := range n.Keys() {
		if !IsDirectiveKey(k) {
			return false
		}
	}

	return true
}

// TakeDirectives removes key from the mapping n and parses its value into
// directives in declaration order. A missing key yields no directives.
func TakeDirectives(n *Node, key string) ([]Directive, error) {
	block := n.Delete(key)
	if block == nil {
		return nil, nil
	}

	var entries []*Node

	switch block.Kind {
	case KindMapping:
		entries = []*Node{block}
	case KindSequence:
		entries = block.Items
	default:
		return nil, fmt.Errorf("line %d: %w: %s must be a mapping or a sequence of mappings",
			block.Line, ErrMalformedDirective, key)
	}

	directives := make([]Directive, 0, len(entries))

	for _, entry := range entries {
		d, err := parseDirective(entry, key == ProcessKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		directives = append(directives, d)
	}

	return directives, nil
}

func parseDirective(entry *Node, legacy bool) (Directive, error) {
	if !entry.IsMapping() {
		return Directive{}, fmt.Errorf("line %d: %w: expected a mapping, got %s",
			entry.Line, ErrMalformedDirective, entry.Kind)
	}

	d := Directive{Params: map[string]any{}, Line: entry.Line}

	idKeys := []string{"plugin", "#plugin"}
	if legacy {
		idKeys = append(idKeys, "callable")
	}

	for k, v := range entry.All() {
		if slices.Contains(idKeys, k) && d.Plugin == "" {
			id, ok := v.Value.(string)
			if !v.IsScalar() || !ok {
				return Directive{}, fmt.Errorf("line %d: %w: plugin id must be a string",
					v.Line, ErrMalformedDirective)
			}

			d.Plugin = id

			continue
		}

		d.Params[k] = v.Interface()
	}

	if d.Plugin == "" {
		return Directive{}, fmt.Errorf("line %d: %w: missing plugin identifier", entry.Line, ErrMalformedDirective)
	}

	return d, nil
}
