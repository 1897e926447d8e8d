package processor

import (
	"errors"
	"fmt"

	"content-loader/internal/record"
)

//go:generate go tool stringer -type=State -trimprefix=State -output=state_string.go

// State is the position of a Frame in the import state machine.
type State int

const (
	StateRaw State = iota
	StatePreprocessed
	StateBuilt
	StatePostprocessed
)

// Phase names a pipeline hook.
type Phase string

const (
	PhasePreprocess  Phase = "preprocess"
	PhasePostprocess Phase = "postprocess"
)

// ErrFrameState is returned when a frame is advanced out of order.
var ErrFrameState = errors.New("invalid frame transition")

// Frame is one recursion level of an import: an entity, a field or a field
// item. It moves RAW -> PREPROCESSED -> BUILT -> POSTPROCESSED.
type Frame struct {
	// Node is the preprocessed node to build.
	Node *record.Node
	// Context is the ambient import context of the level.
	Context Context

	post  []record.Directive
	state State
}

// NewFrame returns a RAW frame for node.
func NewFrame(node *record.Node, c Context) *Frame {
	return &Frame{Node: node, Context: c}
}

func (f *Frame) State() State { return f.state }

// PostDirectives returns the postprocess directives taken from the node.
func (f *Frame) PostDirectives() []record.Directive { return f.post }

// MarkBuilt records that the node has been built.
func (f *Frame) MarkBuilt() error {
	return f.advance(StatePreprocessed, StateBuilt)
}

func (f *Frame) advance(from, to State) error {
	if f.state != from {
		return fmt.Errorf("%w: %s -> %s", ErrFrameState, f.state, to)
	}

	f.state = to

	return nil
}
