package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"content-loader/internal/record"
)

// Policy decides what happens when a directive lacks a required context
// parameter.
type Policy int

const (
	// PolicyAbort fails the import with a MissingContextError.
	PolicyAbort Policy = iota
	// PolicySkip logs the error and skips the directive.
	PolicySkip
)

func (p Policy) String() string {
	if p == PolicySkip {
		return "skip"
	}

	return "abort"
}

// ParsePolicy parses "abort" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("unknown directive policy %q (want abort or skip)", s)
	}
}

// Pipeline runs processor directives through plugins from a Registry.
type Pipeline struct {
	registry *Registry
	policy   Policy
	logger   *log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPolicy sets the missing-context policy.
func WithPolicy(p Policy) PipelineOption {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithLogger sets the logger for skipped directives.
func WithLogger(l *log.Logger) PipelineOption {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

// NewPipeline creates a pipeline backed by registry.
func NewPipeline(registry *Registry, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		registry: registry,
		logger:   log.New(io.Discard, "", 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Preprocess takes the directive keys out of node and runs the preprocess
// directives in declaration order: #preprocess first, then the inline
// #process form. The directive keys are removed whether or not any directive
// ran. The returned frame is PREPROCESSED, holds the node to build and keeps
// the #postprocess directives for Postprocess.
func (p *Pipeline) Preprocess(ctx context.Context, node *record.Node, ic Context) (*Frame, error) {
	f := NewFrame(node, ic)

	if node.IsMapping() {
		var pre []record.Directive

		for _, key := range []string{record.PreprocessKey, record.ProcessKey} {
			ds, err := record.TakeDirectives(node, key)
			if err != nil {
				return nil, &ConfigurationError{Err: err}
			}

			pre = append(pre, ds...)
		}

		post, err := record.TakeDirectives(node, record.PostprocessKey)
		if err != nil {
			return nil, &ConfigurationError{Err: err}
		}

		f.post = post

		for _, d := range pre {
			out, err := p.preprocess(ctx, d, f.Node, ic)
			if err != nil {
				return nil, err
			}

			f.Node = out
		}
	}

	if err := f.advance(StateRaw, StatePreprocessed); err != nil {
		return nil, err
	}

	return f, nil
}

func (p *Pipeline) preprocess(ctx context.Context, d record.Directive, node *record.Node, ic Context) (*record.Node, error) {
	proc, pctx, err := p.load(d, ic)
	if err != nil || proc == nil {
		return node, err
	}

	out, err := proc.Preprocess(ctx, node, pctx)
	if err != nil {
		return nil, &PluginError{Plugin: d.Plugin, Phase: PhasePreprocess, Err: err}
	}

	if out == nil {
		return nil, &PluginError{Plugin: d.Plugin, Phase: PhasePreprocess, Err: errors.New("returned no node")}
	}

	return out, nil
}

// Postprocess runs the postprocess directives of a BUILT frame with the
// built result. Postprocessing a POSTPROCESSED frame does nothing.
func (p *Pipeline) Postprocess(ctx context.Context, f *Frame, result any) error {
	if f.state == StatePostprocessed {
		return nil
	}

	if f.state != StateBuilt {
		return fmt.Errorf("%w: %s -> %s", ErrFrameState, f.state, StatePostprocessed)
	}

	for _, d := range f.post {
		proc, pctx, err := p.load(d, f.Context)
		if err != nil {
			return err
		}

		if proc == nil {
			continue
		}

		if err := proc.Postprocess(ctx, f.Node, result, pctx); err != nil {
			return &PluginError{Plugin: d.Plugin, Phase: PhasePostprocess, Err: err}
		}
	}

	return f.advance(StateBuilt, StatePostprocessed)
}

// load creates the plugin for d and its merged context. A nil processor with
// a nil error means the directive is skipped.
func (p *Pipeline) load(d record.Directive, ic Context) (ImportProcessor, Context, error) {
	def, ok := p.registry.Definition(d.Plugin)
	if !ok {
		return nil, nil, &ConfigurationError{Plugin: d.Plugin, Line: d.Line, Err: ErrUnknownPlugin}
	}

	if !def.SupportsImport {
		return nil, nil, &CapabilityError{Plugin: d.Plugin, Capability: "import"}
	}

	inst, err := p.registry.CreateInstance(d.Plugin)
	if err != nil {
		return nil, nil, &ConfigurationError{Plugin: d.Plugin, Line: d.Line, Err: err}
	}

	proc, ok := inst.(ImportProcessor)
	if !ok {
		return nil, nil, &CapabilityError{Plugin: d.Plugin, Capability: "import"}
	}

	pctx := ic.With(d.Params)

	for _, name := range def.RequiredParams() {
		if pctx.Has(name) {
			continue
		}

		err := &MissingContextError{Plugin: d.Plugin, Param: name}
		if p.policy == PolicySkip {
			p.logger.Printf("skipping directive at line %d: %v", d.Line, err)
			return nil, nil, nil
		}

		return nil, nil, err
	}

	return proc, pctx, nil
}
