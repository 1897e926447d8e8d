package content

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"time"

	"content-loader/internal/diagnostic"
	"content-loader/internal/processor"
	"content-loader/internal/record"
	"content-loader/internal/storage"
)

// DefaultTypeKey is the record key naming the target type.
const DefaultTypeKey = "entity"

// Result is the outcome of one document import.
type Result struct {
	// Objects are the top-level objects in document order.
	Objects []storage.Object
	// Diagnostics holds field level errors and warnings.
	Diagnostics *diagnostic.Diagnostics
}

// ImportEvent is passed to import hooks after a document was imported.
type ImportEvent struct {
	Source   string
	Objects  []storage.Object
	Document *record.Node
}

// ImportHook observes successful document imports.
type ImportHook func(ctx context.Context, ev ImportEvent)

// Loader imports content documents read from a content root.
type Loader struct {
	repo     storage.Repository
	fsys     fs.FS
	registry *processor.Registry

	existenceCheck bool
	typeKey        string
	policy         processor.Policy
	matchPolicy    MatchPolicy
	logger         *log.Logger
	now            func() time.Time
	hooks          []ImportHook
}

// Option configures a Loader.
type Option func(*Loader)

// WithExistenceCheck toggles find-or-update mode.
func WithExistenceCheck(enabled bool) Option {
	return func(l *Loader) { l.existenceCheck = enabled }
}

// WithTypeKey sets the record key naming the target type.
func WithTypeKey(key string) Option {
	return func(l *Loader) {
		if key != "" {
			l.typeKey = key
		}
	}
}

// WithDirectivePolicy sets what happens to directives missing a required
// context parameter.
func WithDirectivePolicy(p processor.Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithMatchPolicy sets how existence checks pick among several matches.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(l *Loader) { l.matchPolicy = p }
}

// WithLogger sets the logger for field level failures and warnings.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock sets the time source used for unique value salts.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithImportHook adds a hook run after every successful document import.
func WithImportHook(h ImportHook) Option {
	return func(l *Loader) { l.hooks = append(l.hooks, h) }
}

// New returns a loader storing objects in repo, running directives through
// plugins from registry and reading documents from fsys. registry may be
// nil when documents carry no directives.
func New(repo storage.Repository, registry *processor.Registry, fsys fs.FS, opts ...Option) *Loader {
	if registry == nil {
		registry = processor.NewRegistry()
	}

	l := &Loader{
		repo:     repo,
		fsys:     fsys,
		registry: registry,
		typeKey:  DefaultTypeKey,
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// ExistenceCheck reports whether find-or-update mode is on.
func (l *Loader) ExistenceCheck() bool { return l.existenceCheck }

// SetExistenceCheck toggles find-or-update mode for later imports.
func (l *Loader) SetExistenceCheck(enabled bool) { l.existenceCheck = enabled }

// ParseContent reads and parses name from the content root.
func (l *Loader) ParseContent(name string) (*record.Node, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	doc, err := record.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return doc, nil
}

// LoadContent imports the document name from the content root. With save,
// every built object is saved, nested objects before the object that
// references them.
func (l *Loader) LoadContent(ctx context.Context, name string, save bool) (*Result, error) {
	doc, err := l.ParseContent(name)
	if err != nil {
		return nil, err
	}

	return l.LoadDocument(ctx, name, doc, save)
}

// LoadDocument imports an already parsed document. source names the
// document in import events.
func (l *Loader) LoadDocument(ctx context.Context, source string, doc *record.Node, save bool) (*Result, error) {
	if !doc.IsSequence() {
		return nil, fmt.Errorf("%s: line %d: content must be a sequence of records, got %s", source, doc.Line, doc.Kind)
	}

	s := l.newSession(source)
	res := &Result{Diagnostics: s.diags}

	for i, item := range doc.Items {
		if !item.IsMapping() {
			return nil, fmt.Errorf("%s: record %d (line %d): expected a mapping, got %s", source, i+1, item.Line, item.Kind)
		}

		obj, err := s.importRecord(ctx, item)
		if err != nil {
			if !isFieldLevel(err) {
				return nil, fmt.Errorf("%s: record %d: %w", source, i+1, err)
			}

			s.report(err, "", "", item)
			s.pending = nil

			continue
		}

		if save {
			if err := s.flush(ctx); err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", source, i+1, err)
			}
		}

		s.pending = nil
		res.Objects = append(res.Objects, obj)
	}

	for _, h := range l.hooks {
		h(ctx, ImportEvent{Source: source, Objects: res.Objects, Document: doc})
	}

	return res, nil
}

// session is the state of one import run.
type session struct {
	*Loader

	source   string
	pipeline *processor.Pipeline
	diags    *diagnostic.Diagnostics
	// pending are objects built since the last flush, in completion order.
	pending []storage.Object
}

func (l *Loader) newSession(source string) *session {
	return &session{
		Loader: l,
		source: source,
		pipeline: processor.NewPipeline(l.registry,
			processor.WithPolicy(l.policy), processor.WithLogger(l.logger)),
		diags: &diagnostic.Diagnostics{},
	}
}

// importRecord runs the record level pipeline around Build.
func (s *session) importRecord(ctx context.Context, node *record.Node) (storage.Object, error) {
	ic := processor.Context{}
	if name, ok := s.typeName(node); ok {
		ic[processor.KeyEntityType] = name
	}

	frame, err := s.pipeline.Preprocess(ctx, node, ic)
	if err != nil {
		return nil, err
	}

	data := frame.Node

	name, ok := s.typeName(data)
	if !ok {
		return nil, &UnknownTypeError{Key: s.typeKey, Line: data.Line}
	}

	data.Delete(s.typeKey)

	obj, err := s.build(ctx, name, data)
	if err != nil {
		return nil, err
	}

	if err := frame.MarkBuilt(); err != nil {
		return nil, err
	}

	if err := s.pipeline.Postprocess(ctx, frame, obj); err != nil {
		return nil, err
	}

	s.pending = append(s.pending, obj)

	return obj, nil
}

func (s *session) typeName(node *record.Node) (string, bool) {
	v := node.Get(s.typeKey)
	if !v.IsScalar() {
		return "", false
	}

	name, ok := v.Value.(string)

	return name, ok && name != ""
}

// flush saves the pending objects in completion order.
func (s *session) flush(ctx context.Context) error {
	for _, obj := range s.pending {
		if err := s.repo.Save(ctx, obj); err != nil {
			return fmt.Errorf("save %s:%s: %w", obj.Type(), obj.ID(), err)
		}
	}

	s.pending = nil

	return nil
}

// report records a failure at node and logs it. Without a type name the
// failure skipped the whole record and no value is kept.
func (s *session) report(err error, typeName, field string, node *record.Node) {
	var value any
	if node != nil && typeName != "" {
		value = node.Interface()
	}

	d := diagnostic.Diagnostic{
		Severity:    diagnostic.SeverityError,
		Code:        diagnosticCode(err),
		Message:     err.Error(),
		Source:      s.source,
		Line:        lineOf(node),
		TypeName:    typeName,
		FieldPath:   field,
		Value:       value,
		Suggestions: suggestions(err),
	}
	s.diags.Add(d)

	if typeName != "" {
		s.logger.Printf("%s: import %s.%s failed for value %v: %v", d.Location(), typeName, field, value, err)
	} else {
		s.logger.Printf("%s: import failed: %v", d.Location(), err)
	}
}

// warn records a warning at node and logs it. node may be nil.
func (s *session) warn(code, message, typeName, field string, node *record.Node) {
	d := diagnostic.Diagnostic{
		Severity:  diagnostic.SeverityWarning,
		Code:      code,
		Message:   message,
		Source:    s.source,
		Line:      lineOf(node),
		TypeName:  typeName,
		FieldPath: field,
	}
	s.diags.Add(d)
	s.logger.Printf("%s: warning: %s", d.Location(), message)
}

func lineOf(n *record.Node) int {
	if n == nil {
		return 0
	}

	return n.Line
}
