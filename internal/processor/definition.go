package processor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownPlugin is returned for plugin ids without a registered definition.
	ErrUnknownPlugin = errors.New("unknown processor plugin")
	// ErrDuplicatePlugin is returned when an id is registered twice.
	ErrDuplicatePlugin = errors.New("duplicate processor plugin")
)

// ParamSpec declares one context parameter a plugin reads.
type ParamSpec struct {
	Name        string
	Required    bool
	Description string
}

// Definition is the metadata of a processor plugin.
type Definition struct {
	ID          string
	Label       string
	Description string

	// Context lists the parameters taken from the merged plugin context.
	Context []ParamSpec

	SupportsImport bool
	SupportsExport bool
}

// RequiredParams returns the names of the required context parameters.
func (d *Definition) RequiredParams() []string {
	var names []string

	for _, p := range d.Context {
		if p.Required {
			names = append(names, p.Name)
		}
	}

	return names
}

// Factory creates a fresh plugin instance. Import plugins implement
// ImportProcessor.
type Factory func() (any, error)

type entry struct {
	def     Definition
	factory Factory
}

// Registry maps plugin ids to definitions and factories. It is filled at
// start-up and read-only afterwards.
type Registry struct {
	plugins map[string]entry
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]entry)}
}

// Register adds a plugin definition with its factory.
func (r *Registry) Register(def Definition, factory Factory) error {
	if strings.TrimSpace(def.ID) == "" {
		return errors.New("processor id is empty")
	}

	if factory == nil {
		return fmt.Errorf("processor %q: factory is nil", def.ID)
	}

	if _, ok := r.plugins[def.ID]; ok {
		return fmt.Errorf("%w %q", ErrDuplicatePlugin, def.ID)
	}

	r.plugins[def.ID] = entry{def: def, factory: factory}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition, factory Factory) {
	if err := r.Register(def, factory); err != nil {
		panic(err)
	}
}

// Definition returns the definition registered under id.
func (r *Registry) Definition(id string) (Definition, bool) {
	e, ok := r.plugins[id]
	return e.def, ok
}

// CreateInstance creates a new instance of plugin id.
func (r *Registry) CreateInstance(id string) (any, error) {
	e, ok := r.plugins[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPlugin, id)
	}

	inst, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("create processor %q: %w", id, err)
	}

	return inst, nil
}

// Definitions returns all definitions sorted by id.
func (r *Registry) Definitions() []Definition {
	return r.filter(func(Definition) bool { return true })
}

// ImportDefinitions returns the definitions of plugins that support import.
func (r *Registry) ImportDefinitions() []Definition {
	return r.filter(func(d Definition) bool { return d.SupportsImport })
}

// ExportDefinitions returns the definitions of plugins that support export.
func (r *Registry) ExportDefinitions() []Definition {
	return r.filter(func(d Definition) bool { return d.SupportsExport })
}

func (r *Registry) filter(keep func(Definition) bool) []Definition {
	var defs []Definition

	for _, e := range r.plugins {
		if keep(e.def) {
			defs = append(defs, e.def)
		}
	}

	slices.SortFunc(defs, func(a, b Definition) int { return strings.Compare(a.ID, b.ID) })

	return defs
}
