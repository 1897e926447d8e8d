package processor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/processor"
)

func TestRegistry(t *testing.T) {
	reg := processor.NewRegistry()
	factory := func() (any, error) { return processor.Base{}, nil }

	require.NoError(t, reg.Register(processor.Definition{ID: "b", SupportsImport: true}, factory))
	require.NoError(t, reg.Register(processor.Definition{ID: "a", SupportsImport: true, SupportsExport: true}, factory))
	require.NoError(t, reg.Register(processor.Definition{ID: "c", SupportsExport: true}, factory))

	require.ErrorIs(t, reg.Register(processor.Definition{ID: "a"}, factory), processor.ErrDuplicatePlugin)
	require.Error(t, reg.Register(processor.Definition{ID: " "}, factory))
	require.Error(t, reg.Register(processor.Definition{ID: "d"}, nil))
	assert.Panics(t, func() { reg.MustRegister(processor.Definition{ID: "a"}, factory) })

	ids := func(defs []processor.Definition) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.ID)
		}

		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(reg.Definitions()))
	assert.Equal(t, []string{"a", "b"}, ids(reg.ImportDefinitions()))
	assert.Equal(t, []string{"a", "c"}, ids(reg.ExportDefinitions()))

	def, ok := reg.Definition("b")
	require.True(t, ok)
	assert.Equal(t, "b", def.ID)

	_, ok = reg.Definition("zzz")
	assert.False(t, ok)

	inst, err := reg.CreateInstance("a")
	require.NoError(t, err)
	assert.Implements(t, (*processor.ImportProcessor)(nil), inst)

	_, err = reg.CreateInstance("zzz")
	require.ErrorIs(t, err, processor.ErrUnknownPlugin)
}

func TestRegistry_FactoryError(t *testing.T) {
	reg := processor.NewRegistry()
	boom := errors.New("boom")
	reg.MustRegister(processor.Definition{ID: "x", SupportsImport: true}, func() (any, error) { return nil, boom })

	_, err := reg.CreateInstance("x")
	require.ErrorIs(t, err, boom)
}

func TestDefinition_RequiredParams(t *testing.T) {
	def := processor.Definition{Context: []processor.ParamSpec{
		{Name: "entity_type", Required: true},
		{Name: "limit"},
		{Name: "bundle", Required: true},
	}}

	assert.Equal(t, []string{"entity_type", "bundle"}, def.RequiredParams())
}

func TestIsFieldLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plugin", &processor.PluginError{Plugin: "p", Phase: processor.PhasePreprocess, Err: errors.New("x")}, true},
		{"missing reference", &processor.MissingReferenceError{EntityType: "user"}, true},
		{"wrapped missing reference", &processor.PluginError{Err: &processor.MissingReferenceError{}}, true},
		{"configuration", &processor.ConfigurationError{Err: errors.New("x")}, false},
		{"capability", &processor.CapabilityError{Plugin: "p", Capability: "import"}, false},
		{"missing context", &processor.MissingContextError{Plugin: "p", Param: "x"}, false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.IsFieldLevel(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `processor configuration (line 4) for "x": unknown processor plugin`,
		(&processor.ConfigurationError{Plugin: "x", Line: 4, Err: processor.ErrUnknownPlugin}).Error())
	assert.Equal(t, `processor "x" does not support import operations`,
		(&processor.CapabilityError{Plugin: "x", Capability: "import"}).Error())
	assert.Equal(t, `no user found matching map[name:a]`,
		(&processor.MissingReferenceError{EntityType: "user", Conditions: map[string]any{"name": "a"}}).Error())
}
