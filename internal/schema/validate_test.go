package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/primitive"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		file      *File
		wantCodes []string
		warnCodes []string
	}{
		{
			name:      "nil file",
			file:      nil,
			wantCodes: []string{"schema_is_nil"},
		},
		{
			name:      "empty",
			file:      &File{},
			warnCodes: []string{"no_types"},
		},
		{
			name: "duplicate type",
			file: &File{Types: []TypeSchema{{Name: "node"}, {Name: "node"}}},
			wantCodes: []string{"duplicate_type"},
		},
		{
			name: "duplicate field",
			file: &File{Types: []TypeSchema{{Name: "node", Fields: []FieldDef{
				{Name: "title", Cardinality: 1}, {Name: "title", Cardinality: 1},
			}}}},
			wantCodes: []string{"duplicate_field"},
		},
		{
			name: "unknown reference target",
			file: &File{Types: []TypeSchema{
				{Name: "node", Fields: []FieldDef{{Name: "tags", Cardinality: Unlimited, Reference: true, Target: "tag"}}},
				{Name: "tags"},
			}},
			wantCodes: []string{"reference_target_not_found"},
		},
		{
			name: "key alias collides with field",
			file: &File{Types: []TypeSchema{{
				Name:   "node",
				Keys:   KeyAliases{{Source: "bundle", Target: "type"}},
				Fields: []FieldDef{{Name: "type", Cardinality: 1}},
			}}},
			wantCodes: []string{"key_alias_collision"},
		},
		{
			name: "unique field not declared",
			file: &File{Types: []TypeSchema{{
				Name:        "user",
				UniqueField: "nam",
				Fields:      []FieldDef{{Name: "name", Cardinality: 1}},
			}}},
			wantCodes: []string{"unique_field_not_found"},
		},
		{
			name: "unique field multi-valued",
			file: &File{Types: []TypeSchema{{
				Name:        "user",
				UniqueField: "names",
				Fields:      []FieldDef{{Name: "names", Cardinality: 2}},
			}}},
			wantCodes: []string{"unique_field_not_scalar"},
		},
		{
			name: "invalid cardinality and kind",
			file: &File{Types: []TypeSchema{{Name: "node", Fields: []FieldDef{
				{Name: "a", Cardinality: -5},
				{Name: "b", Cardinality: 1, Kind: primitive.Kind(99)},
			}}}},
			wantCodes: []string{"invalid_cardinality", "invalid_kind"},
		},
		{
			name: "zero cardinality warns",
			file: &File{Types: []TypeSchema{{Name: "node", Fields: []FieldDef{
				{Name: "locked", Cardinality: 0},
			}}}},
			warnCodes: []string{"zero_cardinality"},
		},
		{
			name: "target on plain field warns",
			file: &File{Types: []TypeSchema{{Name: "node", Fields: []FieldDef{
				{Name: "a", Cardinality: 1, Target: "node"},
			}}}},
			warnCodes: []string{"target_without_reference"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Validate(tt.file)

			for _, code := range tt.wantCodes {
				found := diags.ByCode(code)
				require.NotEmpty(t, found, "expected error code %s, got %v", code, diags.Errors)
			}

			assert.Len(t, diags.Errors, len(tt.wantCodes))

			for _, code := range tt.warnCodes {
				assert.NotEmpty(t, diags.ByCode(code), "expected warning code %s", code)
			}
		})
	}
}

func TestValidate_Suggestions(t *testing.T) {
	diags := Validate(&File{Types: []TypeSchema{
		{Name: "node", Fields: []FieldDef{{Name: "tags", Cardinality: Unlimited, Reference: true, Target: "taxonomy_trem"}}},
		{Name: "taxonomy_term"},
	}})

	found := diags.ByCode("reference_target_not_found")
	require.Len(t, found, 1)
	assert.Equal(t, []string{"taxonomy_term"}, found[0].Suggestions)
	assert.Contains(t, found[0].String(), "did you mean taxonomy_term?")
}
