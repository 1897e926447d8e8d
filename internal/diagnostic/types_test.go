package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_AddBySeverity(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())

	d.AddError("undefined_field", "undefined field", "node", "titl")
	d.AddWarning("cardinality_overflow", "extra values dropped", "node", "title")

	assert.Len(t, d.Errors, 1)
	assert.Len(t, d.Warnings, 1)
	assert.True(t, d.HasErrors())
	assert.True(t, d.HasWarnings())
	assert.False(t, d.IsValid())
	assert.Equal(t, "undefined_field", d.All()[0].Code)
}

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Error())

	d.AddError("a", "first", "", "")
	d.AddError("b", "second", "tag", "name")

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t, "[a] first; [tag] name: [b] second", err.Error())
}

func TestDiagnostics_MergeAndByCode(t *testing.T) {
	var a, b Diagnostics

	a.AddWarning("ambiguous_match", "two matches", "tag", "")
	b.AddWarning("ambiguous_match", "three matches", "person", "")
	b.AddError("invalid_field", "too many values", "person", "tags")

	a.Merge(&b)
	a.Merge(nil)

	assert.Len(t, a.ByCode("ambiguous_match"), 2)
	assert.Len(t, a.ByCode("invalid_field"), 1)
	assert.Empty(t, a.ByCode("missing"))
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "suggestions",
			diag: Diagnostic{
				Code:        "undefined_field",
				Message:     `undefined field "titl"`,
				TypeName:    "node",
				FieldPath:   "titl",
				Suggestions: []string{"title"},
			},
			want: `[node] titl: [undefined_field] undefined field "titl" (did you mean title?)`,
		},
		{
			name: "located",
			diag: Diagnostic{Code: "invalid_field", Message: "bad", Source: "blog.yml", Line: 4, TypeName: "node", FieldPath: "weight"},
			want: "blog.yml:4: [node] weight: [invalid_field] bad",
		},
		{
			name: "line only",
			diag: Diagnostic{Message: "bad", Line: 7},
			want: "line 7: bad",
		},
		{
			name: "bare",
			diag: Diagnostic{Message: "bad"},
			want: "bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
