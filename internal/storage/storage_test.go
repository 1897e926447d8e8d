package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/schema"
)

var nodeSchema = &schema.TypeSchema{
	Name: "node",
	Keys: schema.KeyAliases{{Source: "bundle", Target: "type"}},
	Fields: []schema.FieldDef{
		{Name: "title", Cardinality: 1},
		{Name: "tags", Cardinality: schema.Unlimited},
	},
}

func TestEqual(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		a, b     any
		expected bool
	}{
		{"same string", "a", "a", true},
		{"int vs float", 3, 3.0, true},
		{"int vs int64", 3, int64(3), true},
		{"number vs string", 3, "3", false},
		{"times in different zones", now, now.UTC(), true},
		{"references", Reference{Type: "user", ID: "1"}, Reference{Type: "user", ID: "1"}, true},
		{"different references", Reference{Type: "user", ID: "1"}, Reference{Type: "user", ID: "2"}, false},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Equal(tt.a, tt.b))
		})
	}
}

func TestEntity(t *testing.T) {
	e := NewEntity(nodeSchema, "1", map[string]any{"type": "article"})

	assert.Equal(t, "node", e.Type())
	assert.Equal(t, "node:1", e.String())
	assert.True(t, e.IsNew())
	assert.True(t, e.HasField("title"))
	assert.False(t, e.HasField("type"))

	require.NoError(t, e.SetField("title", "Hello"))
	require.NoError(t, e.AppendField("tags", "a"))
	require.NoError(t, e.AppendField("tags", "b"))
	assert.Equal(t, []string{"title", "tags"}, e.FieldNames())

	c := e.Clone()
	require.NoError(t, c.AppendField("tags", "c"))
	assert.Len(t, e.Field("tags"), 2)

	assert.True(t, Matches(e, []Condition{{Field: "type", Value: "article"}, {Field: "tags", Value: "b"}}))
	assert.False(t, Matches(e, []Condition{{Field: "title", Value: "Other"}}))

	e.ClearField("tags")
	assert.Empty(t, e.Field("tags"))

	e.MarkSaved()
	snap := Snapshot(nodeSchema, e)
	assert.False(t, snap.IsNew())
	assert.Equal(t, []any{"Hello"}, snap.Field("title"))

	assert.Equal(t, Reference{Type: "node", ID: "1"}, RefTo(e))
	assert.Equal(t, "node:1", RefTo(e).String())
	assert.Equal(t, "title=x", Condition{Field: "title", Value: "x"}.String())
}
