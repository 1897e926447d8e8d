package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/schema"
	"content-loader/primitive"
)

func TestLoadSchemas_Blog(t *testing.T) {
	types, err := NewAnalyzer().LoadSchemas(blogPkg)
	require.NoError(t, err)
	require.Len(t, types, 4)

	names := make([]string, 0, len(types))
	for _, ts := range types {
		names = append(names, ts.Name)
	}

	assert.Equal(t, []string{"node", "paragraph", "taxonomy_term", "user"}, names)

	node := types[0]
	assert.Equal(t, "Content", node.Label)
	assert.Equal(t, schema.KeyAliases{{Source: "bundle", Target: "type"}}, node.Keys)
	assert.True(t, node.IsReusable())

	_, hasInternal := node.Field("internal")
	assert.False(t, hasInternal, "fields tagged - are skipped")

	tags, ok := node.Field("tags")
	require.True(t, ok)
	assert.Equal(t, schema.FieldDef{Name: "tags", Cardinality: schema.Unlimited, Reference: true, Target: "taxonomy_term"}, *tags)

	gallery, _ := node.Field("gallery")
	assert.Equal(t, schema.Cardinality(3), gallery.Cardinality)
	assert.Equal(t, primitive.KindString, gallery.Kind)

	uid, _ := node.Field("uid")
	assert.Equal(t, schema.Cardinality(1), uid.Cardinality)
	assert.Equal(t, "user", uid.Target)

	created, _ := node.Field("created")
	assert.Equal(t, primitive.KindTime, created.Kind)

	assert.False(t, types[1].IsReusable(), "component types are not reusable")

	user := types[3]
	assert.Equal(t, "name", user.UniqueField)

	roles, _ := user.Field("roles")
	assert.Equal(t, schema.Cardinality(4), roles.Cardinality, "card option overrides slice cardinality")
}

func TestLoadSchemas_MatchesSchemaFile(t *testing.T) {
	fromStructs, err := NewAnalyzer().LoadSchemas(blogPkg)
	require.NoError(t, err)

	file, err := schema.LoadFile("../../examples/blog/schema.yml")
	require.NoError(t, err)

	byName := map[string]schema.TypeSchema{}
	for _, ts := range file.Types {
		byName[ts.Name] = ts
	}

	for _, ts := range fromStructs {
		assert.Equal(t, byName[ts.Name], ts, "schema for %s", ts.Name)
	}

	assert.True(t, schema.Validate(&schema.File{Types: fromStructs}).IsValid())
}

func TestParseContentTag(t *testing.T) {
	unlimited := schema.Unlimited
	kindInt := primitive.KindInt

	tests := []struct {
		tag      string
		expected ContentTag
		wantErr  bool
	}{
		{"title", ContentTag{Name: "title"}, false},
		{"-", ContentTag{Skip: true}, false},
		{",unique", ContentTag{Unique: true}, false},
		{"type,key=bundle", ContentTag{Name: "type", Key: "bundle"}, false},
		{"paragraph,component,label=Para", ContentTag{Name: "paragraph", Component: true, Label: "Para"}, false},
		{"tags,card=*", ContentTag{Name: "tags", Cardinality: &unlimited}, false},
		{"weight,kind=integer", ContentTag{Name: "weight", Kind: &kindInt}, false},
		{"x,card=many", ContentTag{}, true},
		{"x,kind=blob", ContentTag{}, true},
		{"x,bogus", ContentTag{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseContentTag(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSnakeName(t *testing.T) {
	assert.Equal(t, "user", SnakeName("User"))
	assert.Equal(t, "blog_post", SnakeName("BlogPost"))
	assert.Equal(t, "html_body", SnakeName("HTMLBody"))
}
