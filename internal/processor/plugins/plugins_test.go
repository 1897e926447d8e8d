package plugins_test

import (
	"context"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/processor"
	"content-loader/internal/processor/plugins"
	"content-loader/internal/record"
	"content-loader/internal/schema"
	"content-loader/internal/storage"
	"content-loader/internal/storage/memory"
)

type fixture struct {
	repo     *memory.Repository
	pipeline *processor.Pipeline
	logs     *strings.Builder
	users    []storage.Object
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memory.New(schema.MustRegistry(
		schema.TypeSchema{
			Name:   "user",
			Keys:   schema.KeyAliases{{Source: "bundle", Target: "type"}},
			Fields: []schema.FieldDef{{Name: "name", Cardinality: 1}},
		},
		schema.TypeSchema{
			Name:   "taxonomy_term",
			Keys:   schema.KeyAliases{{Source: "vocabulary", Target: "vid"}},
			Fields: []schema.FieldDef{{Name: "name", Cardinality: 1}},
		},
	))

	f := &fixture{repo: repo, logs: &strings.Builder{}}

	for _, u := range []struct{ name, kind string }{{"ada", "admin"}, {"grace", "admin"}, {"linus", "editor"}} {
		obj, err := repo.Create(context.Background(), "user", map[string]any{"type": u.kind})
		require.NoError(t, err)
		require.NoError(t, obj.SetField("name", u.name))
		require.NoError(t, repo.Save(context.Background(), obj))

		f.users = append(f.users, obj)
	}

	fsys := fstest.MapFS{
		"templates/section.template.yml": {Data: []byte("entity: paragraph\ntext: Lorem\n")},
		"parts/alt.template.yml":         {Data: []byte("entity: paragraph\ntext: Alt\n")},
		"data/people.data.yml":           {Data: []byte("first: [Ada, Grace]\n")},
	}

	reg := processor.NewRegistry()
	require.NoError(t, plugins.Register(reg, plugins.Deps{
		Repo:   repo,
		FS:     fsys,
		Logger: log.New(f.logs, "", 0),
	}))

	f.pipeline = processor.NewPipeline(reg)

	return f
}

func (f *fixture) preprocess(t *testing.T, src string) (*record.Node, error) {
	t.Helper()

	node, err := record.Parse([]byte(src))
	require.NoError(t, err)

	frame, err := f.pipeline.Preprocess(context.Background(), node, processor.Context{})
	if err != nil {
		return nil, err
	}

	return frame.Node, nil
}

func TestRegister_Definitions(t *testing.T) {
	reg := processor.NewRegistry()
	require.NoError(t, plugins.Register(reg, plugins.Deps{}))

	var ids []string
	for _, d := range reg.ImportDefinitions() {
		ids = append(ids, d.ID)
	}

	assert.Equal(t, []string{"debug", "entity_reference", "sample_data", "template"}, ids)
	require.ErrorIs(t, plugins.Register(reg, plugins.Deps{}), processor.ErrDuplicatePlugin)
}

func TestEntityReference(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		src  string
		want []storage.Reference
	}{
		{
			name: "by condition",
			src:  "\"#preprocess\":\n  plugin: entity_reference\n  entity_type: user\n  conditions: {name: grace}\n",
			want: []storage.Reference{storage.RefTo(f.users[1])},
		},
		{
			name: "by bundle in creation order",
			src:  "\"#preprocess\":\n  plugin: entity_reference\n  entity_type: user\n  bundle: admin\n",
			want: []storage.Reference{storage.RefTo(f.users[0]), storage.RefTo(f.users[1])},
		},
		{
			name: "limit",
			src:  "\"#preprocess\":\n  plugin: entity_reference\n  entity_type: user\n  limit: 1\n",
			want: []storage.Reference{storage.RefTo(f.users[0])},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := f.preprocess(t, tt.src)
			require.NoError(t, err)
			require.True(t, node.IsSequence())

			var got []storage.Reference
			for _, item := range node.Items {
				got = append(got, item.Value.(storage.Reference))
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntityReference_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.preprocess(t, "\"#preprocess\":\n  plugin: entity_reference\n  entity_type: user\n  conditions: {name: nobody}\n")

	var missing *processor.MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "user", missing.EntityType)
	assert.True(t, processor.IsFieldLevel(err))

	_, err = f.preprocess(t, "\"#preprocess\":\n  plugin: entity_reference\n")

	var ctxErr *processor.MissingContextError
	require.ErrorAs(t, err, &ctxErr)
	assert.Equal(t, "entity_type", ctxErr.Param)
}

func TestSampleData(t *testing.T) {
	f := newFixture(t)

	src := "\"#preprocess\":\n  plugin: sample_data\n  dataset: {path: data, file: people}\n  lookup: first\n"

	var got []any

	for range 3 {
		node, err := f.preprocess(t, src)
		require.NoError(t, err)
		got = append(got, node.Interface().([]any)...)
	}

	assert.Equal(t, []any{"Ada", "Grace", "Ada"}, got)

	node, err := f.preprocess(t, "\"#preprocess\":\n  plugin: sample_data\n  data_type: short_text\n")
	require.NoError(t, err)
	require.Equal(t, 1, node.Len())
	assert.Len(t, node.Items[0].Value, 20)

	node, err = f.preprocess(t, "\"#preprocess\":\n  plugin: sample_data\n  data_type: term\n  params: {name: Go, vocabulary: tags}\n")
	require.NoError(t, err)
	assert.IsType(t, storage.Reference{}, node.Items[0].Value)

	for _, src := range []string{
		"\"#preprocess\":\n  plugin: sample_data\n",
		"\"#preprocess\":\n  plugin: sample_data\n  dataset: {path: data, file: people}\n  lookup: last\n",
		"\"#preprocess\":\n  plugin: sample_data\n  data_type: hologram\n",
	} {
		_, err := f.preprocess(t, src)

		var pluginErr *processor.PluginError
		require.ErrorAs(t, err, &pluginErr)
		assert.Equal(t, "sample_data", pluginErr.Plugin)
	}
}

func TestTemplate(t *testing.T) {
	f := newFixture(t)

	node, err := f.preprocess(t, "\"#preprocess\":\n  plugin: template\n  template: section\n  count: 2\n")
	require.NoError(t, err)
	require.Equal(t, 2, node.Len())
	assert.NotSame(t, node.Items[0], node.Items[1])
	assert.Equal(t, map[string]any{"entity": "paragraph", "text": "Lorem"}, node.Items[1].Interface())

	node, err = f.preprocess(t, "\"#preprocess\":\n  plugin: template\n  template: alt\n  dir: parts\n")
	require.NoError(t, err)
	require.Equal(t, 1, node.Len())
	assert.Equal(t, "Alt", node.Items[0].Get("text").Value)

	_, err = f.preprocess(t, "\"#preprocess\":\n  plugin: template\n  template: missing\n")

	var pluginErr *processor.PluginError
	require.ErrorAs(t, err, &pluginErr)
}

func TestDebug(t *testing.T) {
	f := newFixture(t)

	node, err := record.Parse([]byte("title: Hello\n\"#preprocess\": {plugin: debug}\n\"#postprocess\": {plugin: debug}\n"))
	require.NoError(t, err)

	frame, err := f.pipeline.Preprocess(context.Background(), node, processor.Context{processor.KeyEntityType: "node"})
	require.NoError(t, err)
	require.NoError(t, frame.MarkBuilt())
	require.NoError(t, f.pipeline.Postprocess(context.Background(), frame, "built"))

	out := f.logs.String()
	assert.Contains(t, out, "debug preprocess node")
	assert.Contains(t, out, "debug postprocess node")
	assert.Contains(t, out, `"Hello"`)
	assert.Contains(t, out, `"built"`)
}
