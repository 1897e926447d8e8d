package content_test

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/content"
	"content-loader/internal/processor"
	"content-loader/internal/processor/plugins"
	"content-loader/internal/record"
	"content-loader/internal/storage"
)

// recorder records every hook call as "<phase>:<label>:<result type>".
type recorder struct {
	calls *[]string
}

func (p recorder) Preprocess(_ context.Context, node *record.Node, c processor.Context) (*record.Node, error) {
	*p.calls = append(*p.calls, "pre:"+c.String("label"))

	if c.Bool("fail", false) {
		return nil, errors.New("recorder failed")
	}

	return node, nil
}

func (p recorder) Postprocess(_ context.Context, _ *record.Node, result any, c processor.Context) error {
	kind := "other"

	switch result.(type) {
	case storage.Object:
		kind = "object"
	case []any:
		kind = "values"
	}

	*p.calls = append(*p.calls, "post:"+c.String("label")+":"+kind)

	return nil
}

type directiveFixture struct {
	repo   *recordingRepo
	loader *content.Loader
	calls  []string
	logs   strings.Builder
}

func newDirectiveFixture(t *testing.T, opts ...content.Option) *directiveFixture {
	t.Helper()

	f := &directiveFixture{repo: newRepo()}

	fsys := fstest.MapFS{
		"templates/section.template.yml": {Data: []byte("entity: paragraph\ntext: templated\n")},
	}

	reg := processor.NewRegistry()
	require.NoError(t, plugins.Register(reg, plugins.Deps{Repo: f.repo, FS: fsys}))
	reg.MustRegister(processor.Definition{ID: "recorder", SupportsImport: true,
		Context: []processor.ParamSpec{{Name: "label", Required: true}}},
		func() (any, error) { return recorder{calls: &f.calls}, nil })
	reg.MustRegister(processor.Definition{ID: "export_only", SupportsExport: true},
		func() (any, error) { return recorder{calls: &f.calls}, nil })

	opts = append([]content.Option{content.WithLogger(log.New(&f.logs, "", 0))}, opts...)
	f.loader = content.New(f.repo, reg, fsys, opts...)

	return f
}

func TestDirectives_CapabilityErrorStopsRecord(t *testing.T) {
	f := newDirectiveFixture(t)

	_, err := load(t, f.loader, `
- entity: node
  title: never built
  "#preprocess":
    plugin: export_only
`)

	var target *processor.CapabilityError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "export_only", target.Plugin)
	assert.Empty(t, f.repo.saved)
	assert.Empty(t, f.calls)
}

func TestDirectives_RunAtEveryLevel(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- entity: node
  "#preprocess": {plugin: recorder, label: record}
  "#postprocess": {plugin: recorder, label: record}
  title: Hello
  gallery:
    "#preprocess": {plugin: recorder, label: field}
    "#postprocess": {plugin: recorder, label: field}
  tags:
    - entity: tag
      name: go
    - "#preprocess": {plugin: recorder, label: item}
      "#postprocess": {plugin: recorder, label: item}
`)
	require.Len(t, res.Objects, 1)
	assert.False(t, res.Diagnostics.HasErrors())

	assert.Equal(t, []string{
		"pre:record",
		"pre:field",
		"post:field:values",
		"pre:item",
		"post:item:values",
		"post:record:object",
	}, f.calls)

	assert.Len(t, res.Objects[0].Field("tags"), 1)
	assert.Empty(t, res.Objects[0].Field("gallery"))
}

func TestDirectives_EntityReferenceField(t *testing.T) {
	f := newDirectiveFixture(t)

	mustLoad(t, f.loader, `
- {entity: tag, vocabulary: topics, name: go}
- {entity: tag, vocabulary: topics, name: yaml}
- {entity: tag, vocabulary: other, name: go}
`)

	res := mustLoad(t, f.loader, `
- entity: node
  title: Linked
  tags:
    "#preprocess":
      plugin: entity_reference
      entity_type: tag
      conditions: {vid: topics}
`)

	tags := res.Objects[0].Field("tags")
	require.Len(t, tags, 2)

	for _, v := range tags {
		assert.Equal(t, "tag", v.(storage.Reference).Type)
	}
}

func TestDirectives_MissingReferenceIsFieldLevel(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- entity: node
  title: Still built
  tags:
    "#preprocess":
      plugin: entity_reference
      entity_type: tag
      conditions: {name: nothing}
`)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, []any{"Still built"}, res.Objects[0].Field("title"))

	errs := res.Diagnostics.ByCode("missing_reference")
	require.Len(t, errs, 1)
	assert.Equal(t, "tags", errs[0].FieldPath)
	assert.Contains(t, f.logs.String(), "node.tags")
}

func TestDirectives_PluginErrorOnItemIsIsolated(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- entity: node
  gallery:
    - a
    - {"#preprocess": {plugin: recorder, label: bad, fail: true}}
    - c
`)
	assert.Equal(t, []any{"a", "c"}, res.Objects[0].Field("gallery"))
	assert.Len(t, res.Diagnostics.ByCode("plugin_error"), 1)
}

func TestDirectives_RecordLevelPluginErrorSkipsRecord(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- {entity: person, name: A, "#preprocess": {plugin: recorder, label: r, fail: true}}
- {entity: person, name: B}
`)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, []any{"B"}, res.Objects[0].Field("name"))
	assert.Len(t, res.Diagnostics.ByCode("plugin_error"), 1)
	assert.Equal(t, []string{"person"}, f.repo.saved)
}

func TestDirectives_TemplateBuildsNestedRecords(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- entity: node
  sections:
    "#preprocess": {plugin: template, template: section, count: 3}
`)
	assert.Len(t, res.Objects[0].Field("sections"), 3)
	assert.Equal(t, []string{"paragraph", "paragraph", "paragraph", "node"}, f.repo.saved)
}

func TestDirectives_SampleDataField(t *testing.T) {
	f := newDirectiveFixture(t)

	res := mustLoad(t, f.loader, `
- entity: node
  body:
    "#preprocess": {plugin: sample_data, data_type: rich_text}
`)
	body := res.Objects[0].Field("body")
	require.Len(t, body, 1)
	assert.Len(t, body[0], 200)
}

func TestDirectives_MissingContextPolicy(t *testing.T) {
	src := `
- entity: node
  title: x
  "#preprocess": {plugin: recorder}
`

	f := newDirectiveFixture(t)
	_, err := load(t, f.loader, src)

	var target *processor.MissingContextError
	require.ErrorAs(t, err, &target)

	f = newDirectiveFixture(t, content.WithDirectivePolicy(processor.PolicySkip))
	res := mustLoad(t, f.loader, src)
	require.Len(t, res.Objects, 1)
	assert.Empty(t, f.calls)
	assert.Contains(t, f.logs.String(), "label")
}
