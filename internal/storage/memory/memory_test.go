package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-loader/internal/schema"
	"content-loader/internal/storage"
)

func testRegistry() *schema.Registry {
	return schema.MustRegistry(
		schema.TypeSchema{
			Name: "node",
			Keys: schema.KeyAliases{{Source: "bundle", Target: "type"}},
			Fields: []schema.FieldDef{
				{Name: "title", Cardinality: 1},
				{Name: "tags", Cardinality: schema.Unlimited},
				{Name: "pair", Cardinality: 2},
			},
		},
		schema.TypeSchema{Name: "user", Fields: []schema.FieldDef{{Name: "name", Cardinality: 1}}},
	)
}

func TestRepository_CreateIsNotVisibleUntilSaved(t *testing.T) {
	ctx := context.Background()
	repo := New(testRegistry())

	obj, err := repo.Create(ctx, "node", map[string]any{"type": "article"})
	require.NoError(t, err)
	require.NoError(t, obj.SetField("title", "Hello"))
	assert.True(t, obj.IsNew())
	assert.NotEmpty(t, obj.ID())

	found, err := repo.Query(ctx, "node", nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = repo.Load(ctx, "node", obj.ID())
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Save(ctx, obj))
	assert.False(t, obj.IsNew())
	assert.Equal(t, 1, repo.Len())

	loaded, err := repo.Load(ctx, "node", obj.ID())
	require.NoError(t, err)
	assert.Equal(t, []any{"Hello"}, loaded.Field("title"))
	assert.False(t, loaded.IsNew())

	// Loads are snapshots.
	require.NoError(t, loaded.SetField("title", "Changed"))
	again, err := repo.Load(ctx, "node", obj.ID())
	require.NoError(t, err)
	assert.Equal(t, []any{"Hello"}, again.Field("title"))
}

func TestRepository_QueryOrderAndConditions(t *testing.T) {
	ctx := context.Background()
	repo := New(testRegistry())

	var ids []string

	for _, title := range []string{"a", "b", "a"} {
		obj, err := repo.Create(ctx, "node", map[string]any{"type": "article"})
		require.NoError(t, err)
		require.NoError(t, obj.SetField("title", title))
		require.NoError(t, obj.AppendField("tags", "go"))
		require.NoError(t, repo.Save(ctx, obj))

		ids = append(ids, obj.ID())
	}

	tests := []struct {
		name  string
		conds []storage.Condition
		want  []string
	}{
		{"no conditions", nil, ids},
		{"field", []storage.Condition{{Field: "title", Value: "a"}}, []string{ids[0], ids[2]}},
		{"property", []storage.Condition{{Field: "type", Value: "article"}}, ids},
		{"property mismatch", []storage.Condition{{Field: "type", Value: "page"}}, nil},
		{"multi-value field", []storage.Condition{{Field: "tags", Value: "go"}, {Field: "title", Value: "b"}}, []string{ids[1]}},
		{"unknown field", []storage.Condition{{Field: "missing", Value: 1}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.Query(ctx, "node", tt.conds)
			require.NoError(t, err)

			var got []string
			for _, obj := range found {
				got = append(got, obj.ID())
			}

			assert.Equal(t, tt.want, got)
		})
	}

	users, err := repo.Query(ctx, "user", nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := New(testRegistry())

	obj, err := repo.Create(ctx, "user", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, obj))
	require.NoError(t, repo.Delete(ctx, obj))

	assert.Equal(t, 0, repo.Len())
	require.ErrorIs(t, repo.Delete(ctx, obj), storage.ErrNotFound)
}

func TestRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := New(testRegistry())

	_, err := repo.Create(ctx, "comment", nil)
	require.ErrorIs(t, err, storage.ErrUnknownType)

	_, err = repo.Query(ctx, "comment", nil)
	require.ErrorIs(t, err, storage.ErrUnknownType)

	obj, err := repo.Create(ctx, "node", nil)
	require.NoError(t, err)
	require.ErrorIs(t, obj.SetField("body", "x"), storage.ErrUndefinedField)
	require.NoError(t, obj.AppendField("pair", 1))
	require.NoError(t, obj.AppendField("pair", 2))
	require.ErrorIs(t, obj.AppendField("pair", 3), storage.ErrCardinality)

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = repo.Create(canceled, "node", nil)
	require.ErrorIs(t, err, context.Canceled)
}
