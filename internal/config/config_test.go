package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		ContentRoot:     "content",
		SchemaPath:      "schema.yml",
		FilesDir:        "files",
		TypeKey:         "entity",
		DirectivePolicy: "abort",
		MatchPolicy:     "first",
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CONTENT_LOADER_ROOT", "/srv/content")
	t.Setenv("CONTENT_LOADER_DB", "data/content.db")
	t.Setenv("CONTENT_LOADER_EXISTENCE_CHECK", "true")
	t.Setenv("CONTENT_LOADER_TYPE_KEY", "type")
	t.Setenv("CONTENT_LOADER_MATCH_POLICY", "latest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/content", cfg.ContentRoot)
	assert.Equal(t, "data/content.db", cfg.DBPath)
	assert.True(t, cfg.ExistenceCheck)
	assert.Equal(t, "type", cfg.TypeKey)
	assert.Equal(t, "latest", cfg.MatchPolicy)
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("CONTENT_LOADER_VERBOSE", "loud")

	_, err := Load()
	require.Error(t, err)
}
