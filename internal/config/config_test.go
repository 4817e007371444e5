package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, 500, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.True(t, cfg.Retrieval.AsyncIngest)
	assert.Equal(t, "multimodal_db", cfg.MySQL.DB)
	assert.False(t, cfg.Vision.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("RETRIEVAL_CHUNK_SIZE", "128")
	t.Setenv("RETRIEVAL_ASYNC_INGEST", "false")
	t.Setenv("MYSQL_DB", "kb_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 128, cfg.Retrieval.ChunkSize)
	assert.False(t, cfg.Retrieval.AsyncIngest)
	assert.Contains(t, cfg.MySQLDSN(), "/kb_test?")
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("RETRIEVAL_ASYNC_INGEST", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.Retrieval.AsyncIngest)
}
