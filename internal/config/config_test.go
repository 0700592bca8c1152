package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	assert.Equal(t, 5000, cfg.Retriever.MaxFeatures)
	assert.Equal(t, 10, cfg.Conversation.MaxHistoryPairs)
	assert.Equal(t, "openai", cfg.Generator.Type)
	assert.Equal(t, 30, cfg.Generator.TimeoutSecs)
	require.NotNil(t, cfg.Generator.OpenAI)
	assert.InDelta(t, 0.7, cfg.Generator.OpenAI.Temperature, 1e-9)
	assert.Equal(t, 4000, cfg.Generator.OpenAI.MaxTokens)
	assert.InDelta(t, 0.95, cfg.Generator.OpenAI.TopP, 1e-9)
	assert.Equal(t, []string{"utf-8", "gbk", "gb18030", "latin1"}, cfg.Ingest.Encodings)
}

func TestLoad_PartialFileKeepsValuesAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
chunker:
  chunk_size: 800
generator:
  type: extractive
  prompts:
    review: "Review: {context}"
server:
  addr: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, "extractive", cfg.Generator.Type)
	assert.Nil(t, cfg.Generator.OpenAI)
	assert.Equal(t, "Review: {context}", cfg.Generator.Prompts["review"])
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retriever.TopK = 7
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "studymate", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, 4000, cfg.Chunker.ChunkSize)
}
