package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "covers", cfg.CoversDir)
	assert.Equal(t, "books_metadata.html", cfg.OutputPath)
	assert.Equal(t, "", cfg.Format)
	assert.Equal(t, "", cfg.SortBy)
	assert.False(t, cfg.Reverse)
	assert.False(t, cfg.BibliographicSort)
}

func TestNew_WithEnvVar(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("BOOKSHELF_COVERS_DIR", "/tmp/covers")
	t.Setenv("BOOKSHELF_REVERSE", "true")
	t.Setenv("BOOKSHELF_SORT_BY", " Author ")
	t.Setenv("BOOKSHELF_BIBLIOGRAPHIC_SORT", "true")

	cfg, err := New()
	require.NoError(t, err)
	assert.True(t, cfg.BibliographicSort)
	assert.Equal(t, "/tmp/covers", cfg.CoversDir)
	assert.True(t, cfg.Reverse)
	assert.Equal(t, "author", cfg.SortBy)
}

func TestNew_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
covers_dir: /data/covers
output_path: /data/catalog.md
format: markdown
sort_by: title
reverse: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/covers", cfg.CoversDir)
	assert.Equal(t, "/data/catalog.md", cfg.OutputPath)
	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, "title", cfg.SortBy)
	assert.True(t, cfg.Reverse)
}

func TestNew_EnvVarOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
covers_dir: /data/from-file
format: json
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("BOOKSHELF_COVERS_DIR", "/data/from-env")

	cfg, err := New()
	require.NoError(t, err)
	// Env vars should override config file
	assert.Equal(t, "/data/from-env", cfg.CoversDir)
	assert.Equal(t, "json", cfg.Format)
}

func TestNew_InvalidValue(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("BOOKSHELF_FORMAT", "pdf")

	cfg, err := New()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "format")
	assert.Contains(t, err.Error(), "BOOKSHELF_FORMAT")
}

func TestNew_MalformedConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("covers_dir: [unterminated"), 0644))
	t.Setenv("CONFIG_FILE", configPath)

	_, err := New()
	assert.Error(t, err)
}

func TestNormalize_AfterOverrides(t *testing.T) {
	cfg := &Config{CoversDir: "  ", SortBy: "GENRE"}

	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "covers", cfg.CoversDir)
	assert.Equal(t, "genre", cfg.SortBy)

	cfg.SortBy = "publisher"
	assert.Error(t, cfg.Normalize())
}
