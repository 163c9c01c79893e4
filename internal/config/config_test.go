package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bethropolis/scatter/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFromFileMissingFileIsNotAnError(t *testing.T) {
	cfg, err := loadFromFile(filepath.Join(t.TempDir(), "missing.toml"), false)
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromFileParsesRecognizedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[editor_open]
command = "nvim %file:%line"
exit_after_open = true

[preview]
theme = "scatter dark"
wrap_text = true
`)

	cfg, err := loadFromFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, "nvim %file:%line", cfg.EditorOpen.Command)
	assert.True(t, cfg.EditorOpen.ExitAfterOpen)
	assert.Equal(t, "scatter dark", cfg.Preview.Theme)
	assert.True(t, cfg.Preview.WrapText)
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[editor_open]
comand = "typo"
`)

	_, err := loadFromFile(path, false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized keys")
}

func TestLoadFromFileRejectsUnparsableToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "this is not [ valid toml")

	_, err := loadFromFile(path, false)
	assert.Error(t, err)
}

func TestValidateFillsInMissingDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.validate()

	defaults := NewDefaultConfig()
	assert.Equal(t, defaults.Logger.LogLevel, cfg.Logger.LogLevel)
	assert.Equal(t, defaults.EditorOpen.Command, cfg.EditorOpen.Command)
	assert.Equal(t, defaults.Preview.Theme, cfg.Preview.Theme)
	assert.NotNil(t, cfg.Keys)
}

func TestValidatePreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logger:     logger.Config{LogLevel: "debug"},
		EditorOpen: EditorOpenConfig{Command: "custom %file", ExitAfterOpen: true},
		Preview:    PreviewConfig{Theme: "custom theme"},
	}
	cfg.validate()

	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, "custom %file", cfg.EditorOpen.Command)
	assert.Equal(t, "custom theme", cfg.Preview.Theme)
}

func TestNewDefaultConfigHasEmptyKeysMap(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NotNil(t, cfg.Keys)
	assert.Empty(t, cfg.Keys)
}
