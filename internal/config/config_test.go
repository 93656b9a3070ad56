package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/padfmt/internal/format"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "absent.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "absent.toml")
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".padfmt.toml", `
tab_size = 4
insert_spaces = false
insert_final_newline = false
close_blocks_by_indent = true

[languages]
pinescript = "pinescript"
ps = "pine"
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.TabSize)
	assert.False(t, cfg.InsertSpaces)
	assert.True(t, cfg.TrimTrailingWhitespace, "unset keys keep defaults")
	assert.False(t, cfg.InsertFinalNewline)
	assert.True(t, cfg.CloseBlocksByIndent)
	assert.Equal(t, format.LanguagePineScript, cfg.Language("strategy.ps"))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "editor.yml", "tab_size: 3\nauto_format: false\nlanguages:\n  conf: json\n")

	cfg, err := Load(dir, p)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TabSize)
	assert.False(t, cfg.AutoFormat)
	assert.Equal(t, format.LanguageJSON, cfg.Language("app.conf"))
	assert.True(t, cfg.Handles("app.conf"))
	assert.False(t, cfg.Handles("app.ini"))
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, writeFile(t, dir, "bad.toml", "tab_size = 0\n"))
	require.ErrorContains(t, err, "tab_size must be between 1 and 16")

	_, err = Load(dir, writeFile(t, dir, "lang.yaml", "languages:\n  x: cobol\n"))
	require.ErrorContains(t, err, `unknown language "cobol"`)

	_, err = Load(dir, writeFile(t, dir, "broken.toml", "tab_size = \n"))
	require.ErrorContains(t, err, "parse toml config")

	_, err = Load(dir, writeFile(t, dir, "cfg.json", "{}"))
	require.ErrorContains(t, err, "unsupported config format")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvTabSize, "8")
	t.Setenv(EnvUseTabs, "true")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.TabSize)
	assert.False(t, cfg.InsertSpaces)
}

func TestProfile(t *testing.T) {
	cfg := Default()
	cfg.TabSize = 4
	cfg.InsertSpaces = false
	cfg.TrimTrailingWhitespace = false
	cfg.CloseBlocksByIndent = true

	p := cfg.Profile()
	assert.Equal(t, format.IndentTab, p.IndentUnit)
	assert.Equal(t, 4, p.IndentWidth)
	assert.True(t, p.KeepTrailingWhitespace)
	assert.False(t, p.SkipFinalNewline)
	assert.True(t, p.CloseBlocksByIndent)
}
