// Package config loads editor formatting settings.
//
// Settings are read from a TOML or YAML file chosen by extension. A missing
// file yields the defaults; environment variables override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/padfmt/internal/format"
)

// DefaultFileNames are searched, in order, when no explicit path is given.
var DefaultFileNames = []string{".padfmt.toml", ".padfmt.yaml", ".padfmt.yml"}

const (
	EnvTabSize = "PADFMT_TAB_SIZE"
	EnvUseTabs = "PADFMT_USE_TABS"
)

// Settings mirrors the editor's formatting preferences.
type Settings struct {
	TabSize                int  `toml:"tab_size" yaml:"tab_size"`
	InsertSpaces           bool `toml:"insert_spaces" yaml:"insert_spaces"`
	TrimTrailingWhitespace bool `toml:"trim_trailing_whitespace" yaml:"trim_trailing_whitespace"`
	InsertFinalNewline     bool `toml:"insert_final_newline" yaml:"insert_final_newline"`

	// AutoFormat enables format-on-save in the watcher.
	AutoFormat bool `toml:"auto_format" yaml:"auto_format"`

	// CloseBlocksByIndent enables block closing in the PineScript formatter.
	CloseBlocksByIndent bool `toml:"close_blocks_by_indent" yaml:"close_blocks_by_indent"`

	// Languages maps file extensions (without the dot) to language names,
	// overriding the built-in detection.
	Languages map[string]string `toml:"languages" yaml:"languages"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		TabSize:                2,
		InsertSpaces:           true,
		TrimTrailingWhitespace: true,
		InsertFinalNewline:     true,
		AutoFormat:             true,
	}
}

// Load reads settings from path. An empty path searches DefaultFileNames
// in dir and falls back to the defaults when none exists; an explicit path
// must exist.
func Load(dir, path string) (*Settings, error) {
	cfg := Default()

	if path == "" {
		path = findDefault(dir)
		if path == "" {
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func findDefault(dir string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func decode(path string, data []byte, cfg *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse toml config %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config %q: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func (s *Settings) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvTabSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.TabSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvUseTabs)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.InsertSpaces = !b
		}
	}
}

// Validate rejects settings the formatter cannot honour.
func (s *Settings) Validate() error {
	if s.TabSize < 1 || s.TabSize > 16 {
		return fmt.Errorf("tab_size must be between 1 and 16, got %d", s.TabSize)
	}
	for ext, name := range s.Languages {
		if _, ok := format.ParseLanguage(name); !ok {
			return fmt.Errorf("languages.%s: unknown language %q", ext, name)
		}
	}
	return nil
}

// Profile converts the settings into formatter options.
func (s *Settings) Profile() format.Profile {
	unit := format.IndentSpaces
	if !s.InsertSpaces {
		unit = format.IndentTab
	}
	return format.Profile{
		Options: format.Options{
			IndentUnit:             unit,
			IndentWidth:            s.TabSize,
			KeepTrailingWhitespace: !s.TrimTrailingWhitespace,
			SkipFinalNewline:       !s.InsertFinalNewline,
		},
		CloseBlocksByIndent: s.CloseBlocksByIndent,
	}
}

// Language resolves the language of path, honouring overrides.
func (s *Settings) Language(path string) format.Language {
	ext := format.Extension(path)
	if name, ok := s.Languages[ext]; ok {
		if lang, ok := format.ParseLanguage(name); ok {
			return lang
		}
	}
	return format.DetectLanguage(path)
}

// Handles reports whether path has a recognized or overridden extension.
func (s *Settings) Handles(path string) bool {
	ext := format.Extension(path)
	if _, ok := s.Languages[ext]; ok {
		return true
	}
	return format.KnownExtension(path)
}
