package format

import (
	"path/filepath"
	"strings"
)

// Language identifies how a file is formatted and highlighted.
type Language string

const (
	LanguagePlainText  Language = "plaintext"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguagePineScript Language = "pinescript"
	LanguageJSON       Language = "json"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageMarkdown   Language = "markdown"
)

var extensionLanguages = map[string]Language{
	"js":   LanguageJavaScript,
	"jsx":  LanguageJavaScript,
	"ts":   LanguageTypeScript,
	"tsx":  LanguageTypeScript,
	"py":   LanguagePython,
	"pine": LanguagePineScript,
	"json": LanguageJSON,
	"html": LanguageHTML,
	"css":  LanguageCSS,
	"md":   LanguageMarkdown,
	"txt":  LanguagePlainText,
}

// Extension returns the lower-cased text after the last dot of the base
// name of filename. A name without a dot is its own extension, so a file
// called "json" is JSON.
func Extension(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	return strings.ToLower(base)
}

// DetectLanguage maps a file name to a language by its extension.
// Unknown extensions are plain text.
func DetectLanguage(filename string) Language {
	ext := Extension(filename)
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return LanguagePlainText
}

// ParseLanguage resolves a language name or file extension, as sent by
// editors in languageId fields.
func ParseLanguage(name string) (Language, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if lang, ok := extensionLanguages[name]; ok {
		return lang, true
	}
	for _, lang := range extensionLanguages {
		if string(lang) == name {
			return lang, true
		}
	}
	return LanguagePlainText, false
}

// KnownExtension reports whether DetectLanguage recognizes the extension
// of filename.
func KnownExtension(filename string) bool {
	ext := Extension(filename)
	_, ok := extensionLanguages[ext]
	return ok
}

// Profile bundles the settings of both formatters so callers can format
// any file without caring which one applies.
type Profile struct {
	Options

	// CloseBlocksByIndent is forwarded to the keyword-aware formatter.
	CloseBlocksByIndent bool
}

// FormatFor picks the formatter for lang. PineScript goes through the
// keyword-aware formatter with the profile's indent width; everything else
// uses the generic formatter.
func FormatFor(lang Language, text string, p Profile) string {
	if lang == LanguagePineScript {
		return FormatScriptedWith(text, ScriptedOptions{
			IndentWidth:         p.IndentWidth,
			CloseBlocksByIndent: p.CloseBlocksByIndent,
		})
	}
	return Format(text, p.Options)
}
