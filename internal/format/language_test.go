package format

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := map[string]Language{
		"strategy.pine":    LanguagePineScript,
		"STRATEGY.PINE":    LanguagePineScript,
		"app.jsx":          LanguageJavaScript,
		"index.ts":         LanguageTypeScript,
		"view.tsx":         LanguageTypeScript,
		"main.py":          LanguagePython,
		"data.json":        LanguageJSON,
		"index.html":       LanguageHTML,
		"site.css":         LanguageCSS,
		"README.md":        LanguageMarkdown,
		"notes.txt":        LanguagePlainText,
		"Makefile":         LanguagePlainText,
		"archive.tar.gz":   LanguagePlainText,
		"dir.pine/file.go": LanguagePlainText,
		"json":             LanguageJSON,
		"src/py":           LanguagePython,
		"trailing.":        LanguagePlainText,
	}
	for name, want := range tests {
		if got := DetectLanguage(name); got != want {
			t.Fatalf("DetectLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	if lang, ok := ParseLanguage("PineScript"); !ok || lang != LanguagePineScript {
		t.Fatalf("expected pinescript by name, got %q ok=%v", lang, ok)
	}
	if lang, ok := ParseLanguage("pine"); !ok || lang != LanguagePineScript {
		t.Fatalf("expected pinescript by extension, got %q ok=%v", lang, ok)
	}
	if lang, ok := ParseLanguage("cobol"); ok || lang != LanguagePlainText {
		t.Fatalf("expected unknown language to fall back to plaintext, got %q ok=%v", lang, ok)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"a.PINE":            "pine",
		"archive.tar.gz":    "gz",
		"json":              "json",
		"/tmp/x.d/Makefile": "makefile",
		"trailing.":         "",
	}
	for name, want := range tests {
		if got := Extension(name); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestKnownExtension(t *testing.T) {
	if !KnownExtension("a.pine") || !KnownExtension("b.JS") {
		t.Fatalf("expected pine and js to be known")
	}
	if KnownExtension("c.go") || KnownExtension("Dockerfile") {
		t.Fatalf("expected go and extension-less files to be unknown")
	}
}

func TestFormatForDispatch(t *testing.T) {
	in := "if x\ny\n"

	if got, want := FormatFor(LanguagePineScript, in, Profile{Options: Options{IndentWidth: 4}}), "if x\n    y\n"; got != want {
		t.Fatalf("pinescript dispatch = %q, want %q", got, want)
	}
	if got, want := FormatFor(LanguageJavaScript, in, Profile{}), "if x\ny\n"; got != want {
		t.Fatalf("generic dispatch = %q, want %q", got, want)
	}
	if got, want := FormatFor(LanguagePineScript, "if x\n  y\nz", Profile{CloseBlocksByIndent: true}), "if x\n  y\nz"; got != want {
		t.Fatalf("pinescript dispatch with block closing = %q, want %q", got, want)
	}
}
