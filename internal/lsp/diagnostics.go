package lsp

import (
	"fmt"

	"github.com/r9s-ai/padfmt/internal/format"
)

const (
	severityWarning   = 2
	diagnosticsSource = "padfmt"
)

type bracket struct {
	ch   byte
	line int
	col  int
}

var closerFor = map[byte]byte{'{': '}', '[': ']', '(': ')'}

// collectDiagnostics reports brackets the formatter will count but that do
// not pair up. Unlike the formatter it skips strings and comments.
func collectDiagnostics(lang format.Language, text string) []Diagnostic {
	diags := []Diagnostic{}
	if lang == format.LanguagePlainText || lang == format.LanguageMarkdown {
		return diags
	}

	lineComment := "//"
	if lang == format.LanguagePython {
		lineComment = "#"
	}

	var (
		stack        []bracket
		quote        byte
		blockComment bool
		line, col    int
	)
	for i := 0; i < len(text); i, col = i+1, col+utf16Units(text[i]) {
		ch := text[i]
		if ch == '\n' {
			line++
			col = -1
			if quote != '`' {
				quote = 0
			}
			continue
		}
		switch {
		case blockComment:
			if ch == '*' && i+1 < len(text) && text[i+1] == '/' {
				blockComment = false
				i, col = i+1, col+utf16Units(text[i])
			}
			continue
		case quote != 0:
			if ch == '\\' && i+1 < len(text) && text[i+1] != '\n' {
				i, col = i+1, col+utf16Units(text[i])
			} else if ch == quote {
				quote = 0
			}
			continue
		}

		if hasPrefixAt(text, i, lineComment) {
			for i+1 < len(text) && text[i+1] != '\n' {
				i, col = i+1, col+utf16Units(text[i])
			}
			continue
		}
		if lang != format.LanguagePython && hasPrefixAt(text, i, "/*") {
			blockComment = true
			i, col = i+1, col+utf16Units(text[i])
			continue
		}

		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '{', '[', '(':
			stack = append(stack, bracket{ch: ch, line: line, col: col})
		case '}', ']', ')':
			if len(stack) == 0 {
				diags = append(diags, bracketDiagnostic(line, col, fmt.Sprintf("unmatched '%c'", ch)))
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerFor[open.ch] != ch {
				diags = append(diags, bracketDiagnostic(line, col, fmt.Sprintf(
					"mismatched '%c', expected '%c' to close '%c' from line %d",
					ch, closerFor[open.ch], open.ch, open.line+1)))
			}
		}
	}
	for _, open := range stack {
		diags = append(diags, bracketDiagnostic(open.line, open.col, fmt.Sprintf(
			"missing closing '%c' for '%c'", closerFor[open.ch], open.ch)))
	}
	return diags
}

func bracketDiagnostic(line, col int, msg string) Diagnostic {
	return Diagnostic{
		Range: Range{
			Start: Position{Line: line, Character: col},
			End:   Position{Line: line, Character: col + 1},
		},
		Severity: severityWarning,
		Source:   diagnosticsSource,
		Message:  msg,
	}
}

// utf16Units is the number of UTF-16 code units that the UTF-8 byte b
// contributes to a column: zero for continuation bytes, two for the lead
// byte of a four byte sequence.
func utf16Units(b byte) int {
	switch {
	case b&0xC0 == 0x80:
		return 0
	case b >= 0xF0:
		return 2
	}
	return 1
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return i+len(prefix) <= len(s) && s[i:i+len(prefix)] == prefix
}
