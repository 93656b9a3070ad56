// Package format implements the editor's heuristic reformatters.
//
// Neither formatter parses its input. Format tracks bracket depth line by
// line and FormatScripted tracks block keywords of the scripting language.
// Both are total: every input produces output and nothing is reported.
package format

import (
	"strings"
	"unicode"
)

// Format reformats text with the generic bracket-depth rules.
func Format(text string, opts Options) string {
	opts = opts.withDefaults()

	result := fixIndentation(text, opts.indentUnit())
	if opts.TrimTrailingWhitespace() {
		result = trimTrailingWhitespace(result)
	}
	result = normalizeSpacing(result)
	if opts.EnsureFinalNewline() && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

func fixIndentation(text, unit string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	level := 0
	for _, line := range lines {
		trimmed := trimLine(line)
		if trimmed == "" {
			out = append(out, "")
			continue
		}

		if startsWithCloser(trimmed) {
			level = max(0, level-1)
		}
		out = append(out, strings.Repeat(unit, level)+trimmed)

		opens, closes := countBrackets(trimmed)
		level = max(0, level+opens-closes)
	}
	return strings.Join(out, "\n")
}

// isTrimSpace reports white space as the editor trims it: Unicode spaces
// plus the byte order mark.
func isTrimSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimLine(s string) string {
	return strings.TrimFunc(s, isTrimSpace)
}

func startsWithCloser(s string) bool {
	switch s[0] {
	case '}', ']', ')':
		return true
	}
	return false
}

// countBrackets counts every bracket in s, including those inside strings
// and comments.
func countBrackets(s string) (opens, closes int) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[', '(':
			opens++
		case '}', ']', ')':
			closes++
		}
	}
	return opens, closes
}

func trimTrailingWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, isTrimSpace)
	}
	return strings.Join(lines, "\n")
}

// normalizeSpacing expands tabs to two spaces, then rewrites every run of
// two or more spaces as min(ceil(n/2)*2, n) spaces.
func normalizeSpacing(text string) string {
	text = strings.ReplaceAll(text, "\t", "  ")

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != ' ' {
			sb.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == ' ' {
			j++
		}
		sb.WriteString(strings.Repeat(" ", spaceRunLength(j-i)))
		i = j
	}
	return sb.String()
}

func spaceRunLength(n int) int {
	if n < 2 {
		return n
	}
	return min((n+1)/2*2, n)
}
