package format

import "strings"

// ArrowToken introduces an inline function or callback body.
const ArrowToken = "=>"

var blockKeywords = []string{"if", "else", "for", "while", "switch", "method", "type"}

// dedentKeyword renders one level shallower than the block it continues.
const dedentKeyword = "else"

// BlockKeywords returns the keywords that open an indented body.
func BlockKeywords() []string {
	return append([]string(nil), blockKeywords...)
}

// ScriptedOptions controls FormatScriptedWith.
type ScriptedOptions struct {
	IndentWidth int

	// CloseBlocksByIndent closes a keyword or arrow block once a line's
	// source indentation drops back to the column of the line that opened
	// it. Without it the running level only ever grows.
	CloseBlocksByIndent bool
}

// FormatScripted reformats PineScript-style source. Indentation is always
// indentWidth spaces per level; no whitespace or newline passes are run.
func FormatScripted(text string, indentWidth int) string {
	return FormatScriptedWith(text, ScriptedOptions{IndentWidth: indentWidth})
}

// FormatScriptedWith is FormatScripted with the opt-in block closing rule.
func FormatScriptedWith(text string, opts ScriptedOptions) string {
	width := opts.IndentWidth
	if width <= 0 {
		width = DefaultIndentWidth
	}
	unit := strings.Repeat(" ", width)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var blocks blockTracker
	level := 0
	for _, line := range lines {
		trimmed := trimLine(line)
		if trimmed == "" {
			out = append(out, "")
			continue
		}

		display := level
		if opts.CloseBlocksByIndent {
			src := sourceIndent(line, width)
			blocks.closeTo(src)
			level = blocks.depth()
			display = level
			blocks.column = src
		} else if strings.HasPrefix(trimmed, dedentKeyword) {
			display = max(0, level-1)
		}
		out = append(out, strings.Repeat(unit, display)+trimmed)

		for range blockOpens(trimmed) {
			if opts.CloseBlocksByIndent {
				blocks.open()
			}
			level++
		}
	}
	return strings.Join(out, "\n")
}

// blockOpens returns how many levels a line adds: one for a leading block
// keyword on a line without an arrow, one more for an arrow that starts a
// multi-line body.
func blockOpens(trimmed string) int {
	n := 0
	hasArrow := strings.Contains(trimmed, ArrowToken)
	if !hasArrow && startsWithBlockKeyword(trimmed) {
		n++
	}
	if strings.HasSuffix(trimmed, ArrowToken) || (hasArrow && !strings.HasSuffix(trimmed, ")")) {
		n++
	}
	return n
}

// startsWithBlockKeyword is a plain prefix test; "iffy" counts as "if".
func startsWithBlockKeyword(trimmed string) bool {
	for _, kw := range blockKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	return false
}

// sourceIndent measures the leading whitespace of line in columns, counting
// a tab as one indent step.
func sourceIndent(line string, width int) int {
	col := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += width
		default:
			return col
		}
	}
	return col
}

// blockTracker remembers the source column of every open block.
type blockTracker struct {
	columns []int
	column  int
}

func (b *blockTracker) open() { b.columns = append(b.columns, b.column) }

func (b *blockTracker) closeTo(col int) {
	for len(b.columns) > 0 && b.columns[len(b.columns)-1] >= col {
		b.columns = b.columns[:len(b.columns)-1]
	}
}

func (b *blockTracker) depth() int { return len(b.columns) }
