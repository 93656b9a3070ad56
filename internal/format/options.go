package format

import "strings"

// IndentUnit selects the character used for one indentation step.
type IndentUnit string

const (
	IndentSpaces IndentUnit = "spaces"
	IndentTab    IndentUnit = "tab"
)

// DefaultIndentWidth is used whenever a non-positive width is supplied.
const DefaultIndentWidth = 2

// Options controls the generic formatter. The zero value is the default
// configuration: two spaces per level, trailing whitespace trimmed and a
// final newline ensured.
type Options struct {
	IndentUnit  IndentUnit
	IndentWidth int

	// KeepTrailingWhitespace disables the trailing-whitespace pass.
	KeepTrailingWhitespace bool
	// SkipFinalNewline disables the final-newline pass.
	SkipFinalNewline bool
}

// DefaultOptions returns the options used when a caller supplies none.
func DefaultOptions() Options {
	return Options{IndentUnit: IndentSpaces, IndentWidth: DefaultIndentWidth}
}

// TrimTrailingWhitespace reports whether trailing whitespace is stripped.
func (o Options) TrimTrailingWhitespace() bool { return !o.KeepTrailingWhitespace }

// EnsureFinalNewline reports whether a missing final newline is appended.
func (o Options) EnsureFinalNewline() bool { return !o.SkipFinalNewline }

func (o Options) withDefaults() Options {
	if o.IndentUnit != IndentTab {
		o.IndentUnit = IndentSpaces
	}
	if o.IndentWidth <= 0 {
		o.IndentWidth = DefaultIndentWidth
	}
	return o
}

func (o Options) indentUnit() string {
	if o.IndentUnit == IndentTab {
		return "\t"
	}
	return strings.Repeat(" ", o.IndentWidth)
}
