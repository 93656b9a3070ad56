// Command padfmt-tmgen writes the TextMate grammar used by editors to
// highlight PineScript files.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/padfmt/internal/format"
)

type tmLanguage struct {
	Schema    string              `json:"$schema"`
	Name      string              `json:"name"`
	ScopeName string              `json:"scopeName"`
	FileTypes []string            `json:"fileTypes"`
	Patterns  []map[string]string `json:"patterns"`
	Repo      map[string]any      `json:"repository"`
}

type tmPattern struct {
	Name  string `json:"name,omitempty"`
	Match string `json:"match,omitempty"`
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`

	Patterns []tmPattern `json:"patterns,omitempty"`
}

type tmRepositoryEntry struct {
	Patterns []tmPattern `json:"patterns"`
}

// Words that never open a block but are still highlighted as control flow.
var controlWords = []string{"and", "or", "not", "to", "by", "in", "var", "varip", "import", "export", "return", "break", "continue"}

var constants = []string{"true", "false", "na"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "padfmt-tmgen: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:           "padfmt-tmgen",
		Short:         "Generate the PineScript TextMate grammar",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := encodeGrammar(buildGrammar())
			if err != nil {
				return err
			}
			return writeGrammar(output, b)
		},
	}
	cmd.Flags().StringVar(&output, "output", "vscode/syntaxes/pinescript.tmLanguage.json", "output grammar file path")
	return cmd
}

func buildGrammar() tmLanguage {
	blockWords := format.BlockKeywords()
	sort.Strings(blockWords)
	others := append([]string(nil), controlWords...)
	sort.Strings(others)

	return tmLanguage{
		Schema:    "https://raw.githubusercontent.com/martinring/tmlanguage/master/tmlanguage.json",
		Name:      "PineScript",
		ScopeName: "source.pinescript",
		FileTypes: []string{"pine"},
		Patterns: []map[string]string{
			{"include": "#comments"},
			{"include": "#block-keywords"},
			{"include": "#keywords"},
			{"include": "#constants"},
			{"include": "#numbers"},
			{"include": "#strings"},
			{"include": "#arrow"},
			{"include": "#operators"},
		},
		Repo: map[string]any{
			"comments": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "comment.line.double-slash.pinescript", Match: "//.*$"},
			}},
			"block-keywords": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.control.block.pinescript", Match: wordRegex(blockWords)},
			}},
			"keywords": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.control.pinescript", Match: wordRegex(others)},
			}},
			"constants": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "constant.language.pinescript", Match: wordRegex(constants)},
			}},
			"numbers": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "constant.numeric.pinescript", Match: `\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`},
			}},
			"strings": tmRepositoryEntry{Patterns: []tmPattern{
				quotedString("double", `"`),
				quotedString("single", `'`),
			}},
			"arrow": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.operator.arrow.pinescript", Match: regexp.QuoteMeta(format.ArrowToken)},
			}},
			"operators": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.operator.pinescript", Match: `:=|==|!=|<=|>=|[-+*/%<>=?:]`},
			}},
		},
	}
}

func quotedString(kind, quote string) tmPattern {
	return tmPattern{
		Name:  "string.quoted." + kind + ".pinescript",
		Begin: quote,
		End:   quote,
		Patterns: []tmPattern{
			{Name: "constant.character.escape.pinescript", Match: `\\.`},
		},
	}
}

func wordRegex(words []string) string {
	if len(words) == 0 {
		return `\b\B`
	}
	escaped := make([]string, 0, len(words))
	for _, w := range words {
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	return `\b(?:` + strings.Join(escaped, "|") + `)\b`
}

func encodeGrammar(g tmLanguage) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return nil, fmt.Errorf("marshal grammar: %w", err)
	}
	return []byte(sb.String()), nil
}

func writeGrammar(outPath string, b []byte) error {
	if !filepath.IsAbs(outPath) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getwd: %w", err)
		}
		outPath = filepath.Join(wd, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return fmt.Errorf("write grammar: %w", err)
	}
	return nil
}
