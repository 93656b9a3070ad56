package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordRegexMatchesWholeWords(t *testing.T) {
	re := regexp.MustCompile(wordRegex([]string{"if", "for"}))
	assert.True(t, re.MatchString("if x"))
	assert.True(t, re.MatchString("  for i = 0 to 9"))
	assert.False(t, re.MatchString("format(x)"))
	assert.False(t, re.MatchString("iffy"))

	assert.Equal(t, `\b\B`, wordRegex(nil))
}

func TestBuildGrammarCoversBlockKeywords(t *testing.T) {
	g := buildGrammar()
	assert.Equal(t, "source.pinescript", g.ScopeName)

	entry, ok := g.Repo["block-keywords"].(tmRepositoryEntry)
	require.True(t, ok)
	require.Len(t, entry.Patterns, 1)
	re := regexp.MustCompile(entry.Patterns[0].Match)
	for _, word := range []string{"if", "else", "for", "while", "switch", "method", "type"} {
		assert.True(t, re.MatchString(word), word)
	}

	arrow, ok := g.Repo["arrow"].(tmRepositoryEntry)
	require.True(t, ok)
	assert.Equal(t, "=>", arrow.Patterns[0].Match)
}

func TestRootCmdWritesGrammar(t *testing.T) {
	out := filepath.Join(t.TempDir(), "syntaxes", "pine.json")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--output", out})
	require.NoError(t, cmd.Execute())

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "PineScript", decoded["name"])
	assert.Contains(t, decoded["repository"], "block-keywords")
}
