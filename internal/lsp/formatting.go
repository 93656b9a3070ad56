package lsp

import (
	"encoding/json"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/r9s-ai/padfmt/internal/format"
)

type formattingOptions struct {
	TabSize                int   `json:"tabSize"`
	InsertSpaces           bool  `json:"insertSpaces"`
	TrimTrailingWhitespace *bool `json:"trimTrailingWhitespace,omitempty"`
	InsertFinalNewline     *bool `json:"insertFinalNewline,omitempty"`
}

type documentFormattingParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Options      formattingOptions      `json:"options"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

func (s *Server) handleFormatting(id *json.RawMessage, params json.RawMessage) error {
	var p documentFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, -32602, "invalid params for formatting")
	}
	doc, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return s.reply(id, []TextEdit{})
	}

	lang := s.languageOf(p.TextDocument.URI, doc)
	formatted := format.FormatFor(lang, doc.text, s.profileFor(p.Options))
	if formatted == doc.text {
		return s.reply(id, []TextEdit{})
	}
	s.logger.Debug("formatted document",
		zap.String("uri", p.TextDocument.URI),
		zap.String("language", string(lang)))

	return s.reply(id, []TextEdit{{
		Range:   Range{Start: Position{}, End: endPosition(doc.text)},
		NewText: formatted,
	}})
}

// profileFor layers the client's per-request options over the server
// settings.
func (s *Server) profileFor(opts formattingOptions) format.Profile {
	p := s.settings.Profile()
	if opts.TabSize > 0 {
		p.IndentWidth = opts.TabSize
		p.IndentUnit = format.IndentTab
		if opts.InsertSpaces {
			p.IndentUnit = format.IndentSpaces
		}
	}
	if opts.TrimTrailingWhitespace != nil {
		p.KeepTrailingWhitespace = !*opts.TrimTrailingWhitespace
	}
	if opts.InsertFinalNewline != nil {
		p.SkipFinalNewline = !*opts.InsertFinalNewline
	}
	return p
}

// endPosition returns the position after the last character of text.
// Characters are counted in UTF-16 code units.
func endPosition(text string) Position {
	line := 0
	col := 0
	for _, r := range text {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16.RuneLen(r)
	}
	return Position{Line: line, Character: col}
}
