package lsp

import (
	"encoding/json"

	"go.uber.org/zap"
)

type didChangeConfigurationParams struct {
	Settings json.RawMessage `json:"settings"`
}

type lspSettings struct {
	Padfmt struct {
		TabSize                *int  `json:"tabSize"`
		InsertSpaces           *bool `json:"insertSpaces"`
		TrimTrailingWhitespace *bool `json:"trimTrailingWhitespace"`
		InsertFinalNewline     *bool `json:"insertFinalNewline"`
		CloseBlocksByIndent    *bool `json:"closeBlocksByIndent"`
	} `json:"padfmt"`
}

func (s *Server) handleDidChangeConfiguration(params json.RawMessage) error {
	if len(params) == 0 {
		return nil
	}
	var p didChangeConfigurationParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("ignoring malformed configuration", zap.Error(err))
		return nil
	}
	s.applySettings(p.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("ignoring malformed padfmt settings", zap.Error(err))
		return
	}
	next := *s.settings
	cfg := settings.Padfmt
	if cfg.TabSize != nil {
		next.TabSize = *cfg.TabSize
	}
	if cfg.InsertSpaces != nil {
		next.InsertSpaces = *cfg.InsertSpaces
	}
	if cfg.TrimTrailingWhitespace != nil {
		next.TrimTrailingWhitespace = *cfg.TrimTrailingWhitespace
	}
	if cfg.InsertFinalNewline != nil {
		next.InsertFinalNewline = *cfg.InsertFinalNewline
	}
	if cfg.CloseBlocksByIndent != nil {
		next.CloseBlocksByIndent = *cfg.CloseBlocksByIndent
	}
	if err := next.Validate(); err != nil {
		s.logger.Warn("rejecting padfmt settings", zap.Error(err))
		return
	}
	s.settings = &next
}
