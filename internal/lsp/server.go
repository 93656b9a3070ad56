package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/r9s-ai/padfmt/internal/config"
	"github.com/r9s-ai/padfmt/internal/format"
)

// ServerVersion is reported in the initialize response.
var ServerVersion = "0.1.0"

type Server struct {
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger

	docs         map[string]document
	settings     *config.Settings
	shuttingDown bool
}

type document struct {
	text       string
	languageID string
}

// NewServer creates a server using default editor settings.
func NewServer(in io.Reader, out io.Writer, logger *zap.Logger) *Server {
	return NewServerWithSettings(in, out, logger, config.Default())
}

// NewServerWithSettings creates a server whose formatting defaults come from
// settings. Client-supplied formatting options still take precedence.
func NewServerWithSettings(in io.Reader, out io.Writer, logger *zap.Logger, settings *config.Settings) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings == nil {
		settings = config.Default()
	}
	return &Server{
		in:       bufio.NewReader(in),
		out:      out,
		logger:   logger,
		docs:     map[string]document{},
		settings: settings,
	}
}

type inboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type responseMessage struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *respError  `json:"error,omitempty"`
}

type respError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverCapabilities struct {
	TextDocumentSync           int  `json:"textDocumentSync"`
	HoverProvider              bool `json:"hoverProvider"`
	DocumentFormattingProvider bool `json:"documentFormattingProvider"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId,omitempty"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type versionedTextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type hoverParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

func (s *Server) Run() error {
	for {
		raw, err := readMessage(s.in)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("invalid JSON-RPC payload", zap.Error(err))
			continue
		}

		if msg.Method == "" {
			continue
		}
		if err := s.handle(msg); err != nil {
			if err == io.EOF {
				return nil
			}
			s.logger.Error("handle method", zap.String("method", msg.Method), zap.Error(err))
		}
	}
}

func (s *Server) handle(msg inboundMessage) error {
	s.logger.Debug("request", zap.String("method", msg.Method))
	if s.shuttingDown && msg.Method != "exit" {
		if msg.ID != nil {
			return s.replyError(msg.ID, -32600, "server is shutting down")
		}
		return nil
	}
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg.ID)
	case "initialized":
		return nil
	case "shutdown":
		s.shuttingDown = true
		return s.reply(msg.ID, map[string]any{})
	case "exit":
		return io.EOF
	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.docs[p.TextDocument.URI] = document{
			text:       p.TextDocument.Text,
			languageID: p.TextDocument.LanguageID,
		}
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		doc := s.docs[p.TextDocument.URI]
		doc.text = p.ContentChanges[len(p.ContentChanges)-1].Text
		s.docs[p.TextDocument.URI] = doc
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		delete(s.docs, p.TextDocument.URI)
		return s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
			URI:         p.TextDocument.URI,
			Diagnostics: []Diagnostic{},
		})
	case "textDocument/formatting":
		return s.handleFormatting(msg.ID, msg.Params)
	case "textDocument/hover":
		return s.handleHover(msg.ID, msg.Params)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg.Params)
	default:
		if msg.ID != nil {
			return s.reply(msg.ID, nil)
		}
		return nil
	}
}

func (s *Server) handleInitialize(id *json.RawMessage) error {
	res := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync:           1,
			HoverProvider:              true,
			DocumentFormattingProvider: true,
		},
		ServerInfo: serverInfo{
			Name:    "padfmt",
			Version: ServerVersion,
		},
	}
	return s.reply(id, res)
}

func (s *Server) handleHover(id *json.RawMessage, params json.RawMessage) error {
	var p hoverParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, -32602, "invalid params for hover")
	}
	doc, ok := s.docs[p.TextDocument.URI]
	if !ok || s.languageOf(p.TextDocument.URI, doc) != format.LanguagePineScript {
		return s.reply(id, nil)
	}
	word, rng := wordAt(doc.text, p.Position)
	if word == "" {
		return s.reply(id, nil)
	}

	text, ok := hoverDocs[word]
	if !ok {
		return s.reply(id, nil)
	}
	h := Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: text,
		},
		Range: &rng,
	}
	return s.reply(id, h)
}

func (s *Server) publishDiagnostics(uri string) error {
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	params := publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: collectDiagnostics(s.languageOf(uri, doc), doc.text),
	}
	return s.notify("textDocument/publishDiagnostics", params)
}

// languageOf prefers the client's languageId and falls back to the URI
// extension, with configured overrides applied.
func (s *Server) languageOf(uri string, doc document) format.Language {
	if lang, ok := format.ParseLanguage(doc.languageID); ok {
		return lang
	}
	return s.settings.Language(uri)
}

func (s *Server) reply(id *json.RawMessage, result interface{}) error {
	if id == nil {
		return nil
	}
	var idVal interface{}
	if err := json.Unmarshal(*id, &idVal); err != nil {
		idVal = string(*id)
	}
	resp := responseMessage{
		JSONRPC: "2.0",
		ID:      idVal,
		Result:  result,
	}
	return writeMessage(s.out, resp)
}

func (s *Server) replyError(id *json.RawMessage, code int, msg string) error {
	if id == nil {
		return nil
	}
	var idVal interface{}
	if err := json.Unmarshal(*id, &idVal); err != nil {
		idVal = string(*id)
	}
	resp := responseMessage{
		JSONRPC: "2.0",
		ID:      idVal,
		Error: &respError{
			Code:    code,
			Message: msg,
		},
	}
	return writeMessage(s.out, resp)
}

func (s *Server) notify(method string, params interface{}) error {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return writeMessage(s.out, payload)
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			v := strings.TrimSpace(line[len("content-length:"):])
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length %q: %w", v, err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeMessage(w io.Writer, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(body))
	return err
}

var hoverDocs = map[string]string{
	"if":     "`if <condition>`\n\nOpens an indented block.",
	"else":   "`else`\n\nAlternative branch of the preceding `if`. Rendered one level shallower than its body.",
	"for":    "`for i = <from> to <to>`\n\nLoop. Opens an indented block.",
	"while":  "`while <condition>`\n\nLoop. Opens an indented block.",
	"switch": "`switch [<expression>]`\n\nMulti-way branch. Opens an indented block.",
	"method": "`method name(params) =>`\n\nUser-defined method. The body follows `=>`.",
	"type":   "`type Name`\n\nUser-defined type. Fields follow in an indented block.",
	"=>":     "`=>`\n\nStarts a function or method body. A line ending in `=>` opens an indented block.",
}

func wordAt(text string, pos Position) (string, Range) {
	line := lineAt(text, pos.Line)
	if line == "" {
		return "", Range{}
	}
	ch := pos.Character
	if ch < 0 {
		ch = 0
	}
	if ch > len(line) {
		ch = len(line)
	}
	class := isWordChar
	if arrowAt(line, ch) {
		class = isArrowChar
	}
	left := ch
	for left > 0 && class(line[left-1]) {
		left--
	}
	right := ch
	for right < len(line) && class(line[right]) {
		right++
	}
	if left == right {
		return "", Range{}
	}
	return line[left:right], Range{
		Start: Position{Line: pos.Line, Character: left},
		End:   Position{Line: pos.Line, Character: right},
	}
}

func arrowAt(line string, ch int) bool {
	for _, start := range []int{ch - 1, ch} {
		if start >= 0 && start+len(format.ArrowToken) <= len(line) && line[start:start+len(format.ArrowToken)] == format.ArrowToken {
			return true
		}
	}
	return false
}

func isArrowChar(b byte) bool { return b == '=' || b == '>' }

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '.'
}

func lineAt(text string, line int) string {
	if line < 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		return ""
	}
	return lines[line]
}
