package lsp

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/goccy/go-json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lionweb-community/lionweb-dev-tools/internal/builder"
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
	"github.com/lionweb-community/lionweb-dev-tools/internal/logger"
	"github.com/lionweb-community/lionweb-dev-tools/internal/lsp/cache"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/visualizer"
)

const serverName = "lwdt"

type Server struct {
	session   *cache.Session
	languages []*chunk.Chunk
	options   validator.Options
	version   string
	meta      *language.Registry
	visual    *visualizer.Visualizer

	conn jsonrpc2.Conn
}

// NewServer creates a server that checks models against the given language
// chunks and any language chunk opened in the editor.
func NewServer(languages []*chunk.Chunk, opts validator.Options, version string) *Server {
	return &Server{
		session:   cache.NewSession(serverName),
		languages: languages,
		options:   opts,
		version:   version,
		meta:      language.MetaRegistry(),
	}
}

// SetVisualizer makes the server keep v in sync with the open languages and
// focus it on the language of the hovered node.
func (s *Server) SetVisualizer(v *visualizer.Visualizer) {
	s.visual = v
}

type stdioReadWriteCloser struct {
	read  io.ReadCloser
	write io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.read.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.write.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	rerr := s.read.Close()
	werr := s.write.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// Run serves JSON-RPC on the given streams until the client exits or the
// connection drops.
func (s *Server) Run(ctx context.Context, in io.ReadCloser, out io.WriteCloser) error {
	stream := jsonrpc2.NewStream(&stdioReadWriteCloser{read: in, write: out})
	s.conn = jsonrpc2.NewConn(stream)
	s.conn.Go(ctx, s.Handle)
	<-s.conn.Done()
	return s.conn.Err()
}

// Handle dispatches one request or notification.
func (s *Server) Handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodInitialize:
		var params protocol.InitializeParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, s.initialize(&params), nil)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		err := reply(ctx, nil, nil)
		if s.conn != nil {
			s.conn.Close()
		}
		return err
	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		s.update(ctx, string(params.TextDocument.URI), params.TextDocument.Text)
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		// Full sync: the last change holds the whole text.
		if n := len(params.ContentChanges); n > 0 {
			s.update(ctx, string(params.TextDocument.URI), params.ContentChanges[n-1].Text)
		}
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentDidSave:
		var params protocol.DidSaveTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		if params.Text != "" {
			s.update(ctx, string(params.TextDocument.URI), params.Text)
		}
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		s.close(ctx, string(params.TextDocument.URI))
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentHover:
		var params protocol.HoverParams
		if err := unmarshal(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		return reply(ctx, s.Hover(string(params.TextDocument.URI), params.Position), nil)
	}
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

func unmarshal(req jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%w: %s", jsonrpc2.ErrInvalidParams, err)
	}
	return nil
}

func (s *Server) initialize(params *protocol.InitializeParams) *protocol.InitializeResult {
	root := params.RootPath
	if params.RootURI != "" {
		root = uriToPath(string(params.RootURI))
	}
	v := s.session.CreateView("default", root, s.languages)
	if s.visual != nil {
		s.visual.SetRegistry(v.Snapshot().Registry())
	}
	logger.Printf("initialized view at %q", root)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			HoverProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: s.version,
		},
	}
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *Server) view(uri string) *cache.View {
	if v := s.session.ViewOf(uri); v != nil {
		return v
	}
	return s.session.CreateView("default", "/", s.languages)
}

func (s *Server) update(ctx context.Context, uri, text string) {
	snap := s.view(uri).Update(func(snap *cache.Snapshot) {
		snap.SetDocument(uri, text)
	})
	if s.visual != nil {
		s.visual.SetRegistry(snap.Registry())
	}
	// A changed language chunk changes the diagnostics of every open model.
	for other := range snap.Documents() {
		s.publish(ctx, snap, other)
	}
}

func (s *Server) close(ctx context.Context, uri string) {
	snap := s.view(uri).Update(func(snap *cache.Snapshot) {
		snap.RemoveDocument(uri)
	})
	if s.visual != nil {
		s.visual.SetRegistry(snap.Registry())
	}
	s.notify(ctx, uri, []protocol.Diagnostic{})
	for other := range snap.Documents() {
		s.publish(ctx, snap, other)
	}
}

func (s *Server) publish(ctx context.Context, snap *cache.Snapshot, uri string) {
	s.notify(ctx, uri, s.Diagnostics(snap, uri))
}

func (s *Server) notify(ctx context.Context, uri string, diagnostics []protocol.Diagnostic) {
	if s.conn == nil {
		return
	}
	err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: diagnostics,
	})
	if err != nil {
		logger.Printf("publishing diagnostics for %s: %v", uri, err)
	}
}

// Diagnostics validates one open document. Language chunks are checked
// against LionCore M3, models against the languages of the snapshot.
func (s *Server) Diagnostics(snap *cache.Snapshot, uri string) []protocol.Diagnostic {
	text := snap.Documents()[uri]
	doc, err := snap.Document(uri)
	if err != nil {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityError,
			Source:   serverName,
			Message:  err.Error(),
		}}
	}
	if doc == nil {
		return []protocol.Diagnostic{}
	}

	opts := s.options
	var def language.Definition
	if doc.Kind == chunk.KindChunk && builder.IsLanguageChunk(doc.Chunk) {
		opts.References.External = s.meta.KnownID
		def = s.meta
	} else {
		reg := snap.Registry()
		opts.References.External = reg.KnownID
		def = reg
	}
	res := validator.ValidateAll(doc, def, opts)

	diagnostics := make([]protocol.Diagnostic, 0, len(res.Issues))
	for _, i := range res.Issues {
		severity := protocol.DiagnosticSeverityError
		if i.Severity == validator.LevelWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    rangeOfNode(text, i.Path.NodeID()),
			Severity: severity,
			Code:     i.Code,
			Source:   serverName,
			Message:  i.Path.String() + ": " + i.Message,
		})
	}
	return diagnostics
}

// Hover describes the node whose object encloses the position.
func (s *Server) Hover(uri string, pos protocol.Position) *protocol.Hover {
	v := s.session.ViewOf(uri)
	if v == nil {
		return nil
	}
	snap := v.Snapshot()
	doc, _ := snap.Document(uri)
	if doc == nil || doc.Kind != chunk.KindChunk {
		return nil
	}
	id := nodeAt(snap.Documents()[uri], pos)
	if id == "" {
		return nil
	}
	n := chunk.FindNode(doc.Chunk, id)
	if n == nil {
		return nil
	}
	if s.visual != nil {
		s.visual.SetFocus(n.Concept.Language)
	}
	r := rangeOfNode(snap.Documents()[uri], id)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: formatNodeInfo(n, snap.Registry()),
		},
		Range: &r,
	}
}

func formatNodeInfo(n *chunk.Node, reg *language.Registry) string {
	info := fmt.Sprintf("**Node**: `%s`\n\n**Concept**: `%s` (%s@%s)", n.ID, n.Concept.Key, n.Concept.Language, n.Concept.Version)
	if c := reg.ResolveClassifier(n.Concept); c != nil {
		info += fmt.Sprintf("\n\n**%s**: `%s`", c.Kind, c.Name)
		if c.Abstract {
			info += " (abstract)"
		}
	} else {
		info += "\n\n*concept not found in the loaded languages*"
	}
	if n.Parent != nil {
		info += fmt.Sprintf("\n\n**Parent**: `%s`", *n.Parent)
	}
	for _, p := range n.Properties {
		value := "null"
		if p.Value != nil {
			value = fmt.Sprintf("%q", *p.Value)
		}
		info += fmt.Sprintf("\n- `%s` = %s", p.Property.Key, value)
	}
	for _, c := range n.Containments {
		info += fmt.Sprintf("\n- `%s`: %d children", c.Containment.Key, len(c.Children))
	}
	for _, r := range n.References {
		info += fmt.Sprintf("\n- `%s` -> %d targets", r.Reference.Key, len(r.Targets))
	}
	return info
}

var idPattern = regexp.MustCompile(`"id"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// rangeOfNode returns the range of the "id" entry of the node, or the start
// of the document when the node cannot be found.
func rangeOfNode(text, id string) protocol.Range {
	if id == "" {
		return protocol.Range{}
	}
	for _, m := range idPattern.FindAllStringSubmatchIndex(text, -1) {
		if unquote(text[m[2]:m[3]]) == id {
			return protocol.Range{Start: position(text, m[0]), End: position(text, m[1])}
		}
	}
	return protocol.Range{}
}

// nodeAt returns the id of the last node whose "id" entry starts before pos.
func nodeAt(text string, pos protocol.Position) string {
	offset := offsetOf(text, pos)
	id := ""
	for _, m := range idPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > offset {
			break
		}
		id = unquote(text[m[2]:m[3]])
	}
	return id
}

func unquote(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

// position converts a byte offset into a line and a UTF-16 column.
func position(text string, offset int) protocol.Position {
	before := text[:offset]
	line := strings.Count(before, "\n")
	col := 0
	for _, r := range before[strings.LastIndex(before, "\n")+1:] {
		col += utf16.RuneLen(r)
	}
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

// offsetOf converts a line and UTF-16 column into a byte offset. A column
// past the end of the line maps to the line end.
func offsetOf(text string, pos protocol.Position) int {
	line := 0
	col := 0
	for i, r := range text {
		if line == int(pos.Line) && col >= int(pos.Character) {
			return i
		}
		if r == '\n' {
			if line == int(pos.Line) {
				return i
			}
			line++
			col = 0
		} else {
			col += utf16.RuneLen(r)
		}
	}
	return len(text)
}
