package lsp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/visualizer"
)

const (
	languageURI = "file:///work/library.language.json"
	modelURI    = "file:///work/library.model.json"
)

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../language/testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func call(t *testing.T, s *Server, method string, params any) (any, error) {
	t.Helper()
	req, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(1), method, params)
	if err != nil {
		t.Fatal(err)
	}
	var result any
	var replyErr error
	replier := func(ctx context.Context, r any, err error) error {
		result, replyErr = r, err
		return nil
	}
	if err := s.Handle(context.Background(), replier, req); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return result, replyErr
}

func initialized(t *testing.T, languages ...*chunk.Chunk) *Server {
	t.Helper()
	s := NewServer(languages, validator.DefaultOptions(), "test")
	if _, err := call(t, s, protocol.MethodInitialize, &protocol.InitializeParams{RootURI: "file:///work"}); err != nil {
		t.Fatal(err)
	}
	return s
}

func open(t *testing.T, s *Server, uri, text string) {
	t.Helper()
	_, err := call(t, s, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: protocol.DocumentURI(uri), LanguageID: "json", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func diagnostics(s *Server, uri string) []protocol.Diagnostic {
	return s.Diagnostics(s.session.ViewOf(uri).Snapshot(), uri)
}

func TestInitialize(t *testing.T) {
	s := NewServer(nil, validator.DefaultOptions(), "1.2.3")
	res, err := call(t, s, protocol.MethodInitialize, &protocol.InitializeParams{RootURI: "file:///work"})
	if err != nil {
		t.Fatal(err)
	}
	info, ok := res.(*protocol.InitializeResult)
	if !ok {
		t.Fatalf("Unexpected result %T", res)
	}
	if info.ServerInfo.Name != "lwdt" || info.ServerInfo.Version != "1.2.3" {
		t.Errorf("Unexpected server info %+v", info.ServerInfo)
	}
	if info.Capabilities.HoverProvider != true {
		t.Error("Expected hover support")
	}
	if v := s.session.View("default"); v == nil || v.Root() != "/work" {
		t.Errorf("Expected a default view rooted at /work")
	}
}

func TestUnknownMethod(t *testing.T) {
	s := initialized(t)
	if _, err := call(t, s, "textDocument/unknown", struct{}{}); err == nil {
		t.Error("Expected method not found")
	}
}

func TestModelDiagnostics(t *testing.T) {
	doc, err := chunk.ReadFile("../language/testdata/library.language.json")
	if err != nil {
		t.Fatal(err)
	}
	s := initialized(t, doc.Chunk)

	open(t, s, modelURI, readTestdata(t, "library.model.json"))
	if d := diagnostics(s, modelURI); len(d) != 0 {
		t.Errorf("Expected a clean model, got %v", d)
	}

	broken := strings.Replace(readTestdata(t, "library.model.json"), `"reference": "writer1"`, `"reference": "nobody"`, 1)
	open(t, s, modelURI, broken)
	var found bool
	for _, d := range diagnostics(s, modelURI) {
		if d.Code != validator.CodeUnresolvedReference {
			continue
		}
		found = true
		if d.Range.Start.Line != 42 || d.Severity != protocol.DiagnosticSeverityError {
			t.Errorf("Expected an error on the id of book1, got %+v", d)
		}
		if !strings.Contains(d.Message, "nodes[book1]") {
			t.Errorf("Expected the path in the message, got %q", d.Message)
		}
	}
	if !found {
		t.Errorf("Expected an unresolved reference, got %v", diagnostics(s, modelURI))
	}
}

func TestParseErrorDiagnostic(t *testing.T) {
	s := initialized(t)
	open(t, s, modelURI, "{")
	d := diagnostics(s, modelURI)
	if len(d) != 1 || d[0].Range != (protocol.Range{}) {
		t.Errorf("Expected one diagnostic at the start, got %v", d)
	}
}

func TestOpenLanguageFeedsModels(t *testing.T) {
	s := initialized(t)
	open(t, s, modelURI, readTestdata(t, "library.model.json"))
	if d := diagnostics(s, modelURI); len(d) == 0 {
		t.Error("Expected unknown concepts without a language")
	}

	open(t, s, languageURI, readTestdata(t, "library.language.json"))
	if d := diagnostics(s, languageURI); len(d) != 0 {
		t.Errorf("Expected the language to conform to M3, got %v", d)
	}
	if d := diagnostics(s, modelURI); len(d) != 0 {
		t.Errorf("Expected the open language to resolve the model, got %v", d)
	}

	if _, err := call(t, s, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: languageURI},
	}); err != nil {
		t.Fatal(err)
	}
	if d := diagnostics(s, modelURI); len(d) == 0 {
		t.Error("Expected closing the language to bring the issues back")
	}
}

func TestHover(t *testing.T) {
	s := initialized(t)
	open(t, s, languageURI, readTestdata(t, "library.language.json"))
	open(t, s, modelURI, readTestdata(t, "library.model.json"))

	res, err := call(t, s, protocol.MethodTextDocumentHover, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: modelURI},
			Position:     protocol.Position{Line: 44, Character: 8},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	hover, ok := res.(*protocol.Hover)
	if !ok || hover == nil {
		t.Fatalf("Expected hover content, got %v", res)
	}
	for _, want := range []string{"**Node**: `book1`", "**Concept**: `Book` (library@1)", "`Book-title` = \"Explorer Book\""} {
		if !strings.Contains(hover.Contents.Value, want) {
			t.Errorf("Hover misses %q:\n%s", want, hover.Contents.Value)
		}
	}
	if hover.Range.Start.Line != 42 {
		t.Errorf("Expected the range of the id entry, got %+v", hover.Range)
	}

	if h := s.Hover(modelURI, protocol.Position{Line: 0, Character: 0}); h != nil {
		t.Errorf("Expected no hover before the first node, got %v", h)
	}
}

func TestVisualizerFollowsOpenLanguages(t *testing.T) {
	v := visualizer.New(0)
	s := NewServer(nil, validator.DefaultOptions(), "test")
	s.SetVisualizer(v)
	if _, err := call(t, s, protocol.MethodInitialize, &protocol.InitializeParams{RootURI: "file:///work"}); err != nil {
		t.Fatal(err)
	}
	open(t, s, languageURI, readTestdata(t, "library.language.json"))

	srv := httptest.NewServer(v.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/graph")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "GuideBookWriter") {
		t.Errorf("Expected the library diagram, got:\n%s", body)
	}
}

func TestNodeAtAndRange(t *testing.T) {
	text := "{\n  \"nodes\": [\n    {\"id\": \"a\"},\n    {\"id\": \"b\\\"c\"}\n  ]\n}"
	if got := nodeAt(text, protocol.Position{Line: 3, Character: 10}); got != `b"c` {
		t.Errorf("Expected the escaped id, got %q", got)
	}
	r := rangeOfNode(text, "a")
	if r.Start.Line != 2 || r.Start.Character != 5 {
		t.Errorf("Unexpected range %+v", r)
	}
	if r := rangeOfNode(text, "missing"); r != (protocol.Range{}) {
		t.Errorf("Expected an empty range, got %+v", r)
	}
}

func TestPositionsCountUTF16Units(t *testing.T) {
	text := `{"nodes": [{"name": "😀", "id": "a"}]}`
	r := rangeOfNode(text, "a")
	if r.Start.Character != 26 || r.End.Character != 35 {
		t.Errorf("Expected columns 26 to 35, got %+v", r)
	}
	if got := nodeAt(text, protocol.Position{Line: 0, Character: 26}); got != "a" {
		t.Errorf("Expected a at its id entry, got %q", got)
	}
	if got := nodeAt(text, protocol.Position{Line: 0, Character: 25}); got != "" {
		t.Errorf("Expected no node before the id entry, got %q", got)
	}
}
