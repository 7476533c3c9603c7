package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/diff"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
)

func mp(key string) chunk.MetaPointer {
	return chunk.MetaPointer{Language: "l", Version: "1", Key: key}
}

func sample() *chunk.Chunk {
	return &chunk.Chunk{
		SerializationFormatVersion: "2023.1",
		Languages:                  []chunk.UsedLanguage{{Key: "z", Version: "1"}, {Key: "l", Version: "1"}},
		Nodes: []*chunk.Node{
			{
				ID:      "b",
				Concept: mp("C"),
				Properties: []chunk.Property{
					{Property: mp("title"), Value: chunk.Ptr("T")},
					{Property: mp("name"), Value: nil},
				},
				Containments: []chunk.Containment{{Containment: mp("items"), Children: []string{"z", "a"}}},
				References: []chunk.Reference{{Reference: mp("ref"), Targets: []chunk.ReferenceTarget{
					{Reference: chunk.Ptr("a")},
					{ResolveInfo: chunk.Ptr("elsewhere")},
				}}},
			},
			{ID: "a", Concept: mp("C"), Parent: chunk.Ptr("b")},
		},
	}
}

func TestSortDoesNotTouchInput(t *testing.T) {
	c := sample()
	sorted := Sort(c)

	var ids []string
	for _, n := range sorted.Nodes {
		ids = append(ids, n.ID)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("node order (-want +got):\n%s", diff)
	}
	if sorted.Languages[0].Key != "l" {
		t.Errorf("Expected languages sorted by key, got %v", sorted.Languages)
	}
	if got := sorted.Nodes[1].Properties[0].Property.Key; got != "name" {
		t.Errorf("Expected properties sorted by key, got %s first", got)
	}
	if diff := cmp.Diff([]string{"z", "a"}, sorted.Nodes[1].Containments[0].Children); diff != "" {
		t.Errorf("Child order must be kept (-want +got):\n%s", diff)
	}
	if c.Nodes[0].ID != "b" || c.Nodes[0].Properties[0].Property.Key != "title" {
		t.Error("Sort modified its input")
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	var first bytes.Buffer
	if err := Format(sample(), &first); err != nil {
		t.Fatal(err)
	}
	doc, err := chunk.Parse(first.Bytes())
	if err != nil {
		t.Fatalf("Formatted output does not parse: %v", err)
	}
	var second bytes.Buffer
	if err := Format(doc.Chunk, &second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("Formatting twice differs:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestShorten(t *testing.T) {
	short := Shorten(sample())
	want := map[string]any{
		"id":      "b",
		"concept": "C",
		"title":   "T",
		"name":    nil,
		"items":   []string{"z", "a"},
		"ref":     []string{"a", "?elsewhere"},
	}
	if diff := cmp.Diff(want, short[0]); diff != "" {
		t.Errorf("shortened node (-want +got):\n%s", diff)
	}
	if short[1]["parent"] != "b" {
		t.Errorf("Expected parent on the child, got %v", short[1])
	}
}

func TestPrinterIssues(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Issues([]validator.Issue{
		{Kind: validator.SyntaxIssue, Path: validator.NodePath("n1"), Message: "duplicate id n1"},
	})
	if got := buf.String(); got != "[syntax] nodes[n1]: duplicate id n1\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestPrinterDiff(t *testing.T) {
	a := &chunk.Chunk{SerializationFormatVersion: "2023.1", Nodes: []*chunk.Node{
		{ID: "n1", Concept: mp("C"), Properties: []chunk.Property{{Property: mp("name"), Value: chunk.Ptr("hello world")}}},
		{ID: "gone", Concept: mp("C")},
	}}
	b := &chunk.Chunk{SerializationFormatVersion: "2023.1", Nodes: []*chunk.Node{
		{ID: "n1", Concept: mp("C"), Properties: []chunk.Property{{Property: mp("name"), Value: chunk.Ptr("hello world!")}}},
	}}

	var buf bytes.Buffer
	NewPrinter(&buf, false).Diff(diff.DiffChunks(a, b), false)
	out := buf.String()
	for _, want := range []string{
		"- nodes[gone] gone (C)",
		`~ nodes[n1].properties[name] "hello world{+!+}"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output misses %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewPrinter(&buf, false).Diff(diff.DiffChunks(a, a), false)
	if buf.String() != "no differences\n" {
		t.Errorf("Unexpected output for equal chunks %q", buf.String())
	}
}

func TestUseColor(t *testing.T) {
	if !UseColor("always", nil) {
		t.Error("always must enable color")
	}
	if UseColor("never", nil) || UseColor("auto", nil) {
		t.Error("never and auto without a terminal must disable color")
	}
}
