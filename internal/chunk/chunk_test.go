package chunk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const libraryChunk = `{
  "serializationFormatVersion": "2023.1",
  "languages": [{"key": "library", "version": "1"}],
  "nodes": [
    {
      "id": "lib",
      "concept": {"language": "library", "version": "1", "key": "Library"},
      "properties": [{"property": {"language": "library", "version": "1", "key": "name"}, "value": "Public"}],
      "children": [{"containment": {"language": "library", "version": "1", "key": "books"}, "children": ["b1"]}],
      "references": [],
      "parent": null
    },
    {
      "id": "b1",
      "concept": {"language": "library", "version": "1", "key": "Book"},
      "properties": [],
      "children": [],
      "references": [{"reference": {"language": "library", "version": "1", "key": "author"},
        "targets": [{"resolveInfo": "Jack", "reference": null}, {"resolveInfo": null, "reference": "w1"}]}],
      "parent": "lib"
    }
  ]
}`

func TestParseChunk(t *testing.T) {
	doc, err := Parse([]byte(libraryChunk))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Kind != KindChunk {
		t.Fatalf("Expected chunk document, got %s", doc.Kind)
	}
	c := doc.Chunk
	if c.SerializationFormatVersion != "2023.1" {
		t.Errorf("Unexpected version %q", c.SerializationFormatVersion)
	}
	if len(c.Nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(c.Nodes))
	}
	if c.Nodes[0].Parent != nil {
		t.Errorf("Expected root node, got parent %q", *c.Nodes[0].Parent)
	}
	if got := c.Nodes[1].ParentID(); got != "lib" {
		t.Errorf("Expected parent lib, got %q", got)
	}
	want := []string{"b1"}
	if diff := cmp.Diff(want, c.Nodes[0].Containments[0].Children); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNodeDocument(t *testing.T) {
	doc, err := Parse([]byte(`{"id": "n1", "concept": {"language": "l", "version": "1", "key": "C"}}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Kind != KindNode || doc.Node == nil {
		t.Fatalf("Expected node document, got %s", doc.Kind)
	}
	if doc.Node.ID != "n1" || doc.Node.Concept.Key != "C" {
		t.Errorf("Unexpected node %+v", doc.Node)
	}
}

func TestParseUnknownAndInvalid(t *testing.T) {
	doc, err := Parse([]byte(`[1, 2, 3]`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Kind != KindUnknown {
		t.Errorf("Expected unknown document, got %s", doc.Kind)
	}

	if _, err := Parse([]byte(`{"nodes": [`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestLenientTypedView(t *testing.T) {
	doc, err := Parse([]byte(`{"serializationFormatVersion": 1, "languages": "x", "nodes": [
		{"id": 42, "concept": "C", "parent": 7, "properties": [{"property": {}, "value": 3}], "children": [{"children": ["a", 1]}]},
		"not a node"
	]}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	c := doc.Chunk
	if c.SerializationFormatVersion != "" || len(c.Languages) != 0 {
		t.Errorf("Expected zero values for wrongly typed fields, got %+v", c)
	}
	if len(c.Nodes) != 1 {
		t.Fatalf("Expected the non-object node to be skipped, got %d nodes", len(c.Nodes))
	}
	n := c.Nodes[0]
	if n.ID != "" || n.Parent != nil || n.Properties[0].Value != nil {
		t.Errorf("Unexpected lenient node %+v", n)
	}
	if len(n.Containments[0].Children) != 1 {
		t.Errorf("Expected only string child ids, got %v", n.Containments[0].Children)
	}
}

func TestParseYAML(t *testing.T) {
	input := `
serializationFormatVersion: "2023.1"
languages:
  - key: library
    version: "1"
nodes:
  - id: lib
    concept: {language: library, version: "1", key: Library}
    properties: []
    children: []
    references: []
    parent: null
`
	doc, err := ParseYAML([]byte(input))
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if doc.Kind != KindChunk || len(doc.Chunk.Nodes) != 1 {
		t.Fatalf("Unexpected document %+v", doc)
	}
	if doc.Chunk.Languages[0].Version != "1" {
		t.Errorf("Expected version \"1\", got %q", doc.Chunk.Languages[0].Version)
	}
}

func TestReadFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "lib.json")
	if err := os.WriteFile(jsonPath, []byte(libraryChunk), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if len(doc.Chunk.Nodes) != 2 {
		t.Errorf("Expected 2 nodes, got %d", len(doc.Chunk.Nodes))
	}

	badPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badPath, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(badPath)
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("Expected error naming the file, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(libraryChunk))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Marshal(doc.Chunk)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse error: %v", err)
	}
	if diff := cmp.Diff(doc.Chunk, again.Chunk); diff != "" {
		t.Errorf("chunk changed after re-encoding (-want +got):\n%s", diff)
	}
}

func TestLookups(t *testing.T) {
	doc, _ := Parse([]byte(libraryChunk))
	c := doc.Chunk

	lib := FindNode(c, "lib")
	if lib == nil {
		t.Fatal("Expected to find lib")
	}
	if FindNode(c, "missing") != nil {
		t.Error("Expected nil for missing id")
	}
	if p := FindProperty(lib, "name"); p == nil || *p.Value != "Public" {
		t.Errorf("Expected name property, got %+v", p)
	}
	if FindProperty(lib, "books") != nil {
		t.Error("Containment key must not match a property")
	}
	if FindContainment(lib, "books") == nil {
		t.Error("Expected books containment")
	}
	if FindUsedLanguage(c, "library") == nil || FindUsedLanguage(c, "other") != nil {
		t.Error("Used language lookup failed")
	}

	book := FindNode(c, "b1")
	ref := FindReference(book, "author")
	if ref == nil {
		t.Fatal("Expected author reference")
	}
	byInfo := FindTarget(ref.Targets, ReferenceTarget{ResolveInfo: Ptr("Jack")})
	if byInfo == nil || byInfo.Reference != nil {
		t.Errorf("Expected resolveInfo match, got %+v", byInfo)
	}
	byID := FindTarget(ref.Targets, ReferenceTarget{Reference: Ptr("w1"), ResolveInfo: Ptr("ignored")})
	if byID == nil || *byID.Reference != "w1" {
		t.Errorf("Expected id match, got %+v", byID)
	}
	if FindTarget(ref.Targets, ReferenceTarget{Reference: Ptr("Jack")}) != nil {
		t.Error("An id must not match a resolveInfo")
	}
}
