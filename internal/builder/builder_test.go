package builder

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func chunkWith(version string, ids ...string) string {
	var nodes []string
	for _, id := range ids {
		nodes = append(nodes, `{"id": "`+id+`", "concept": {"language": "l", "version": "1", "key": "C"},
			"properties": [], "children": [], "references": [], "parent": null}`)
	}
	return `{"serializationFormatVersion": "` + version + `", "languages": [{"key": "l", "version": "1"}],
		"nodes": [` + strings.Join(nodes, ",") + `]}`
}

func TestBuildMergesChunks(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "a.json", chunkWith("2023.1", "n2"))
	f2 := writeFile(t, dir, "b.json", chunkWith("2023.1", "n1"))

	var buf bytes.Buffer
	if err := NewBuilder([]string{f1, f2}).Build(&buf); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	doc, err := chunk.Parse(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Chunk.Languages) != 1 {
		t.Errorf("Expected used languages deduplicated, got %v", doc.Chunk.Languages)
	}
	if len(doc.Chunk.Nodes) != 2 || doc.Chunk.Nodes[0].ID != "n1" {
		t.Errorf("Expected both nodes sorted by id, got %s", buf.String())
	}
}

func TestBuildRejectsConflicts(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFile(t, dir, "a.json", chunkWith("2023.1", "n1"))
	f2 := writeFile(t, dir, "b.json", chunkWith("2023.1", "n1"))
	f3 := writeFile(t, dir, "c.json", chunkWith("2022.1", "n3"))

	_, err := NewBuilder([]string{f1, f2}).Merge()
	if err == nil || !strings.Contains(err.Error(), "node n1 is defined in both") {
		t.Errorf("Expected duplicate node error, got %v", err)
	}
	_, err = NewBuilder([]string{f1, f3}).Merge()
	if err == nil || !strings.Contains(err.Error(), "multiple serialization format versions") {
		t.Errorf("Expected version error, got %v", err)
	}
}

func TestExtractModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.json", chunkWith("2023.1", "b", "a"))

	written, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("Expected sorted and shortened files only, got %v", written)
	}
	short, err := os.ReadFile(filepath.Join(dir, "model.shortened.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(short), `"concept": "C"`) {
		t.Errorf("Unexpected shortened output:\n%s", short)
	}
}

func TestExtractLanguage(t *testing.T) {
	content, err := os.ReadFile("../language/testdata/library.language.json")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "library.json", string(content))

	written, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("Expected a textual rendering as well, got %v", written)
	}
	text, err := os.ReadFile(filepath.Join(dir, "library.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(text), "language library\n") {
		t.Errorf("Unexpected text rendering:\n%s", text)
	}
}

func TestExtractRejectsNodes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "node.json", `{"id": "n", "concept": {"language": "l", "version": "1", "key": "C"}}`)
	if _, err := Extract(path); err == nil {
		t.Error("Expected an error for a single node document")
	}
}
