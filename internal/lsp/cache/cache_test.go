package cache

import (
	"os"
	"testing"
)

func languageText(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../language/testdata/library.language.json")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestUpdateKeepsOldSnapshots(t *testing.T) {
	s := NewSession("test")
	v := s.CreateView("default", "/work", nil)
	before := v.Snapshot()

	after := v.Update(func(snap *Snapshot) {
		snap.SetDocument("file:///work/a.json", languageText(t))
	})
	if len(before.Documents()) != 0 {
		t.Error("Update leaked into the previous snapshot")
	}
	if v.Snapshot() != after || len(after.Documents()) != 1 {
		t.Error("Expected the view to hold the new snapshot")
	}
	if before.Registry().Language("library", "1") != nil {
		t.Error("Previous registry must not see the new language")
	}
	if after.Registry().Language("library", "1") == nil {
		t.Error("Expected the open language chunk to be registered")
	}
	if after.Registry() == before.Registry() {
		t.Error("Snapshots must not share a registry")
	}
}

func TestParseErrorsAndRemoval(t *testing.T) {
	v := NewSession("test").CreateView("default", "/", nil)
	snap := v.Update(func(snap *Snapshot) {
		snap.SetDocument("file:///bad.json", "{")
	})
	doc, err := snap.Document("file:///bad.json")
	if doc != nil || err == nil {
		t.Errorf("Expected a parse error, got %v, %v", doc, err)
	}

	snap = v.Update(func(snap *Snapshot) {
		snap.SetDocument("file:///bad.json", `{"serializationFormatVersion": "2023.1", "languages": [], "nodes": []}`)
	})
	if doc, err := snap.Document("file:///bad.json"); doc == nil || err != nil {
		t.Errorf("Expected the fixed document to parse, got %v", err)
	}

	snap = v.Update(func(snap *Snapshot) {
		snap.RemoveDocument("file:///bad.json")
	})
	if len(snap.Documents()) != 0 {
		t.Errorf("Expected no documents, got %v", snap.Documents())
	}
}

func TestViewOf(t *testing.T) {
	s := NewSession("test")
	if s.ViewOf("file:///x.json") != nil {
		t.Error("Expected no view in an empty session")
	}
	outer := s.CreateView("outer", "/work", nil)
	inner := s.CreateView("inner", "/work/sub", nil)

	tests := []struct {
		uri  string
		want *View
	}{
		{"file:///work/a.json", outer},
		{"file:///work/sub/b.json", inner},
		{"file:///elsewhere/c.json", outer},
	}
	for _, tt := range tests {
		if got := s.ViewOf(tt.uri); got != tt.want {
			t.Errorf("ViewOf(%q) = %s, want %s", tt.uri, got.id, tt.want.id)
		}
	}
	if s.View("inner") != inner || s.View("missing") != nil {
		t.Error("Unexpected lookup by id")
	}
}
