package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseArgs(t *testing.T) {
	o := parseArgs("diff", []string{"-o", "json", "a.json", "-v", "b.json"}, []string{"-o"}, []string{"-v"})
	if o.values["-o"] != "json" || !o.bools["-v"] {
		t.Errorf("Unexpected flags %+v", o)
	}
	if diff := cmp.Diff([]string{"a.json", "b.json"}, o.rest); diff != "" {
		t.Errorf("rest (-want +got):\n%s", diff)
	}
}

func TestLoadLanguages(t *testing.T) {
	perFile, reg := loadLanguages([]string{"../../internal/language/testdata/library.language.json"})
	if len(perFile) != 1 || len(perFile[0]) != 1 || perFile[0][0].Key != "library" {
		t.Fatalf("Unexpected languages %v", perFile)
	}
	if reg.Language("library", "1") == nil {
		t.Error("Expected the language in the registry")
	}
}
