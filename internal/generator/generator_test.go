package generator

import (
	"strings"
	"testing"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

func library(t *testing.T) (*language.Language, *language.Registry) {
	t.Helper()
	doc, err := chunk.ReadFile("../language/testdata/library.language.json")
	if err != nil {
		t.Fatal(err)
	}
	reg, err := language.DeserializeRegistry(doc.Chunk)
	if err != nil {
		t.Fatal(err)
	}
	return reg.Language("library", "1"), reg
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Output misses %q:\n%s", want, out)
		}
	}
}

func TestMermaid(t *testing.T) {
	l, reg := library(t)
	out := Mermaid(l, reg)
	if !strings.HasPrefix(out, "classDiagram\n") {
		t.Errorf("Unexpected start %q", out[:min(len(out), 20)])
	}
	assertContains(t, out,
		"  class <<partition>> Library {\n    +String Library-name\n  }",
		"  class BookType {\n    <<enumeration>>\n    Normal\n    Special\n  }",
		"  +BookType? Book-type",
		"  Writer <|-- GuideBookWriter",
		`  Library "1" o--> "*" Book: Library-books`,
		`  Book "*" --> "1" Writer: Book-author`,
	)
	if strings.Contains(out, "Node <|--") {
		t.Error("The builtin Node must not be drawn as a supertype")
	}

	md := MermaidMarkdown(l, reg)
	if !strings.HasPrefix(md, "```mermaid\n") || !strings.HasSuffix(md, "```\n") {
		t.Errorf("Expected a fenced block, got %q", md)
	}
}

func TestMermaidIsDeterministic(t *testing.T) {
	l, reg := library(t)
	if Mermaid(l, reg) != Mermaid(l, reg) {
		t.Error("Two renderings differ")
	}
}

func TestPlantUML(t *testing.T) {
	l, reg := library(t)
	out := PlantUML(l, reg)
	assertContains(t, out,
		"@startuml\n",
		"class Library <<partition>> {",
		"enum BookType {",
		`Library o--> "0..*" Book: Library-books`,
		`Book --> "1" Writer: Book-author`,
		"Writer <|-- GuideBookWriter",
		"@enduml\n",
	)
}

func TestTypeScript(t *testing.T) {
	l, reg := library(t)
	out := TypeScript(l, reg, TypeScriptOptions{})
	assertContains(t, out,
		`import {DynamicNode} from "@lionweb/core";`,
		"export type Book = DynamicNode & {\n    // classifier -> Book\n    settings: {",
		"        Book-pages: number;",
		"        Book-type?: BookType;",
		"        Book-author: Writer;",
		"        Library-books: Book[];",
		"export type GuideBookWriter = Writer & {",
		"enum BookType {\n    Normal, Special\n}",
		"export type libraryNode = Book | GuideBookWriter | Library | Writer;",
	)
}

func TestTypeScriptSealedAbstract(t *testing.T) {
	l := language.NewLanguage("shapes", "1")
	l.Name = "Shapes"
	l.Concept("Shape").SetAbstract()
	l.Concept("Circle").Extending("Shape")
	l.Concept("Square").Extending("Shape")
	reg := language.NewRegistry(l)

	open := TypeScript(l, reg, TypeScriptOptions{})
	assertContains(t, open, "/** abstract */ export type Shape = DynamicNode;")

	sealed := TypeScript(l, reg, TypeScriptOptions{AssumeSealed: true})
	assertContains(t, sealed,
		"/** abstract */ export type Shape = DynamicNode & {\n    // classifier -> Circle | Square\n};",
		"export type ShapesNode = Circle | Square;",
	)
}

func TestText(t *testing.T) {
	l, reg := library(t)
	out := Text(l, reg)
	assertContains(t, out,
		"language library\n    version: 1\n",
		"        partition concept Library\n",
		"                Library-books: Book[0..*]\n",
		"                Book-author -> Writer\n",
		"                Book-type: BookType?\n",
		"        concept GuideBookWriter extends Writer\n",
		"        enumeration BookType\n",
	)
}
