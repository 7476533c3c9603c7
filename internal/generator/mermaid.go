package generator

import (
	"fmt"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

// Mermaid renders a class diagram of l. Entities and their relations are
// listed by name.
func Mermaid(l *language.Language, reg *language.Registry) string {
	r := resolver{reg: reg}
	out := &lines{step: "  "}
	out.add("classDiagram")
	out.blank()
	out.in()
	entities := entitiesOf(l)
	for _, e := range entities {
		mermaidEntity(out, r, e)
	}
	out.blank()
	for _, e := range entities {
		if e.classifier == nil {
			continue
		}
		for _, f := range links(e.classifier) {
			out.add(mermaidRelation(r, e.classifier, f))
		}
	}
	return out.String()
}

// MermaidMarkdown wraps the diagram in a fenced block for markdown files.
func MermaidMarkdown(l *language.Language, reg *language.Registry) string {
	return "```mermaid\n" + Mermaid(l, reg) + "```\n"
}

func mermaidEntity(out *lines, r resolver, e entity) {
	if d := e.dataType; d != nil {
		if d.Kind == language.EnumerationKind {
			out.add(fmt.Sprintf("class %s {", d.Name))
			out.in()
			out.add("<<enumeration>>")
			out.add(d.Literals...)
			out.out()
			out.add("}")
		} else {
			out.add("class "+d.Name, "<<PrimitiveType>> "+d.Name)
		}
		out.blank()
		return
	}

	c := e.classifier
	header := "class " + c.Name
	if c.Partition {
		header = "class <<partition>> " + c.Name
	}
	mermaidBlock(out, header, properties(c))
	switch c.Kind {
	case language.AnnotationKind:
		out.add("<<Annotation>> " + c.Name)
		if c.Annotates != "" {
			out.add(fmt.Sprintf("%s ..> %s", c.Name, r.name(c.Annotates)))
		}
	case language.InterfaceKind:
		out.add("<<Interface>> " + c.Name)
	default:
		if c.Abstract {
			out.add("<<Abstract>> " + c.Name)
		}
	}
	for _, id := range c.Extends {
		if !isNode(id) {
			out.add(fmt.Sprintf("%s <|-- %s", r.name(id), c.Name))
		}
	}
	if c.Kind == language.AnnotationKind {
		for _, id := range c.Implements {
			out.add(fmt.Sprintf("%s <|.. %s", r.name(id), c.Name))
		}
	}
	out.blank()
}

func mermaidBlock(out *lines, header string, props []*language.Feature) {
	if len(props) == 0 {
		out.add(header)
		return
	}
	out.add(header + " {")
	out.in()
	for _, p := range props {
		out.add(fmt.Sprintf("+%s %s", mermaidType(p), p.Name))
	}
	out.out()
	out.add("}")
}

func mermaidType(f *language.Feature) string {
	name := "???"
	if f.DataType != nil {
		name = f.DataType.Name
	} else if f.Classifier != nil {
		name = f.Classifier.Name
	}
	if f.Multiple {
		name = "List~" + name + "~"
	}
	if f.Optional {
		name += "?"
	}
	return name
}

func mermaidRelation(r resolver, owner *language.Classifier, f *language.Feature) string {
	left, arrow := "*", "-->"
	if f.Kind == language.ContainmentFeature {
		left, arrow = "1", "o-->"
	}
	right := "1"
	switch {
	case f.Multiple:
		right = "*"
	case f.Optional:
		right = "0..1"
	}
	return fmt.Sprintf(`%s "%s" %s "%s" %s: %s`, owner.Name, left, arrow, right, r.typeName(f), f.Name)
}
