package generator

import (
	"fmt"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

func PlantUML(l *language.Language, reg *language.Registry) string {
	r := resolver{reg: reg}
	out := &lines{step: "  "}
	out.add("@startuml", "hide empty members")
	out.blank()
	out.add(fmt.Sprintf("' qualified name: %q, version: %q", l.Name, l.Version))
	out.blank()

	entities := entitiesOf(l)
	for _, e := range entities {
		plantUMLEntity(out, e)
	}
	out.blank()
	out.add("' relations:")
	out.blank()
	for _, e := range entities {
		c := e.classifier
		if c == nil {
			continue
		}
		for _, id := range c.Extends {
			if !isNode(id) {
				out.add(fmt.Sprintf("%s <|-- %s", r.name(id), c.Name))
			}
		}
		for _, id := range c.Implements {
			out.add(fmt.Sprintf("%s <|.. %s", r.name(id), c.Name))
		}
		if c.Annotates != "" {
			out.add(fmt.Sprintf("%s ..> %s", c.Name, r.name(c.Annotates)))
		}
		for _, f := range links(c) {
			arrow := "-->"
			if f.Kind == language.ContainmentFeature {
				arrow = "o-->"
			}
			out.add(fmt.Sprintf(`%s %s "%s" %s: %s`, c.Name, arrow, plantUMLMultiplicity(f), r.typeName(f), f.Name))
		}
	}
	out.blank()
	out.add("@enduml")
	return out.String()
}

func plantUMLEntity(out *lines, e entity) {
	if d := e.dataType; d != nil {
		if d.Kind == language.EnumerationKind {
			out.add(fmt.Sprintf("enum %s {", d.Name))
			out.in()
			out.add(d.Literals...)
			out.out()
			out.add("}")
		} else {
			out.add(fmt.Sprintf("class %s <<primitive type>>", d.Name))
		}
		out.blank()
		return
	}

	c := e.classifier
	header := "class " + c.Name
	switch {
	case c.Kind == language.InterfaceKind:
		header = "interface " + c.Name
	case c.Kind == language.AnnotationKind:
		header = "annotation " + c.Name
	case c.Abstract:
		header = "abstract class " + c.Name
	}
	if c.Partition {
		header += " <<partition>>"
	}
	props := properties(c)
	if len(props) == 0 {
		out.add(header)
		out.blank()
		return
	}
	out.add(header + " {")
	out.in()
	for _, p := range props {
		optional := ""
		if p.Optional {
			optional = "?"
		}
		out.add(fmt.Sprintf("%s: %s%s", p.Name, dataTypeName(p), optional))
	}
	out.out()
	out.add("}")
	out.blank()
}

func dataTypeName(f *language.Feature) string {
	if f.DataType != nil {
		return f.DataType.Name
	}
	return "???"
}

func plantUMLMultiplicity(f *language.Feature) string {
	switch f.Multiplicity() {
	case language.Optional:
		return "0..1"
	case language.ZeroOrMore:
		return "0..*"
	case language.OneOrMore:
		return "1..*"
	default:
		return "1"
	}
}
