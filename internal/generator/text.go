package generator

import (
	"fmt"
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

// Text renders a compact textual summary of l, used for the .txt file next
// to an extracted language chunk.
func Text(l *language.Language, reg *language.Registry) string {
	r := resolver{reg: reg}
	out := &lines{step: "    "}
	out.add(fmt.Sprintf("language %s", l.Name))
	out.in()
	out.add("version: " + l.Version)
	if len(l.DependsOn) > 0 {
		deps := make([]string, len(l.DependsOn))
		for i, id := range l.DependsOn {
			deps[i] = r.name(id)
		}
		out.add("dependsOn: " + strings.Join(deps, ", "))
	}
	out.add("entities (↓name):")
	out.blank()
	out.in()
	for _, e := range entitiesOf(l) {
		textEntity(out, r, e)
		out.blank()
	}
	return out.String()
}

func textEntity(out *lines, r resolver, e entity) {
	if d := e.dataType; d != nil {
		if d.Kind == language.PrimitiveKind {
			out.add("primitive type " + d.Name)
			return
		}
		out.add("enumeration " + d.Name)
		out.in()
		out.add("literals:")
		out.in()
		out.add(d.Literals...)
		out.out()
		out.out()
		return
	}

	c := e.classifier
	var header strings.Builder
	if c.Abstract {
		header.WriteString("abstract ")
	}
	if c.Partition {
		header.WriteString("partition ")
	}
	header.WriteString(strings.ToLower(c.Kind.String()) + " " + c.Name)
	if len(c.Extends) > 0 {
		header.WriteString(" extends " + names(r, c.Extends))
	}
	if len(c.Implements) > 0 {
		header.WriteString(" implements " + names(r, c.Implements))
	}
	if c.Annotates != "" {
		header.WriteString(" annotates " + r.name(c.Annotates))
	}
	out.add(header.String())
	if len(c.Features) == 0 {
		return
	}
	out.in()
	out.add("features (↓name):")
	out.in()
	for _, f := range c.Features {
		out.add(textFeature(r, f))
	}
	out.out()
	out.out()
}

func textFeature(r resolver, f *language.Feature) string {
	typeName := r.typeName(f)
	switch f.Kind {
	case language.ContainmentFeature:
		return fmt.Sprintf("%s: %s%s", f.Name, typeName, textMultiplicity(f))
	case language.ReferenceFeature:
		return fmt.Sprintf("%s -> %s%s", f.Name, typeName, textMultiplicity(f))
	}
	if f.Optional {
		return fmt.Sprintf("%s: %s?", f.Name, typeName)
	}
	return fmt.Sprintf("%s: %s", f.Name, typeName)
}

func textMultiplicity(f *language.Feature) string {
	switch f.Multiplicity() {
	case language.Optional:
		return "?"
	case language.ZeroOrMore:
		return "[0..*]"
	case language.OneOrMore:
		return "[1..*]"
	default:
		return ""
	}
}

func names(r resolver, ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.name(id)
	}
	return strings.Join(out, ", ")
}
