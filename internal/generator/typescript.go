package generator

import (
	"fmt"
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

type TypeScriptOptions struct {
	// AssumeSealed lists the direct sub-concepts of an abstract concept as
	// its possible classifiers.
	AssumeSealed bool
}

// TypeScript renders type definitions for l on top of the DynamicNode base
// type of the LionWeb TypeScript libraries.
func TypeScript(l *language.Language, reg *language.Registry, opts TypeScriptOptions) string {
	r := resolver{reg: reg}
	out := &lines{step: "    "}
	out.add(
		"// Warning: this file is generated!",
		"// Modifying it by hand it useless at best, and sabotage at worst.",
		"",
		"/*",
		" * language's metadata:",
		" *     name:    "+l.Name,
		" *     version: "+l.Version,
		" */",
		"",
	)

	var imports []string
	usesNamed, allNamed := false, true
	for _, c := range l.Classifiers {
		if implementsINamed(c) {
			usesNamed = true
		} else {
			allNamed = false
		}
	}
	if len(l.DataTypes) > 0 {
		allNamed = false
	}
	if !allNamed {
		imports = append(imports, "DynamicNode")
	}
	if usesNamed {
		imports = append(imports, "DynamicINamed as INamed")
	}
	if len(imports) > 0 {
		out.add(fmt.Sprintf(`import {%s} from "@lionweb/core";`, strings.Join(imports, ", ")))
	}
	out.blank()

	var concrete []string
	for _, e := range entitiesOf(l) {
		switch {
		case e.dataType != nil && e.dataType.Kind == language.EnumerationKind:
			out.add("enum "+e.name+" {", "    "+strings.Join(e.dataType.Literals, ", "), "}", "")
		case e.dataType != nil:
			out.add(fmt.Sprintf("export type %s = %s;", e.name, tsPrimitive(e.dataType.ID)), "")
		case e.classifier.Kind == language.ConceptKind:
			tsConcept(out, r, l, e.classifier, opts)
			if !e.classifier.Abstract {
				concrete = append(concrete, e.name)
			}
		case e.classifier.Kind == language.InterfaceKind:
			tsInterface(out, r, e.classifier)
		default:
			out.add(fmt.Sprintf(`// unhandled language entity <%s>"%s"`, e.classifier.Kind, e.name), "")
		}
	}
	out.add(fmt.Sprintf("export type %sNode = %s;", l.Name, strings.Join(concrete, " | ")))
	return out.String()
}

func implementsINamed(c *language.Classifier) bool {
	ids := c.Implements
	if c.Kind == language.InterfaceKind {
		ids = c.Extends
	}
	for _, id := range ids {
		if id == language.BuiltinINamedID {
			return true
		}
	}
	return false
}

func tsConcept(out *lines, r resolver, l *language.Language, c *language.Classifier, opts TypeScriptOptions) {
	var mixins []string
	for _, id := range c.Extends {
		mixins = append(mixins, r.name(id))
	}
	for _, id := range c.Implements {
		mixins = append(mixins, r.name(id))
	}
	if len(mixins) == 0 {
		mixins = []string{"DynamicNode"}
	}
	var subs []string
	switch {
	case !c.Abstract:
		subs = []string{c.Name}
	case opts.AssumeSealed:
		for _, other := range l.Classifiers {
			if other.Kind == language.ConceptKind && len(other.Extends) > 0 && other.Extends[0] == c.ID {
				subs = append(subs, other.Name)
			}
		}
	}
	hasBody := !c.Abstract || len(c.Features) > 0 || len(subs) > 0

	prefix := ""
	if c.Abstract {
		prefix = "/** abstract */ "
	}
	tsType(out, r, fmt.Sprintf("%sexport type %s = %s", prefix, c.Name, strings.Join(mixins, " & ")), hasBody, subs, c.Features)
}

func tsInterface(out *lines, r resolver, c *language.Classifier) {
	var mixins []string
	for _, id := range c.Extends {
		mixins = append(mixins, r.name(id))
	}
	if len(mixins) == 0 {
		mixins = []string{"DynamicNode"}
	}
	tsType(out, r, fmt.Sprintf("/** interface */ export type %s = %s", c.Name, strings.Join(mixins, " & ")), len(c.Features) > 0, nil, c.Features)
}

func tsType(out *lines, r resolver, header string, hasBody bool, subs []string, features []*language.Feature) {
	if !hasBody {
		out.add(header+";", "")
		return
	}
	out.add(header + " & {")
	out.in()
	if len(subs) > 0 {
		out.add("// classifier -> " + strings.Join(subs, " | "))
	}
	if len(features) > 0 {
		out.add("settings: {")
		out.in()
		for _, f := range features {
			out.add(tsField(r, f))
		}
		out.out()
		out.add("};")
	}
	out.out()
	out.add("};", "")
}

func tsField(r resolver, f *language.Feature) string {
	if f.Kind == language.PropertyFeature {
		optional := ""
		if f.Optional {
			optional = "?"
		}
		typeName := tsPrimitive(f.TypeID)
		if f.DataType != nil && f.DataType.Kind == language.EnumerationKind {
			typeName = f.DataType.Name
		}
		return fmt.Sprintf("%s%s: %s;", f.Name, optional, typeName)
	}
	optional, many := "", ""
	if f.Optional && !f.Multiple {
		optional = "?"
	}
	if f.Multiple {
		many = "[]"
	}
	typeName := "unknown"
	if f.Classifier != nil {
		typeName = r.typeName(f)
	}
	return fmt.Sprintf("%s%s: %s%s;", f.Name, optional, typeName, many)
}

func tsPrimitive(id string) string {
	switch id {
	case language.BuiltinBooleanID:
		return "boolean"
	case language.BuiltinStringID:
		return "string"
	case language.BuiltinIntegerID:
		return "number"
	default:
		return "unknown"
	}
}
