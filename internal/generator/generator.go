// Package generator renders language definitions as diagrams, TypeScript
// type text and a plain textual summary.
package generator

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

// entity is either a classifier or a data type of one language.
type entity struct {
	name       string
	classifier *language.Classifier
	dataType   *language.DataType
}

func entitiesOf(l *language.Language) []entity {
	var out []entity
	for _, c := range l.Classifiers {
		out = append(out, entity{name: c.Name, classifier: c})
	}
	for _, d := range l.DataTypes {
		out = append(out, entity{name: d.Name, dataType: d})
	}
	slices.SortStableFunc(out, func(a, b entity) int {
		return cmp.Compare(a.name, b.name)
	})
	return out
}

// resolver turns ids into names. Without a registry the id itself is shown.
type resolver struct {
	reg *language.Registry
}

func (r resolver) classifier(id string) *language.Classifier {
	if r.reg == nil {
		return nil
	}
	return r.reg.Classifier(id)
}

func (r resolver) name(id string) string {
	if c := r.classifier(id); c != nil {
		return c.Name
	}
	if r.reg != nil {
		if d := r.reg.DataType(id); d != nil {
			return d.Name
		}
	}
	if id == "" {
		return "???"
	}
	return id
}

func (r resolver) typeName(f *language.Feature) string {
	switch {
	case f.Classifier != nil:
		return f.Classifier.Name
	case f.DataType != nil:
		return f.DataType.Name
	}
	return r.name(f.TypeID)
}

func isNode(id string) bool {
	return id == language.BuiltinNodeID
}

func links(c *language.Classifier) []*language.Feature {
	var out []*language.Feature
	for _, f := range c.Features {
		if f.Kind != language.PropertyFeature {
			out = append(out, f)
		}
	}
	return out
}

func properties(c *language.Classifier) []*language.Feature {
	var out []*language.Feature
	for _, f := range c.Features {
		if f.Kind == language.PropertyFeature {
			out = append(out, f)
		}
	}
	return out
}

// lines collects output one indented line at a time.
type lines struct {
	sb     strings.Builder
	step   string
	indent string
}

func (l *lines) add(parts ...string) {
	for _, p := range parts {
		l.sb.WriteString(l.indent)
		l.sb.WriteString(p)
		l.sb.WriteByte('\n')
	}
}

func (l *lines) blank() {
	l.sb.WriteByte('\n')
}

func (l *lines) in() {
	l.indent += l.step
}

func (l *lines) out() {
	l.indent = l.indent[:max(0, len(l.indent)-len(l.step))]
}

func (l *lines) String() string {
	return l.sb.String()
}
