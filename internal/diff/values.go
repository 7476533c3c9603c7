package diff

import (
	"fmt"
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

// Value is the payload of a diff entry. The set of implementations is closed.
type Value interface {
	Kind() string
	String() string
	isValue()
}

type PropertyValue struct {
	Property chunk.MetaPointer `json:"property" yaml:"property"`
	Value    *string           `json:"value" yaml:"value"`
}

// ChildValue holds the child ids of one containment, or the single id that
// went missing.
type ChildValue struct {
	Containment chunk.MetaPointer `json:"containment" yaml:"containment"`
	Children    []string          `json:"children" yaml:"children"`
}

type ReferenceValue struct {
	Reference chunk.MetaPointer       `json:"reference" yaml:"reference"`
	Targets   []chunk.ReferenceTarget `json:"targets" yaml:"targets"`
}

type TargetValue struct {
	Reference chunk.MetaPointer     `json:"reference" yaml:"reference"`
	Target    chunk.ReferenceTarget `json:"target" yaml:"target"`
}

type UsedLanguageValue struct {
	Language chunk.UsedLanguage `json:"language" yaml:"language"`
}

type NodeValue struct {
	ID      string            `json:"id" yaml:"id"`
	Concept chunk.MetaPointer `json:"concept" yaml:"concept"`
}

func (PropertyValue) Kind() string     { return "property" }
func (ChildValue) Kind() string        { return "child" }
func (ReferenceValue) Kind() string    { return "reference" }
func (TargetValue) Kind() string       { return "target" }
func (UsedLanguageValue) Kind() string { return "language" }
func (NodeValue) Kind() string         { return "node" }

func (PropertyValue) isValue()     {}
func (ChildValue) isValue()        {}
func (ReferenceValue) isValue()    {}
func (TargetValue) isValue()       {}
func (UsedLanguageValue) isValue() {}
func (NodeValue) isValue()         {}

func (v PropertyValue) String() string {
	if v.Value == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *v.Value)
}

func (v ChildValue) String() string {
	return "[" + strings.Join(v.Children, ", ") + "]"
}

func (v ReferenceValue) String() string {
	parts := make([]string, len(v.Targets))
	for i, t := range v.Targets {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v TargetValue) String() string {
	return v.Target.String()
}

func (v UsedLanguageValue) String() string {
	return v.Language.String()
}

func (v NodeValue) String() string {
	return fmt.Sprintf("%s (%s)", v.ID, v.Concept.Key)
}
