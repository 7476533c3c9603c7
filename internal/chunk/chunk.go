package chunk

import "fmt"

// SerializationFormatVersion is the only serialization format this tool accepts
// unless configured otherwise.
const SerializationFormatVersion = "2023.1"

// MetaPointer identifies a language element by key within a (language, version) pair.
type MetaPointer struct {
	Language string `json:"language" yaml:"language"`
	Version  string `json:"version" yaml:"version"`
	Key      string `json:"key" yaml:"key"`
}

// Equal reports whether all three fields match exactly.
func (m MetaPointer) Equal(other MetaPointer) bool {
	return m.Language == other.Language && m.Version == other.Version && m.Key == other.Key
}

func (m MetaPointer) IsComplete() bool {
	return m.Language != "" && m.Version != "" && m.Key != ""
}

func (m MetaPointer) String() string {
	return fmt.Sprintf("{language: %s, version: %s, key: %s}", m.Language, m.Version, m.Key)
}

type UsedLanguage struct {
	Key     string `json:"key" yaml:"key"`
	Version string `json:"version" yaml:"version"`
}

func (l UsedLanguage) String() string {
	return l.Key + "@" + l.Version
}

type Chunk struct {
	SerializationFormatVersion string         `json:"serializationFormatVersion" yaml:"serializationFormatVersion"`
	Languages                  []UsedLanguage `json:"languages" yaml:"languages"`
	Nodes                      []*Node        `json:"nodes" yaml:"nodes"`
}

type Node struct {
	ID           string        `json:"id" yaml:"id"`
	Concept      MetaPointer   `json:"concept" yaml:"concept"`
	Properties   []Property    `json:"properties" yaml:"properties"`
	Containments []Containment `json:"children" yaml:"children"`
	References   []Reference   `json:"references" yaml:"references"`
	Annotations  []string      `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Parent       *string       `json:"parent" yaml:"parent"`
}

// ParentID returns the parent id, or "" for a root node.
func (n *Node) ParentID() string {
	if n.Parent == nil {
		return ""
	}
	return *n.Parent
}

type Property struct {
	Property MetaPointer `json:"property" yaml:"property"`
	Value    *string     `json:"value" yaml:"value"`
}

// Containment is a "children" entry of a node: the owned ids under one containment feature.
type Containment struct {
	Containment MetaPointer `json:"containment" yaml:"containment"`
	Children    []string    `json:"children" yaml:"children"`
}

type Reference struct {
	Reference MetaPointer       `json:"reference" yaml:"reference"`
	Targets   []ReferenceTarget `json:"targets" yaml:"targets"`
}

type ReferenceTarget struct {
	ResolveInfo *string `json:"resolveInfo" yaml:"resolveInfo"`
	Reference   *string `json:"reference" yaml:"reference"`
}

func (t ReferenceTarget) String() string {
	return fmt.Sprintf("{resolveInfo: %s, reference: %s}", deref(t.ResolveInfo), deref(t.Reference))
}

// Ptr returns a pointer to v; handy for optional wire strings.
func Ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *s)
}
