package chunk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Kind tells which wire shape a document has. It is decided once, when the
// document is parsed.
type Kind int

const (
	KindUnknown Kind = iota
	KindChunk
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindNode:
		return "node"
	default:
		return "unknown"
	}
}

// Document is a parsed input. Raw keeps the decoded JSON tree for shape checks;
// Chunk or Node is a lenient typed view of the same data where wrongly typed
// fields decode to zero values.
type Document struct {
	Kind  Kind
	Raw   any
	Chunk *Chunk
	Node  *Node
}

// Parse decodes JSON input. Only unparseable input is an error; shape problems
// are left to the syntax validator.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return NewDocument(raw), nil
}

// ParseYAML accepts the same structure written as YAML.
func ParseYAML(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	// Round-trip through JSON so numbers and maps look exactly like JSON input.
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("unsupported YAML structure: %w", err)
	}
	return Parse(js)
}

// ReadFile parses a chunk or node file; .yaml and .yml files are read as YAML.
func ReadFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = ParseYAML(content)
	default:
		doc, err = Parse(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func Marshal(c *Chunk) ([]byte, error) {
	return json.Marshal(c)
}

func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// NewDocument classifies a decoded JSON value and builds its typed view.
func NewDocument(raw any) *Document {
	doc := &Document{Raw: raw}
	obj, ok := raw.(map[string]any)
	if !ok {
		return doc
	}
	_, hasNodes := obj["nodes"]
	_, hasLanguages := obj["languages"]
	_, hasVersion := obj["serializationFormatVersion"]
	_, hasID := obj["id"]
	_, hasConcept := obj["concept"]
	switch {
	case hasNodes || hasLanguages || hasVersion:
		doc.Kind = KindChunk
		doc.Chunk = chunkFromRaw(obj)
	case hasID && hasConcept:
		doc.Kind = KindNode
		doc.Node = nodeFromRaw(obj)
	}
	return doc
}

func chunkFromRaw(obj map[string]any) *Chunk {
	c := &Chunk{
		SerializationFormatVersion: stringOf(obj["serializationFormatVersion"]),
		Languages:                  []UsedLanguage{},
		Nodes:                      []*Node{},
	}
	for _, l := range arrayOf(obj["languages"]) {
		lm, ok := l.(map[string]any)
		if !ok {
			continue
		}
		c.Languages = append(c.Languages, UsedLanguage{Key: stringOf(lm["key"]), Version: stringOf(lm["version"])})
	}
	for _, n := range arrayOf(obj["nodes"]) {
		nm, ok := n.(map[string]any)
		if !ok {
			continue
		}
		c.Nodes = append(c.Nodes, nodeFromRaw(nm))
	}
	return c
}

func nodeFromRaw(obj map[string]any) *Node {
	n := &Node{
		ID:           stringOf(obj["id"]),
		Concept:      metaPointerFromRaw(obj["concept"]),
		Parent:       optString(obj["parent"]),
		Properties:   []Property{},
		Containments: []Containment{},
		References:   []Reference{},
	}
	for _, p := range arrayOf(obj["properties"]) {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		n.Properties = append(n.Properties, Property{
			Property: metaPointerFromRaw(pm["property"]),
			Value:    optString(pm["value"]),
		})
	}
	for _, ch := range arrayOf(obj["children"]) {
		cm, ok := ch.(map[string]any)
		if !ok {
			continue
		}
		containment := Containment{Containment: metaPointerFromRaw(cm["containment"]), Children: []string{}}
		for _, id := range arrayOf(cm["children"]) {
			if s, ok := id.(string); ok {
				containment.Children = append(containment.Children, s)
			}
		}
		n.Containments = append(n.Containments, containment)
	}
	for _, r := range arrayOf(obj["references"]) {
		rm, ok := r.(map[string]any)
		if !ok {
			continue
		}
		ref := Reference{Reference: metaPointerFromRaw(rm["reference"]), Targets: []ReferenceTarget{}}
		for _, t := range arrayOf(rm["targets"]) {
			tm, ok := t.(map[string]any)
			if !ok {
				continue
			}
			ref.Targets = append(ref.Targets, ReferenceTarget{
				ResolveInfo: optString(tm["resolveInfo"]),
				Reference:   optString(tm["reference"]),
			})
		}
		n.References = append(n.References, ref)
	}
	for _, a := range arrayOf(obj["annotations"]) {
		if s, ok := a.(string); ok {
			n.Annotations = append(n.Annotations, s)
		}
	}
	return n
}

func metaPointerFromRaw(v any) MetaPointer {
	m, ok := v.(map[string]any)
	if !ok {
		return MetaPointer{}
	}
	return MetaPointer{
		Language: stringOf(m["language"]),
		Version:  stringOf(m["version"]),
		Key:      stringOf(m["key"]),
	}
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func optString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func arrayOf(v any) []any {
	a, _ := v.([]any)
	return a
}
