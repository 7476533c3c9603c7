package validator

import (
	"fmt"
	"sort"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

type SyntaxOptions struct {
	// SerializationFormatVersion defaults to chunk.SerializationFormatVersion.
	SerializationFormatVersion string
	// Recursive descends into every node and nested entry. Without it only the
	// fields of the given chunk or node object are checked.
	Recursive           bool
	IgnoreUnknownFields bool
}

var (
	chunkFields        = []string{"serializationFormatVersion", "languages", "nodes"}
	usedLanguageFields = []string{"key", "version"}
	nodeFields         = []string{"id", "concept", "properties", "children", "references", "annotations", "parent"}
	propertyFields     = []string{"property", "value"}
	containmentFields  = []string{"containment", "children"}
	referenceFields    = []string{"reference", "targets"}
	targetFields       = []string{"resolveInfo", "reference"}
	metaPointerFields  = []string{"language", "version", "key"}
)

// ValidateSyntax checks the shape of a parsed document. It never stops at the
// first problem.
func ValidateSyntax(doc *chunk.Document, opts SyntaxOptions) Result {
	if opts.SerializationFormatVersion == "" {
		opts.SerializationFormatVersion = chunk.SerializationFormatVersion
	}
	s := &syntaxWalker{opts: opts}
	if opts.Recursive {
		s.owners = make(map[string]int)
	}
	if doc == nil {
		s.res.add(SyntaxIssue, CodeUnknownDocument, Path{}, "no document")
		return s.res
	}
	switch doc.Kind {
	case chunk.KindChunk:
		s.chunk(doc.Raw)
	case chunk.KindNode:
		s.node(doc.Raw, Path{})
	default:
		s.res.add(SyntaxIssue, CodeUnknownDocument, Path{}, "document is neither a chunk nor a node")
	}
	return s.res
}

type syntaxWalker struct {
	opts   SyntaxOptions
	res    Result
	owners map[string]int
}

func (s *syntaxWalker) chunk(raw any) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, Path{}, "chunk is not an object")
		return
	}
	s.unknownFields(m, chunkFields, Path{})

	if version, ok := s.stringField(m, "serializationFormatVersion", Path{}); ok && version != s.opts.SerializationFormatVersion {
		s.res.add(SyntaxIssue, CodeVersionMismatch, Path{}.Field("serializationFormatVersion"),
			"serialization format version is %q, expected %q", version, s.opts.SerializationFormatVersion)
	}

	if langs, ok := s.arrayField(m, "languages", Path{}); ok && s.opts.Recursive {
		for i, l := range langs {
			s.usedLanguage(l, Path{}.Index("languages", i))
		}
	}

	nodes, ok := s.arrayField(m, "nodes", Path{})
	if !ok || !s.opts.Recursive {
		return
	}
	seen := make(map[string]bool)
	for i, n := range nodes {
		path := Path{}.Index("nodes", i)
		if nm, ok := n.(map[string]any); ok {
			if id, ok := nm["id"].(string); ok && id != "" {
				path = NodePath(id)
				if seen[id] {
					s.res.add(SyntaxIssue, CodeDuplicateID, path, "duplicate node id %q", id)
				}
				seen[id] = true
			}
		}
		s.node(n, path)
	}
}

func (s *syntaxWalker) usedLanguage(raw any, path Path) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, path, "used language is not an object")
		return
	}
	s.unknownFields(m, usedLanguageFields, path)
	s.nonEmptyString(m, "key", path)
	s.nonEmptyString(m, "version", path)
}

func (s *syntaxWalker) node(raw any, path Path) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, path, "node is not an object")
		return
	}
	s.unknownFields(m, nodeFields, path)

	if id, ok := s.stringField(m, "id", path); ok && id == "" {
		s.res.add(SyntaxIssue, CodeEmptyID, path.Field("id"), "node id is empty")
	}
	s.metaPointerField(m, "concept", path)

	if parent, present := m["parent"]; !present {
		s.res.add(SyntaxIssue, CodeMissingField, path, "missing field %q", "parent")
	} else if _, isString := parent.(string); parent != nil && !isString {
		s.res.add(SyntaxIssue, CodeWrongType, path.Field("parent"), "parent must be a string or null")
	}

	props, propsOK := s.arrayField(m, "properties", path)
	children, childrenOK := s.arrayField(m, "children", path)
	refs, refsOK := s.arrayField(m, "references", path)
	annotations, hasAnnotations := m["annotations"]
	if hasAnnotations {
		if _, ok := annotations.([]any); !ok {
			s.res.add(SyntaxIssue, CodeWrongType, path.Field("annotations"), "annotations must be an array")
		}
	}
	if !s.opts.Recursive {
		return
	}

	if propsOK {
		keys := make(map[string]bool)
		for i, p := range props {
			s.property(p, s.entryPath(path, "properties", "property", p, i), keys)
		}
	}
	if childrenOK {
		keys := make(map[string]bool)
		for i, c := range children {
			s.containment(c, s.entryPath(path, "children", "containment", c, i), keys)
		}
	}
	if refsOK {
		keys := make(map[string]bool)
		for i, r := range refs {
			s.reference(r, s.entryPath(path, "references", "reference", r, i), keys)
		}
	}
	if list, ok := annotations.([]any); ok {
		for i, a := range list {
			if id, ok := a.(string); !ok || id == "" {
				s.res.add(SyntaxIssue, CodeInvalidChildID, path.Index("annotations", i), "annotation must be a non-empty node id")
			}
		}
	}
}

// entryPath names a feature entry by its meta-pointer key when it has one.
func (s *syntaxWalker) entryPath(node Path, collection, pointerField string, raw any, i int) Path {
	if m, ok := raw.(map[string]any); ok {
		if mp, ok := m[pointerField].(map[string]any); ok {
			if key, ok := mp["key"].(string); ok && key != "" {
				return node.Key(collection, key)
			}
		}
	}
	return node.Index(collection, i)
}

func (s *syntaxWalker) property(raw any, path Path, keys map[string]bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, path, "property is not an object")
		return
	}
	s.unknownFields(m, propertyFields, path)
	s.featureKey(m, "property", path, keys)
	value, present := m["value"]
	if !present {
		s.res.add(SyntaxIssue, CodeMissingField, path, "missing field %q", "value")
	} else if _, isString := value.(string); value != nil && !isString {
		s.res.add(SyntaxIssue, CodeInvalidPropertyValue, path.Field("value"), "property value must be a string or null")
	}
}

func (s *syntaxWalker) containment(raw any, path Path, keys map[string]bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, path, "containment is not an object")
		return
	}
	s.unknownFields(m, containmentFields, path)
	s.featureKey(m, "containment", path, keys)
	children, ok := s.arrayField(m, "children", path)
	if !ok {
		return
	}
	for i, c := range children {
		id, ok := c.(string)
		if !ok || id == "" {
			s.res.add(SyntaxIssue, CodeInvalidChildID, path.Index("children", i), "child must be a non-empty node id")
			continue
		}
		s.owners[id]++
		if s.owners[id] > 1 {
			s.res.add(ConsistencyIssue, CodeMultipleOwners, path.Index("children", i), "node %q is listed as a child more than once", id)
		}
	}
}

func (s *syntaxWalker) reference(raw any, path Path, keys map[string]bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeNotAnObject, path, "reference is not an object")
		return
	}
	s.unknownFields(m, referenceFields, path)
	s.featureKey(m, "reference", path, keys)
	targets, ok := s.arrayField(m, "targets", path)
	if !ok {
		return
	}
	for i, t := range targets {
		tp := path.Index("targets", i)
		tm, ok := t.(map[string]any)
		if !ok {
			s.res.add(SyntaxIssue, CodeNotAnObject, tp, "reference target is not an object")
			continue
		}
		s.unknownFields(tm, targetFields, tp)
		info := s.optionalString(tm, "resolveInfo", tp)
		id := s.optionalString(tm, "reference", tp)
		if info == nil && id == nil {
			s.res.add(SyntaxIssue, CodeEmptyTarget, tp, "reference target has neither resolveInfo nor reference")
		}
	}
}

// featureKey checks the meta-pointer of a feature entry and records its key to
// catch the same feature listed twice on one node.
func (s *syntaxWalker) featureKey(m map[string]any, field string, path Path, keys map[string]bool) {
	if !s.metaPointerField(m, field, path) {
		return
	}
	mp := m[field].(map[string]any)
	id := fmt.Sprintf("%s/%s/%s", mp["language"], mp["version"], mp["key"])
	if keys[id] {
		s.res.add(SyntaxIssue, CodeDuplicateFeature, path, "%s %q is listed more than once", field, mp["key"])
	}
	keys[id] = true
}

// metaPointerField reports whether m[field] is a complete meta-pointer.
func (s *syntaxWalker) metaPointerField(m map[string]any, field string, path Path) bool {
	raw, present := m[field]
	if !present {
		s.res.add(SyntaxIssue, CodeMissingField, path, "missing field %q", field)
		return false
	}
	mp, ok := raw.(map[string]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeIncompleteMetaPointer, path.Field(field), "%s is not a meta-pointer object", field)
		return false
	}
	s.unknownFields(mp, metaPointerFields, path.Field(field))
	complete := true
	for _, f := range metaPointerFields {
		if v, ok := mp[f].(string); !ok || v == "" {
			s.res.add(SyntaxIssue, CodeIncompleteMetaPointer, path.Field(field), "meta-pointer %q must be a non-empty string", f)
			complete = false
		}
	}
	return complete
}

func (s *syntaxWalker) stringField(m map[string]any, field string, path Path) (string, bool) {
	raw, present := m[field]
	if !present {
		s.res.add(SyntaxIssue, CodeMissingField, path, "missing field %q", field)
		return "", false
	}
	str, ok := raw.(string)
	if !ok {
		s.res.add(SyntaxIssue, CodeWrongType, path.Field(field), "%s must be a string", field)
		return "", false
	}
	return str, true
}

func (s *syntaxWalker) nonEmptyString(m map[string]any, field string, path Path) {
	if str, ok := s.stringField(m, field, path); ok && str == "" {
		s.res.add(SyntaxIssue, CodeWrongType, path.Field(field), "%s must not be empty", field)
	}
}

// optionalString returns nil for an absent or null field.
func (s *syntaxWalker) optionalString(m map[string]any, field string, path Path) *string {
	raw, present := m[field]
	if !present || raw == nil {
		return nil
	}
	str, ok := raw.(string)
	if !ok {
		s.res.add(SyntaxIssue, CodeWrongType, path.Field(field), "%s must be a string or null", field)
		return nil
	}
	return &str
}

func (s *syntaxWalker) arrayField(m map[string]any, field string, path Path) ([]any, bool) {
	raw, present := m[field]
	if !present {
		s.res.add(SyntaxIssue, CodeMissingField, path, "missing field %q", field)
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		s.res.add(SyntaxIssue, CodeWrongType, path.Field(field), "%s must be an array", field)
		return nil, false
	}
	return list, true
}

func (s *syntaxWalker) unknownFields(m map[string]any, known []string, path Path) {
	if s.opts.IgnoreUnknownFields {
		return
	}
	var unknown []string
	for k := range m {
		if !contains(known, k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		s.res.warn(SyntaxIssue, CodeUnknownField, path, "unknown field %q", k)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
