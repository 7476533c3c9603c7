package diff

import (
	"fmt"
	"slices"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/index"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
)

// Entry is a matched, added or deleted element.
type Entry struct {
	Path  string `json:"path" yaml:"path"`
	Kind  string `json:"kind" yaml:"kind"`
	Value Value  `json:"value" yaml:"value"`
}

type Change struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
	Old  Value  `json:"oldValue" yaml:"oldValue"`
	New  Value  `json:"newValue" yaml:"newValue"`
}

// Result of comparing A (first, old) with B (second, new). Errors holds
// findings that do not fit the four buckets.
type Result struct {
	Matched []Entry  `json:"matched" yaml:"matched"`
	Changed []Change `json:"changed" yaml:"changed"`
	Added   []Entry  `json:"added" yaml:"added"`
	Deleted []Entry  `json:"deleted" yaml:"deleted"`
	Errors  []string `json:"errors" yaml:"errors"`
}

// Equal reports whether nothing differs.
func (r Result) Equal() bool {
	return len(r.Changed) == 0 && len(r.Added) == 0 && len(r.Deleted) == 0 && len(r.Errors) == 0
}

func (r *Result) matched(path string, v Value) {
	r.Matched = append(r.Matched, Entry{Path: path, Kind: v.Kind(), Value: v})
}

func (r *Result) added(path string, v Value) {
	r.Added = append(r.Added, Entry{Path: path, Kind: v.Kind(), Value: v})
}

func (r *Result) deleted(path string, v Value) {
	r.Deleted = append(r.Deleted, Entry{Path: path, Kind: v.Kind(), Value: v})
}

func (r *Result) changed(path string, from, to Value) {
	r.Changed = append(r.Changed, Change{Path: path, Kind: from.Kind(), Old: from, New: to})
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// DiffDocuments checks the top level shape of both documents and compares
// them when both are chunks or both are nodes.
func DiffDocuments(a, b *chunk.Document) Result {
	var res Result
	if a == nil || b == nil {
		res.errorf("cannot compare a missing document")
		return res
	}
	shallow := validator.SyntaxOptions{}
	for _, issue := range validator.ValidateSyntax(a, shallow).Issues {
		res.errorf("first: %s", issue)
	}
	for _, issue := range validator.ValidateSyntax(b, shallow).Issues {
		res.errorf("second: %s", issue)
	}

	switch {
	case a.Kind == chunk.KindChunk && b.Kind == chunk.KindChunk:
		res.merge(DiffChunks(a.Chunk, b.Chunk))
	case a.Kind == chunk.KindNode && b.Kind == chunk.KindNode:
		res.merge(DiffNodes(a.Node, b.Node))
	default:
		res.errorf("cannot compare a %s with a %s", a.Kind, b.Kind)
	}
	return res
}

func (r *Result) merge(other Result) {
	r.Matched = append(r.Matched, other.Matched...)
	r.Changed = append(r.Changed, other.Changed...)
	r.Added = append(r.Added, other.Added...)
	r.Deleted = append(r.Deleted, other.Deleted...)
	r.Errors = append(r.Errors, other.Errors...)
}

// DiffChunks matches nodes and used languages by identity. A and B are
// scanned independently, so added and deleted entries come from two separate
// passes; changes are only looked for from A's side.
func DiffChunks(a, b *chunk.Chunk) Result {
	var res Result
	if a == nil || b == nil {
		res.errorf("cannot compare a missing chunk")
		return res
	}
	if a.SerializationFormatVersion != b.SerializationFormatVersion {
		res.errorf("serialization format versions do not match: %s vs %s",
			a.SerializationFormatVersion, b.SerializationFormatVersion)
	}

	for _, l := range a.Languages {
		path := fmt.Sprintf("languages[%s]", l.Key)
		other := chunk.FindUsedLanguage(b, l.Key)
		switch {
		case other == nil:
			res.deleted(path, UsedLanguageValue{Language: l})
		case other.Version != l.Version:
			res.changed(path, UsedLanguageValue{Language: l}, UsedLanguageValue{Language: *other})
		default:
			res.matched(path, UsedLanguageValue{Language: l})
		}
	}
	for _, l := range b.Languages {
		if chunk.FindUsedLanguage(a, l.Key) == nil {
			res.added(fmt.Sprintf("languages[%s]", l.Key), UsedLanguageValue{Language: l})
		}
	}

	ia, ib := index.Build(a), index.Build(b)
	for _, n := range a.Nodes {
		other := ib.Node(n.ID)
		if other == nil {
			res.deleted(nodePath(n.ID), NodeValue{ID: n.ID, Concept: n.Concept})
			continue
		}
		res.merge(DiffNodes(n, other))
	}
	for _, n := range b.Nodes {
		if !ia.Has(n.ID) {
			res.added(nodePath(n.ID), NodeValue{ID: n.ID, Concept: n.Concept})
		}
	}
	return res
}

// DiffNodes compares two versions of one node. Features are looked up on B
// by key from A's side only: properties and child ids that exist only on B
// are not reported. Reference targets are compared in both directions.
func DiffNodes(a, b *chunk.Node) Result {
	var res Result
	if a == nil || b == nil {
		res.errorf("cannot compare a missing node")
		return res
	}
	path := nodePath(a.ID)
	if !a.Concept.Equal(b.Concept) {
		res.errorf("node %s has concept %s vs %s", a.ID, a.Concept, b.Concept)
	}
	if a.ParentID() != b.ParentID() {
		res.errorf("node %s has parent %s vs %s", a.ID, parentString(a), parentString(b))
	}

	for _, p := range a.Properties {
		pp := fmt.Sprintf("%s.properties[%s]", path, p.Property.Key)
		old := PropertyValue{Property: p.Property, Value: p.Value}
		other := chunk.FindProperty(b, p.Property.Key)
		if other == nil {
			res.errorf("property %s of node %s does not exist in second node", p.Property.Key, a.ID)
			res.deleted(pp, old)
			continue
		}
		if !p.Property.Equal(other.Property) {
			res.errorf("property %s has meta-pointer %s vs %s", p.Property.Key, p.Property, other.Property)
		}
		if equalString(p.Value, other.Value) {
			res.matched(pp, old)
		} else {
			res.changed(pp, old, PropertyValue{Property: other.Property, Value: other.Value})
		}
	}

	for _, c := range a.Containments {
		cp := fmt.Sprintf("%s.children[%s]", path, c.Containment.Key)
		other := chunk.FindContainment(b, c.Containment.Key)
		if other == nil {
			res.errorf("containment %s of node %s does not exist in second node", c.Containment.Key, a.ID)
			res.deleted(cp, ChildValue{Containment: c.Containment, Children: c.Children})
			continue
		}
		if !c.Containment.Equal(other.Containment) {
			res.errorf("containment %s has meta-pointer %s vs %s", c.Containment.Key, c.Containment, other.Containment)
		}
		diffChildren(&res, cp, c, *other)
	}

	for _, r := range a.References {
		rp := fmt.Sprintf("%s.references[%s]", path, r.Reference.Key)
		other := chunk.FindReference(b, r.Reference.Key)
		if other == nil {
			res.errorf("reference %s of node %s does not exist in second node", r.Reference.Key, a.ID)
			res.deleted(rp, ReferenceValue{Reference: r.Reference, Targets: r.Targets})
			continue
		}
		if !r.Reference.Equal(other.Reference) {
			res.errorf("reference %s has meta-pointer %s vs %s", r.Reference.Key, r.Reference, other.Reference)
		}
		diffTargets(&res, rp, r, *other)
	}
	return res
}

// diffChildren reports ids of A missing on B. Extra ids on B are ignored; the
// order of the shared ids decides between matched and changed.
func diffChildren(res *Result, path string, a, b chunk.Containment) {
	inB := make(map[string]bool, len(b.Children))
	for _, id := range b.Children {
		inB[id] = true
	}
	inA := make(map[string]bool, len(a.Children))
	missing := false
	for _, id := range a.Children {
		inA[id] = true
		if !inB[id] {
			missing = true
			res.errorf("child %s is missing in second node", id)
			res.deleted(path, ChildValue{Containment: a.Containment, Children: []string{id}})
		}
	}
	if missing {
		return
	}
	var shared []string
	for _, id := range b.Children {
		if inA[id] {
			shared = append(shared, id)
		}
	}
	old := ChildValue{Containment: a.Containment, Children: a.Children}
	if slices.Equal(a.Children, shared) {
		res.matched(path, old)
	} else {
		res.changed(path, old, ChildValue{Containment: b.Containment, Children: b.Children})
	}
}

func diffTargets(res *Result, path string, a, b chunk.Reference) {
	for i, t := range a.Targets {
		tp := fmt.Sprintf("%s.targets[%d]", path, i)
		old := TargetValue{Reference: a.Reference, Target: t}
		other := chunk.FindTarget(b.Targets, t)
		switch {
		case other == nil:
			res.errorf("reference target %s missing in second node", t)
			res.deleted(tp, old)
		case !equalString(t.Reference, other.Reference) || !equalString(t.ResolveInfo, other.ResolveInfo):
			res.errorf("reference target %s vs %s", t, *other)
			res.changed(tp, old, TargetValue{Reference: b.Reference, Target: *other})
		default:
			res.matched(tp, old)
		}
	}
	for i, t := range b.Targets {
		if chunk.FindTarget(a.Targets, t) == nil {
			res.errorf("reference target %s missing in first node", t)
			res.added(fmt.Sprintf("%s.targets[%d]", path, i), TargetValue{Reference: b.Reference, Target: t})
		}
	}
}

func nodePath(id string) string {
	return fmt.Sprintf("nodes[%s]", id)
}

func parentString(n *chunk.Node) string {
	if n.Parent == nil {
		return "null"
	}
	return *n.Parent
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
