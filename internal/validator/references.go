package validator

import (
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/index"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

type ReferenceOptions struct {
	// External accepts target ids that are not in the chunk, such as ids of
	// registered language entities.
	External func(id string) bool
}

// ValidateReferences checks a syntactically valid chunk against a language
// definition and for self-consistency. With a nil definition only the
// language independent checks run: parent/child agreement, dangling target
// ids and containment cycles.
func ValidateReferences(c *chunk.Chunk, def language.Definition, opts ReferenceOptions) Result {
	var res Result
	if c == nil {
		return res
	}
	r := &referenceChecker{
		idx:    index.Build(c),
		def:    def,
		opts:   opts,
		values: newValueChecker(),
	}
	for _, n := range c.Nodes {
		path := NodePath(n.ID)
		if def != nil {
			r.checkLanguage(&res, n, path)
		}
		r.checkParentChild(&res, n, path)
		r.checkTargets(&res, n, path)
	}
	if def != nil {
		r.checkUsedLanguages(&res, c)
	}
	r.checkCycles(&res)
	return res
}

type referenceChecker struct {
	idx    *index.ChunkIndex
	def    language.Definition
	opts   ReferenceOptions
	values *valueChecker
}

func (r *referenceChecker) checkLanguage(res *Result, n *chunk.Node, path Path) {
	cls := r.def.ResolveClassifier(n.Concept)
	if cls == nil {
		res.add(ReferenceIssue, CodeUnknownConcept, path.Field("concept"), "unknown concept %s", n.Concept)
		return
	}

	for _, f := range cls.AllFeatures() {
		count := r.valueCount(n, f)
		if !f.Optional && count == 0 {
			res.add(ConsistencyIssue, CodeMultiplicity, path, "required %s %q of concept %s has no value",
				strings.ToLower(f.Kind.String()), f.Key, cls.Key)
		}
		if !f.Multiple && count > 1 {
			res.add(ConsistencyIssue, CodeMultiplicity, path, "%s %q of concept %s holds %d values, at most one allowed",
				strings.ToLower(f.Kind.String()), f.Key, cls.Key, count)
		}
	}

	for _, p := range n.Properties {
		pp := path.Key("properties", p.Property.Key)
		f := r.feature(res, cls, p.Property, language.PropertyFeature, pp)
		if f == nil || p.Value == nil || f.DataType == nil {
			continue
		}
		if msg := r.values.check(f.DataType, *p.Value); msg != "" {
			res.add(ReferenceIssue, CodePropertyValueType, pp.Field("value"), "%s", msg)
		}
	}
	for _, ct := range n.Containments {
		cp := path.Key("children", ct.Containment.Key)
		f := r.feature(res, cls, ct.Containment, language.ContainmentFeature, cp)
		if f == nil {
			continue
		}
		for _, id := range ct.Children {
			r.checkLinkType(res, f, id, cp)
		}
	}
	for _, ref := range n.References {
		rp := path.Key("references", ref.Reference.Key)
		f := r.feature(res, cls, ref.Reference, language.ReferenceFeature, rp)
		if f == nil {
			continue
		}
		for _, t := range ref.Targets {
			if t.Reference != nil {
				r.checkLinkType(res, f, *t.Reference, rp)
			}
		}
	}
}

// feature resolves a feature entry and reports undeclared features and
// kind mismatches. It returns nil when the entry cannot be checked further.
func (r *referenceChecker) feature(res *Result, cls *language.Classifier, mp chunk.MetaPointer, kind language.FeatureKind, path Path) *language.Feature {
	f := cls.ResolveFeature(mp)
	if f == nil {
		res.add(ReferenceIssue, CodeUndeclaredFeature, path, "%s %s is not declared on concept %s",
			strings.ToLower(kind.String()), mp, cls.Key)
		return nil
	}
	if f.Kind != kind {
		res.add(ReferenceIssue, CodeFeatureKindMismatch, path, "%s is a %s, not a %s",
			f.Key, strings.ToLower(f.Kind.String()), strings.ToLower(kind.String()))
		return nil
	}
	return f
}

// checkLinkType only looks at targets inside the chunk.
func (r *referenceChecker) checkLinkType(res *Result, f *language.Feature, id string, path Path) {
	target := r.idx.Node(id)
	if target == nil || f.Classifier == nil {
		return
	}
	tc := r.def.ResolveClassifier(target.Concept)
	if tc == nil {
		return
	}
	if !r.def.IsSubtype(tc, f.Classifier) {
		res.add(ReferenceIssue, CodeTypeMismatch, path, "node %q has concept %s, which is not a %s",
			id, tc.Key, f.Classifier.Key)
	}
}

// valueCount counts non-null property values, children or targets of f on n.
func (r *referenceChecker) valueCount(n *chunk.Node, f *language.Feature) int {
	mp := f.MetaPointer()
	count := 0
	switch f.Kind {
	case language.PropertyFeature:
		for _, p := range n.Properties {
			if p.Property.Equal(mp) && p.Value != nil {
				count++
			}
		}
	case language.ContainmentFeature:
		for _, ct := range n.Containments {
			if ct.Containment.Equal(mp) {
				count += len(ct.Children)
			}
		}
	case language.ReferenceFeature:
		for _, ref := range n.References {
			if ref.Reference.Equal(mp) {
				count += len(ref.Targets)
			}
		}
	}
	return count
}

func (r *referenceChecker) checkParentChild(res *Result, n *chunk.Node, path Path) {
	for _, ct := range n.Containments {
		for _, id := range ct.Children {
			r.checkChildParent(res, n, id, path.Key("children", ct.Containment.Key))
		}
	}
	for _, id := range n.Annotations {
		r.checkChildParent(res, n, id, path.Field("annotations"))
	}

	if n.Parent == nil || !r.idx.Has(*n.Parent) {
		return
	}
	if len(r.idx.Owners[n.ID]) == 0 {
		res.add(ConsistencyIssue, CodeOrphanParent, path.Field("parent"),
			"node %q has parent %q, but %q does not contain it", n.ID, *n.Parent, *n.Parent)
	}
}

// checkChildParent skips children that are not part of the chunk.
func (r *referenceChecker) checkChildParent(res *Result, owner *chunk.Node, id string, path Path) {
	child := r.idx.Node(id)
	if child == nil {
		return
	}
	if child.Parent == nil {
		res.add(ConsistencyIssue, CodeParentMismatch, path,
			"child %q of %q has no parent", id, owner.ID)
		return
	}
	if *child.Parent != owner.ID {
		res.add(ConsistencyIssue, CodeParentMismatch, path,
			"child %q of %q has parent %q", id, owner.ID, *child.Parent)
	}
}

func (r *referenceChecker) checkTargets(res *Result, n *chunk.Node, path Path) {
	for _, ref := range n.References {
		for i, t := range ref.Targets {
			if t.Reference == nil {
				continue
			}
			id := *t.Reference
			if r.idx.Has(id) || (r.opts.External != nil && r.opts.External(id)) {
				continue
			}
			res.add(ReferenceIssue, CodeUnresolvedReference,
				path.Key("references", ref.Reference.Key).Index("targets", i),
				"reference target %q not found", id)
		}
	}
}

func (r *referenceChecker) checkUsedLanguages(res *Result, c *chunk.Chunk) {
	for _, p := range r.idx.UsedPairs() {
		declared := false
		for _, l := range c.Languages {
			if l.Key == p.Language && l.Version == p.Version {
				declared = true
				break
			}
		}
		if !declared {
			res.add(DependencyIssue, CodeUndeclaredLanguage, Path{}.Field("languages"),
				"language %s@%s is used but not declared", p.Language, p.Version)
		}
	}
}

// checkCycles reports each containment cycle once, at its smallest id.
func (r *referenceChecker) checkCycles(res *Result) {
	for _, cycle := range r.idx.Cycles() {
		res.add(ConsistencyIssue, CodeContainmentCycle, NodePath(cycle[0]),
			"containment cycle: %s", strings.Join(cycle, " -> "))
	}
}
