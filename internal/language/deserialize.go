package language

import (
	"fmt"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/index"
)

// Deserialize reads the languages out of a LionCore M3 chunk. Nodes are
// matched on concept key only, so any M3 version is accepted. Entities whose
// nodes are missing from the chunk are skipped.
func Deserialize(c *chunk.Chunk) ([]*Language, error) {
	if c == nil {
		return nil, fmt.Errorf("no chunk to deserialize")
	}
	idx := index.Build(c)
	var langs []*Language
	for _, n := range c.Nodes {
		if n.Concept.Key != KeyLanguage {
			continue
		}
		l := &Language{
			ID:        n.ID,
			Key:       propertyOf(n, KeyIKeyedKey),
			Name:      propertyOf(n, BuiltinNameKey),
			Version:   propertyOf(n, KeyLanguageVersion),
			DependsOn: targetsOf(n, KeyLanguageDependsOn),
		}
		for _, id := range childrenOf(n, KeyLanguageEntities) {
			e := idx.Node(id)
			if e == nil {
				continue
			}
			switch e.Concept.Key {
			case KeyConcept, KeyInterface, KeyAnnotation:
				l.Classifiers = append(l.Classifiers, classifierFrom(e, l, idx))
			case KeyPrimitiveType, KeyEnumeration:
				l.DataTypes = append(l.DataTypes, dataTypeFrom(e, l, idx))
			}
		}
		langs = append(langs, l)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("chunk contains no %s node", KeyLanguage)
	}
	return langs, nil
}

// DeserializeRegistry registers the languages of several chunks in one registry.
func DeserializeRegistry(chunks ...*chunk.Chunk) (*Registry, error) {
	r := NewRegistry()
	for _, c := range chunks {
		langs, err := Deserialize(c)
		if err != nil {
			return nil, err
		}
		r.Register(langs...)
	}
	return r, nil
}

func classifierFrom(n *chunk.Node, l *Language, idx *index.ChunkIndex) *Classifier {
	c := &Classifier{
		ID:       n.ID,
		Key:      propertyOf(n, KeyIKeyedKey),
		Name:     propertyOf(n, BuiltinNameKey),
		Language: l,
	}
	switch n.Concept.Key {
	case KeyConcept:
		c.Kind = ConceptKind
		c.Abstract = propertyOf(n, KeyConceptAbstract) == "true"
		c.Partition = propertyOf(n, KeyConceptPartition) == "true"
		c.Extends = targetsOf(n, KeyConceptExtends)
		c.Implements = targetsOf(n, KeyConceptImplements)
	case KeyInterface:
		c.Kind = InterfaceKind
		c.Extends = targetsOf(n, KeyInterfaceExtends)
	case KeyAnnotation:
		c.Kind = AnnotationKind
		c.Extends = targetsOf(n, KeyAnnotationExtends)
		c.Implements = targetsOf(n, KeyAnnotationImplements)
		if annotates := targetsOf(n, KeyAnnotationAnnotates); len(annotates) > 0 {
			c.Annotates = annotates[0]
		}
	}
	for _, id := range childrenOf(n, KeyClassifierFeatures) {
		fn := idx.Node(id)
		if fn == nil {
			continue
		}
		f := &Feature{
			ID:       fn.ID,
			Key:      propertyOf(fn, KeyIKeyedKey),
			Name:     propertyOf(fn, BuiltinNameKey),
			Optional: propertyOf(fn, KeyFeatureOptional) == "true",
			Multiple: propertyOf(fn, KeyLinkMultiple) == "true",
			Owner:    c,
		}
		switch fn.Concept.Key {
		case KeyProperty:
			f.Kind = PropertyFeature
			f.TypeID = firstTarget(fn, KeyPropertyType)
		case KeyContainment:
			f.Kind = ContainmentFeature
			f.TypeID = firstTarget(fn, KeyLinkType)
		case KeyReference:
			f.Kind = ReferenceFeature
			f.TypeID = firstTarget(fn, KeyLinkType)
		default:
			continue
		}
		c.Features = append(c.Features, f)
	}
	return c
}

func dataTypeFrom(n *chunk.Node, l *Language, idx *index.ChunkIndex) *DataType {
	d := &DataType{
		ID:       n.ID,
		Key:      propertyOf(n, KeyIKeyedKey),
		Name:     propertyOf(n, BuiltinNameKey),
		Kind:     PrimitiveKind,
		Language: l,
	}
	if n.Concept.Key == KeyEnumeration {
		d.Kind = EnumerationKind
		for _, id := range childrenOf(n, KeyEnumerationLiterals) {
			if lit := idx.Node(id); lit != nil {
				d.Literals = append(d.Literals, propertyOf(lit, KeyIKeyedKey))
			}
		}
	}
	return d
}

func propertyOf(n *chunk.Node, key string) string {
	if p := chunk.FindProperty(n, key); p != nil && p.Value != nil {
		return *p.Value
	}
	return ""
}

func childrenOf(n *chunk.Node, key string) []string {
	if c := chunk.FindContainment(n, key); c != nil {
		return c.Children
	}
	return nil
}

// targetsOf returns the target ids of a reference, falling back to
// resolveInfo for targets without an id.
func targetsOf(n *chunk.Node, key string) []string {
	r := chunk.FindReference(n, key)
	if r == nil {
		return nil
	}
	var ids []string
	for _, t := range r.Targets {
		switch {
		case t.Reference != nil:
			ids = append(ids, *t.Reference)
		case t.ResolveInfo != nil:
			ids = append(ids, *t.ResolveInfo)
		}
	}
	return ids
}

func firstTarget(n *chunk.Node, key string) string {
	if ids := targetsOf(n, key); len(ids) > 0 {
		return ids[0]
	}
	return ""
}
