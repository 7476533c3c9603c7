package language

import (
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

// Definition is what the reference validator needs from a language: classifier
// lookup by meta-pointer and, when known, the subtype relation.
type Definition interface {
	ResolveClassifier(mp chunk.MetaPointer) *Classifier
	IsSubtype(sub, super *Classifier) bool
}

type ClassifierKind int

const (
	ConceptKind ClassifierKind = iota
	InterfaceKind
	AnnotationKind
)

func (k ClassifierKind) String() string {
	switch k {
	case InterfaceKind:
		return "Interface"
	case AnnotationKind:
		return "Annotation"
	default:
		return "Concept"
	}
}

type FeatureKind int

const (
	PropertyFeature FeatureKind = iota
	ContainmentFeature
	ReferenceFeature
)

func (k FeatureKind) String() string {
	switch k {
	case ContainmentFeature:
		return "Containment"
	case ReferenceFeature:
		return "Reference"
	default:
		return "Property"
	}
}

type Multiplicity int

const (
	Optional Multiplicity = iota
	Single
	ZeroOrMore
	OneOrMore
)

func (m Multiplicity) String() string {
	switch m {
	case Optional:
		return "Optional"
	case Single:
		return "Single"
	case ZeroOrMore:
		return "ZeroOrMore"
	default:
		return "OneOrMore"
	}
}

type DataTypeKind int

const (
	PrimitiveKind DataTypeKind = iota
	EnumerationKind
)

type Language struct {
	ID          string
	Key         string
	Name        string
	Version     string
	DependsOn   []string
	Classifiers []*Classifier
	DataTypes   []*DataType
}

type Classifier struct {
	ID         string
	Key        string
	Name       string
	Kind       ClassifierKind
	Abstract   bool
	Partition  bool
	Extends    []string // a concept or annotation extends at most one
	Implements []string
	Annotates  string
	Features   []*Feature
	Language   *Language

	supers []*Classifier
	all    []*Feature
}

func (c *Classifier) MetaPointer() chunk.MetaPointer {
	return chunk.MetaPointer{Language: c.Language.Key, Version: c.Language.Version, Key: c.Key}
}

// AllFeatures returns own and inherited features. Inherited features are
// flattened once when the classifier is registered.
func (c *Classifier) AllFeatures() []*Feature {
	if c.all == nil {
		return c.Features
	}
	return c.all
}

// ResolveFeature finds the feature (own or inherited) with exactly this meta-pointer.
func (c *Classifier) ResolveFeature(mp chunk.MetaPointer) *Feature {
	for _, f := range c.AllFeatures() {
		if f.MetaPointer().Equal(mp) {
			return f
		}
	}
	return nil
}

// Supers returns the resolved direct supertypes.
func (c *Classifier) Supers() []*Classifier {
	return c.supers
}

type Feature struct {
	ID       string
	Key      string
	Name     string
	Kind     FeatureKind
	Optional bool
	Multiple bool
	TypeID   string
	Owner    *Classifier

	// Resolved from TypeID on registration; nil when the type is unknown.
	Classifier *Classifier
	DataType   *DataType
}

func (f *Feature) MetaPointer() chunk.MetaPointer {
	lang := f.Owner.Language
	return chunk.MetaPointer{Language: lang.Key, Version: lang.Version, Key: f.Key}
}

func (f *Feature) Multiplicity() Multiplicity {
	switch {
	case f.Multiple && f.Optional:
		return ZeroOrMore
	case f.Multiple:
		return OneOrMore
	case f.Optional:
		return Optional
	default:
		return Single
	}
}

type DataType struct {
	ID       string
	Key      string
	Name     string
	Kind     DataTypeKind
	Literals []string
	Language *Language
}
