package language

import (
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

// Registry holds a set of languages plus the LionCore builtins and implements
// Definition over all of them.
type Registry struct {
	languages   []*Language
	classifiers map[string]*Classifier
	dataTypes   map[string]*DataType
	byPointer   map[chunk.MetaPointer]*Classifier
	ids         map[string]bool
	node        *Classifier
}

func NewRegistry(langs ...*Language) *Registry {
	r := &Registry{
		classifiers: make(map[string]*Classifier),
		dataTypes:   make(map[string]*DataType),
		byPointer:   make(map[chunk.MetaPointer]*Classifier),
		ids:         make(map[string]bool),
	}
	r.Register(Builtins())
	r.node = r.classifiers[BuiltinNodeID]
	r.Register(langs...)
	return r
}

// Register adds languages. A language whose key and version are already
// registered is ignored.
func (r *Registry) Register(langs ...*Language) {
	for _, l := range langs {
		if l == nil || r.Language(l.Key, l.Version) != nil {
			continue
		}
		r.languages = append(r.languages, l)
		r.ids[l.ID] = true
		for _, c := range l.Classifiers {
			c.Language = l
			if _, ok := r.classifiers[c.ID]; !ok {
				r.classifiers[c.ID] = c
			}
			r.byPointer[c.MetaPointer()] = c
			r.ids[c.ID] = true
			for _, f := range c.Features {
				f.Owner = c
				r.ids[f.ID] = true
			}
		}
		for _, d := range l.DataTypes {
			d.Language = l
			if _, ok := r.dataTypes[d.ID]; !ok {
				r.dataTypes[d.ID] = d
			}
			r.ids[d.ID] = true
			for _, lit := range d.Literals {
				r.ids[d.ID+"-"+lit] = true
			}
		}
	}
	r.link()
}

// Merge registers every language of other.
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	r.Register(other.languages...)
}

func (r *Registry) Languages() []*Language {
	if r == nil {
		return nil
	}
	return r.languages
}

// UserLanguages returns the registered languages other than the builtins.
func (r *Registry) UserLanguages() []*Language {
	if r == nil {
		return nil
	}
	var out []*Language
	for _, l := range r.languages {
		if l.Key != BuiltinsKey {
			out = append(out, l)
		}
	}
	return out
}

func (r *Registry) Language(key, version string) *Language {
	if r == nil {
		return nil
	}
	for _, l := range r.languages {
		if l.Key == key && l.Version == version {
			return l
		}
	}
	return nil
}

// ResolveClassifier, like the other lookups, treats a nil registry as empty.
func (r *Registry) ResolveClassifier(mp chunk.MetaPointer) *Classifier {
	if r == nil {
		return nil
	}
	return r.byPointer[mp]
}

func (r *Registry) Classifier(id string) *Classifier {
	if r == nil {
		return nil
	}
	return r.classifiers[id]
}

func (r *Registry) DataType(id string) *DataType {
	if r == nil {
		return nil
	}
	return r.dataTypes[id]
}

// KnownID reports whether id names a language, entity or feature of a
// registered language. Reference targets into language chunks use these ids.
func (r *Registry) KnownID(id string) bool {
	if r == nil {
		return false
	}
	return r.ids[id]
}

// IsSubtype is reflexive and transitive over extends and implements. Every
// concept and annotation is a subtype of the builtin Node.
func (r *Registry) IsSubtype(sub, super *Classifier) bool {
	if r == nil || sub == nil || super == nil {
		return false
	}
	if sub == super {
		return true
	}
	if super == r.node && sub.Kind != InterfaceKind {
		return true
	}
	visited := map[*Classifier]bool{sub: true}
	queue := []*Classifier{sub}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, s := range c.supers {
			if s == super {
				return true
			}
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	return false
}

func (r *Registry) link() {
	for _, l := range r.languages {
		for _, c := range l.Classifiers {
			c.supers = c.supers[:0]
			for _, id := range append(append([]string{}, c.Extends...), c.Implements...) {
				if s := r.classifiers[id]; s != nil {
					c.supers = append(c.supers, s)
				}
			}
			for _, f := range c.Features {
				f.Classifier = nil
				f.DataType = nil
				if f.Kind == PropertyFeature {
					f.DataType = r.dataTypes[f.TypeID]
				} else {
					f.Classifier = r.classifiers[f.TypeID]
				}
			}
		}
	}
	for _, l := range r.languages {
		for _, c := range l.Classifiers {
			c.all = flatten(c, map[*Classifier]bool{})
		}
	}
}

// flatten collects own features first, then those of each supertype in
// declaration order. Diamond inheritance yields each feature once.
func flatten(c *Classifier, visiting map[*Classifier]bool) []*Feature {
	if visiting[c] {
		return nil
	}
	visiting[c] = true
	all := make([]*Feature, 0, len(c.Features))
	seen := make(map[*Feature]bool)
	add := func(f *Feature) {
		if !seen[f] {
			seen[f] = true
			all = append(all, f)
		}
	}
	for _, f := range c.Features {
		add(f)
	}
	for _, s := range c.supers {
		for _, f := range flatten(s, visiting) {
			add(f)
		}
	}
	return all
}
