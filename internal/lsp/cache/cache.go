package cache

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lionweb-community/lionweb-dev-tools/internal/builder"
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
	"github.com/lionweb-community/lionweb-dev-tools/internal/logger"
)

type Session struct {
	id    string
	views []*View
	mu    sync.Mutex
}

func NewSession(id string) *Session {
	return &Session{
		id: id,
	}
}

func (s *Session) Views() []*View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views
}

func (s *Session) View(id string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.views {
		if v.id == id {
			return v
		}
	}
	return nil
}

// ViewOf returns the view whose root is the longest prefix of the file URI,
// falling back to the first view.
func (s *Session) ViewOf(uri string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(uri, "file://")
	var best *View
	longest := -1
	for _, v := range s.views {
		if strings.HasPrefix(path, v.root) && len(v.root) > longest {
			longest = len(v.root)
			best = v
		}
	}
	if best != nil {
		return best
	}
	if len(s.views) > 0 {
		return s.views[0]
	}
	return nil
}

// CreateView adds a view over root. Languages are the language chunks every
// model in the view is checked against, in addition to language chunks opened
// in the editor.
func (s *Session) CreateView(id, root string, languages []*chunk.Chunk) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &View{
		id:      id,
		root:    root,
		session: s,
	}
	snap := &Snapshot{
		view:      v,
		base:      languages,
		documents: make(map[string]string),
		parsed:    make(map[string]*chunk.Document),
	}
	snap.relink()
	v.snapshot.Store(snap)
	s.views = append(s.views, v)
	return v
}

type View struct {
	id       string
	root     string
	session  *Session
	mu       sync.Mutex
	snapshot atomic.Value // *Snapshot
}

func (v *View) Snapshot() *Snapshot {
	return v.snapshot.Load().(*Snapshot)
}

func (v *View) Root() string {
	return v.root
}

// Update replaces the snapshot with the result of fn applied to a clone of
// the current one. Updates are serialized; readers keep whatever snapshot
// they loaded.
func (v *View) Update(fn func(*Snapshot)) *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.Snapshot().Clone()
	fn(next)
	next.relink()
	v.snapshot.Store(next)
	return next
}

// Snapshot is an immutable state of the open documents of one view.
type Snapshot struct {
	view      *View
	base      []*chunk.Chunk
	registry  *language.Registry
	documents map[string]string
	parsed    map[string]*chunk.Document
	errors    map[string]error
}

func (s *Snapshot) View() *View {
	return s.view
}

// Registry holds the configured languages plus every language chunk open in
// the view.
func (s *Snapshot) Registry() *language.Registry {
	return s.registry
}

func (s *Snapshot) Documents() map[string]string {
	return s.documents
}

// Document returns the parsed document for uri, or the error that parsing it
// produced.
func (s *Snapshot) Document(uri string) (*chunk.Document, error) {
	return s.parsed[uri], s.errors[uri]
}

func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		view:      s.view,
		base:      s.base,
		registry:  s.registry,
		documents: maps.Clone(s.documents),
		parsed:    maps.Clone(s.parsed),
		errors:    maps.Clone(s.errors),
	}
}

// SetDocument stores the text of uri and parses it. Only valid on a snapshot
// passed to View.Update.
func (s *Snapshot) SetDocument(uri, text string) {
	s.documents[uri] = text
	doc, err := chunk.Parse([]byte(text))
	if err != nil {
		delete(s.parsed, uri)
		if s.errors == nil {
			s.errors = make(map[string]error)
		}
		s.errors[uri] = err
		return
	}
	s.parsed[uri] = doc
	delete(s.errors, uri)
}

func (s *Snapshot) RemoveDocument(uri string) {
	delete(s.documents, uri)
	delete(s.parsed, uri)
	delete(s.errors, uri)
}

// relink rebuilds the registry from the base language chunks and the open
// language chunks. Each snapshot deserializes its own languages, so a
// registry is never shared between snapshots.
func (s *Snapshot) relink() {
	chunks := slices.Clone(s.base)
	for _, uri := range slices.Sorted(maps.Keys(s.parsed)) {
		doc := s.parsed[uri]
		if doc.Kind == chunk.KindChunk && builder.IsLanguageChunk(doc.Chunk) {
			chunks = append(chunks, doc.Chunk)
		}
	}
	reg := language.NewRegistry()
	for _, c := range chunks {
		langs, err := language.Deserialize(c)
		if err != nil {
			logger.Printf("skipping language chunk: %v", err)
			continue
		}
		reg.Register(langs...)
	}
	s.registry = reg
}
