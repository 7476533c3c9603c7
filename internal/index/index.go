package index

import (
	"slices"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

// Owner is one place where a node id is listed as a child or annotation.
type Owner struct {
	Node        *chunk.Node
	Containment string // containment key, empty for annotations
	Annotation  bool
}

// ChunkIndex is a hash index over one chunk. It is built once per validation
// call and only speeds up lookups; it never changes what is reported.
type ChunkIndex struct {
	Chunk   *chunk.Chunk
	NodeMap map[string][]*chunk.Node
	Owners  map[string][]Owner
	pairs   []LanguagePair
}

// LanguagePair is a (language, version) pair taken from a meta-pointer.
type LanguagePair struct {
	Language string
	Version  string
}

func Build(c *chunk.Chunk) *ChunkIndex {
	idx := &ChunkIndex{
		Chunk:   c,
		NodeMap: make(map[string][]*chunk.Node),
		Owners:  make(map[string][]Owner),
	}
	if c == nil {
		return idx
	}
	seen := make(map[LanguagePair]bool)
	addPair := func(mp chunk.MetaPointer) {
		p := LanguagePair{Language: mp.Language, Version: mp.Version}
		if p.Language == "" && p.Version == "" {
			return
		}
		if !seen[p] {
			seen[p] = true
			idx.pairs = append(idx.pairs, p)
		}
	}

	for _, n := range c.Nodes {
		idx.NodeMap[n.ID] = append(idx.NodeMap[n.ID], n)
		addPair(n.Concept)
		for _, p := range n.Properties {
			addPair(p.Property)
		}
		for _, ct := range n.Containments {
			addPair(ct.Containment)
			for _, child := range ct.Children {
				idx.Owners[child] = append(idx.Owners[child], Owner{Node: n, Containment: ct.Containment.Key})
			}
		}
		for _, r := range n.References {
			addPair(r.Reference)
		}
		for _, a := range n.Annotations {
			idx.Owners[a] = append(idx.Owners[a], Owner{Node: n, Annotation: true})
		}
	}
	return idx
}

// Node returns the first node with the given id.
func (idx *ChunkIndex) Node(id string) *chunk.Node {
	if nodes := idx.NodeMap[id]; len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func (idx *ChunkIndex) Has(id string) bool {
	return len(idx.NodeMap[id]) > 0
}

// UsedPairs lists the distinct (language, version) pairs of every meta-pointer
// in the chunk, in first-seen order.
func (idx *ChunkIndex) UsedPairs() []LanguagePair {
	return idx.pairs
}

// Walk visits every node in chunk order.
func (idx *ChunkIndex) Walk(visitor func(*chunk.Node)) {
	if idx.Chunk == nil {
		return
	}
	for _, n := range idx.Chunk.Nodes {
		visitor(n)
	}
}

// Cycles returns one containment cycle per strongly connected group of the
// owner graph. Each cycle starts and ends at the smallest id of its group and
// follows owners, nearest first. Every owner of a node is followed, not only
// the first one. Cycles are ordered by where their smallest id appears in the
// chunk.
func (idx *ChunkIndex) Cycles() [][]string {
	t := &tarjan{idx: idx, index: map[string]int{}, low: map[string]int{}, onStack: map[string]bool{}}
	idx.Walk(func(n *chunk.Node) {
		if _, seen := t.index[n.ID]; !seen {
			t.visit(n.ID)
		}
	})

	bySmallest := make(map[string][]string)
	for _, group := range t.groups {
		smallest := slices.Min(group)
		if len(group) == 1 && !slices.Contains(idx.ownerIDs(smallest), smallest) {
			continue
		}
		members := make(map[string]bool, len(group))
		for _, id := range group {
			members[id] = true
		}
		bySmallest[smallest] = idx.cycleThrough(smallest, members)
	}

	var cycles [][]string
	idx.Walk(func(n *chunk.Node) {
		if c, ok := bySmallest[n.ID]; ok {
			cycles = append(cycles, c)
			delete(bySmallest, n.ID)
		}
	})
	return cycles
}

// ownerIDs lists the distinct ids of the nodes owning id.
func (idx *ChunkIndex) ownerIDs(id string) []string {
	var ids []string
	for _, o := range idx.Owners[id] {
		if !slices.Contains(ids, o.Node.ID) {
			ids = append(ids, o.Node.ID)
		}
	}
	return ids
}

// cycleThrough finds the shortest owner path from start back to itself that
// stays inside members.
func (idx *ChunkIndex) cycleThrough(start string, members map[string]bool) []string {
	prev := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, o := range idx.ownerIDs(cur) {
			if !members[o] {
				continue
			}
			if o == start {
				var path []string
				for id := cur; id != start; id = prev[id] {
					path = append(path, id)
				}
				slices.Reverse(path)
				return append(append([]string{start}, path...), start)
			}
			if _, seen := prev[o]; !seen {
				prev[o] = cur
				queue = append(queue, o)
			}
		}
	}
	return nil
}

// tarjan groups node ids into strongly connected components of the
// child -> owner graph.
type tarjan struct {
	idx     *ChunkIndex
	next    int
	index   map[string]int
	low     map[string]int
	stack   []string
	onStack map[string]bool
	groups  [][]string
}

func (t *tarjan) visit(id string) {
	t.index[id] = t.next
	t.low[id] = t.next
	t.next++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	for _, o := range t.idx.ownerIDs(id) {
		if _, seen := t.index[o]; !seen {
			t.visit(o)
			t.low[id] = min(t.low[id], t.low[o])
		} else if t.onStack[o] {
			t.low[id] = min(t.low[id], t.index[o])
		}
	}

	if t.low[id] != t.index[id] {
		return
	}
	var group []string
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		group = append(group, top)
		if top == id {
			break
		}
	}
	t.groups = append(t.groups, group)
}
