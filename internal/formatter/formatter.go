package formatter

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
)

// Sort returns a copy of c with used languages ordered by key, nodes by id and
// every node's features by key. Child id and target order is significant and
// left alone.
func Sort(c *chunk.Chunk) *chunk.Chunk {
	out := &chunk.Chunk{
		SerializationFormatVersion: c.SerializationFormatVersion,
		Languages:                  nonNil(slices.Clone(c.Languages)),
		Nodes:                      make([]*chunk.Node, 0, len(c.Nodes)),
	}
	slices.SortStableFunc(out.Languages, func(a, b chunk.UsedLanguage) int {
		return cmp.Or(cmp.Compare(a.Key, b.Key), cmp.Compare(a.Version, b.Version))
	})
	for _, n := range c.Nodes {
		out.Nodes = append(out.Nodes, sortNode(n))
	}
	slices.SortStableFunc(out.Nodes, func(a, b *chunk.Node) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func sortNode(n *chunk.Node) *chunk.Node {
	cp := *n
	cp.Properties = nonNil(slices.Clone(n.Properties))
	cp.Containments = nonNil(slices.Clone(n.Containments))
	cp.References = nonNil(slices.Clone(n.References))
	cp.Annotations = slices.Clone(n.Annotations)
	slices.SortStableFunc(cp.Properties, func(a, b chunk.Property) int {
		return cmp.Compare(a.Property.Key, b.Property.Key)
	})
	slices.SortStableFunc(cp.Containments, func(a, b chunk.Containment) int {
		return cmp.Compare(a.Containment.Key, b.Containment.Key)
	})
	slices.SortStableFunc(cp.References, func(a, b chunk.Reference) int {
		return cmp.Compare(a.Reference.Key, b.Reference.Key)
	})
	return &cp
}

// nonNil keeps absent collections serialized as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Shorten flattens every node into a single object: its id, the concept key,
// and one field per feature key holding the property value, the child ids or
// the reference targets. Meta-pointer languages and versions are dropped.
func Shorten(c *chunk.Chunk) []map[string]any {
	out := make([]map[string]any, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		out = append(out, ShortenNode(n))
	}
	return out
}

func ShortenNode(n *chunk.Node) map[string]any {
	m := map[string]any{
		"id":      n.ID,
		"concept": n.Concept.Key,
	}
	if n.Parent != nil {
		m["parent"] = *n.Parent
	}
	for _, p := range n.Properties {
		if p.Value == nil {
			m[p.Property.Key] = nil
		} else {
			m[p.Property.Key] = *p.Value
		}
	}
	for _, c := range n.Containments {
		m[c.Containment.Key] = c.Children
	}
	for _, r := range n.References {
		targets := make([]string, 0, len(r.Targets))
		for _, t := range r.Targets {
			switch {
			case t.Reference != nil:
				targets = append(targets, *t.Reference)
			case t.ResolveInfo != nil:
				targets = append(targets, "?"+*t.ResolveInfo)
			}
		}
		m[r.Reference.Key] = targets
	}
	if len(n.Annotations) > 0 {
		m["annotations"] = n.Annotations
	}
	return m
}

// Format writes c sorted and indented.
func Format(c *chunk.Chunk, w io.Writer) error {
	data, err := chunk.MarshalIndent(Sort(c))
	if err != nil {
		return fmt.Errorf("formatting chunk: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// FormatShortened writes the shortened rendering of c.
func FormatShortened(c *chunk.Chunk, w io.Writer) error {
	data, err := chunk.MarshalIndent(Shorten(c))
	if err != nil {
		return fmt.Errorf("shortening chunk: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
