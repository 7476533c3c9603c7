package builder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/formatter"
	"github.com/lionweb-community/lionweb-dev-tools/internal/generator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

// Builder merges several chunk files into one chunk.
type Builder struct {
	Files []string
}

func NewBuilder(files []string) *Builder {
	return &Builder{Files: files}
}

// Merge reads every file and concatenates their nodes. Used languages are
// deduplicated; a node id defined in two files is an error, as is a mix of
// serialization format versions.
func (b *Builder) Merge() (*chunk.Chunk, error) {
	merged := &chunk.Chunk{Languages: []chunk.UsedLanguage{}, Nodes: []*chunk.Node{}}
	origin := make(map[string]string)
	versionSet := false

	for _, file := range b.Files {
		doc, err := chunk.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if doc.Kind != chunk.KindChunk {
			return nil, fmt.Errorf("%s: expected a chunk, found a %s", file, doc.Kind)
		}
		c := doc.Chunk

		if !versionSet {
			merged.SerializationFormatVersion = c.SerializationFormatVersion
			versionSet = true
		} else if c.SerializationFormatVersion != merged.SerializationFormatVersion {
			return nil, fmt.Errorf("multiple serialization format versions in sources: found '%s' and '%s'",
				merged.SerializationFormatVersion, c.SerializationFormatVersion)
		}

		for _, l := range c.Languages {
			if !containsLanguage(merged.Languages, l) {
				merged.Languages = append(merged.Languages, l)
			}
		}
		for _, n := range c.Nodes {
			if prev, ok := origin[n.ID]; ok {
				return nil, fmt.Errorf("node %s is defined in both %s and %s", n.ID, prev, file)
			}
			origin[n.ID] = file
			merged.Nodes = append(merged.Nodes, n)
		}
	}
	return merged, nil
}

// Build writes the merged chunk, sorted and indented, to w.
func (b *Builder) Build(w io.Writer) error {
	merged, err := b.Merge()
	if err != nil {
		return err
	}
	return formatter.Format(merged, w)
}

func containsLanguage(ls []chunk.UsedLanguage, l chunk.UsedLanguage) bool {
	for _, other := range ls {
		if other == l {
			return true
		}
	}
	return false
}

// IsLanguageChunk reports whether c serializes a language, that is whether it
// declares LionCore M3 as a used language.
func IsLanguageChunk(c *chunk.Chunk) bool {
	return chunk.FindUsedLanguage(c, language.M3Key) != nil
}

// Extract writes the artifacts derived from one chunk file next to it:
// <name>.sorted.json, <name>.shortened.json and, for a language chunk,
// <name>.txt with its textual rendering. It returns the written paths.
func Extract(path string) ([]string, error) {
	doc, err := chunk.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if doc.Kind != chunk.KindChunk {
		return nil, fmt.Errorf("%s: expected a chunk, found a %s", path, doc.Kind)
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))

	var written []string
	write := func(name string, render func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return err
		}
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	}

	if err := write(base+".sorted.json", func(w io.Writer) error {
		return formatter.Format(doc.Chunk, w)
	}); err != nil {
		return written, err
	}
	if err := write(base+".shortened.json", func(w io.Writer) error {
		return formatter.FormatShortened(doc.Chunk, w)
	}); err != nil {
		return written, err
	}
	if !IsLanguageChunk(doc.Chunk) {
		return written, nil
	}

	reg, err := language.DeserializeRegistry(doc.Chunk)
	if err != nil {
		return written, fmt.Errorf("%s: %w", path, err)
	}
	err = write(base+".txt", func(w io.Writer) error {
		for _, l := range reg.UserLanguages() {
			if _, err := io.WriteString(w, generator.Text(l, reg)); err != nil {
				return err
			}
		}
		return nil
	})
	return written, err
}
