package validator

import (
	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

type Options struct {
	Syntax     SyntaxOptions
	References ReferenceOptions
}

func DefaultOptions() Options {
	return Options{
		Syntax: SyntaxOptions{
			SerializationFormatVersion: chunk.SerializationFormatVersion,
			Recursive:                  true,
		},
	}
}

// ValidateAll runs the syntax checks and, for chunks, the reference checks.
// Reference checks run on the lenient typed view even when the syntax checks
// found problems; syntax issues come first.
func ValidateAll(doc *chunk.Document, def language.Definition, opts Options) Result {
	res := ValidateSyntax(doc, opts.Syntax)
	if doc != nil && doc.Kind == chunk.KindChunk {
		res.merge(ValidateReferences(doc.Chunk, def, opts.References))
	}
	return res
}

// Validator bundles options with the validation functions. It holds no
// mutable state and may be shared between goroutines.
type Validator struct {
	Options Options
}

func New(opts Options) Validator {
	return Validator{Options: opts}
}

func (v Validator) ValidateSyntax(doc *chunk.Document) Result {
	return ValidateSyntax(doc, v.Options.Syntax)
}

func (v Validator) ValidateReferences(c *chunk.Chunk, def language.Definition) Result {
	return ValidateReferences(c, def, v.Options.References)
}

func (v Validator) ValidateAll(doc *chunk.Document, def language.Definition) Result {
	return ValidateAll(doc, def, v.Options)
}
