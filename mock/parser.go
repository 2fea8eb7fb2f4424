// Package mock provides test doubles for gtcheck interfaces.
package mock

import (
	"io"

	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.PatchParser = (*PatchParser)(nil)

// PatchParser is a mock implementation of gtcheck.PatchParser.
type PatchParser struct {
	ParseFn func(r io.Reader) ([]gtcheck.FileStatus, error)
}

func (p *PatchParser) Parse(r io.Reader) ([]gtcheck.FileStatus, error) {
	return p.ParseFn(r)
}

// Compile-time interface verification.
var _ gtcheck.Annotator = (*Annotator)(nil)

// Annotator is a mock implementation of gtcheck.Annotator.
type Annotator struct {
	AnnotateFn func(old, new string) string
}

func (a *Annotator) Annotate(old, new string) string {
	return a.AnnotateFn(old, new)
}
