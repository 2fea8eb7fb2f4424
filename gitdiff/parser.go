// Package gitdiff classifies file changes using bluekeyes/go-gitdiff.
package gitdiff

import (
	"io"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.PatchParser = (*Parser)(nil)

// Parser reads unified diff output and reports how each file changed.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns one status per file.
func (p *Parser) Parse(r io.Reader) ([]gtcheck.FileStatus, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, err
	}

	statuses := make([]gtcheck.FileStatus, 0, len(files))
	for _, f := range files {
		statuses = append(statuses, convertFile(f))
	}
	return statuses, nil
}

func convertFile(f *gitdiff.File) gtcheck.FileStatus {
	// go-gitdiff strips the a/ and b/ prefixes
	switch {
	case f.IsNew:
		return gtcheck.FileStatus{Path: f.NewName, Kind: gtcheck.KindNew}
	case f.IsDelete:
		return gtcheck.FileStatus{Path: f.OldName, Kind: gtcheck.KindDeleted}
	default:
		return gtcheck.FileStatus{Path: f.NewName, Kind: gtcheck.KindModified}
	}
}
