package mock

import "github.com/fwojciec/gtcheck"

var _ gtcheck.Clipboard = (*Clipboard)(nil)

// Clipboard is a mock implementation of gtcheck.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
