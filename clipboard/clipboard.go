// Package clipboard provides clipboard operations via platform-specific commands.
package clipboard

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fwojciec/gtcheck"
)

// Ensure Command implements the Clipboard interface.
var _ gtcheck.Clipboard = (*Command)(nil)

// Command implements Clipboard by piping content into a clipboard program.
type Command struct {
	Name string
	Args []string
}

// New returns the clipboard command of the running platform: pbcopy on
// macOS, wl-copy under Wayland and xclip elsewhere.
func New() *Command {
	switch {
	case runtime.GOOS == "darwin":
		return &Command{Name: "pbcopy"}
	case os.Getenv("WAYLAND_DISPLAY") != "":
		return &Command{Name: "wl-copy"}
	default:
		return &Command{Name: "xclip", Args: []string{"-selection", "clipboard"}}
	}
}

// Copy writes content to the system clipboard.
func (c *Command) Copy(content string) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(content)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %s: %w", c.Name, strings.TrimSpace(string(output)), err)
	}
	return nil
}
