package clipboard_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fwojciec/gtcheck/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Copy(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping clipboard test")
	}

	t.Run("pipes content to the program", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "clip")
		cb := &clipboard.Command{Name: "sh", Args: []string{"-c", `cat > "$0"`, out}}

		err := cb.Copy("the quick fox\n")

		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "the quick fox\n", string(data))
	})

	t.Run("reports program output on failure", func(t *testing.T) {
		t.Parallel()

		cb := &clipboard.Command{Name: "sh", Args: []string{"-c", "echo no display >&2; exit 1"}}

		err := cb.Copy("text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sh failed: no display")
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	cb := clipboard.New()

	assert.NotEmpty(t, cb.Name)
}
