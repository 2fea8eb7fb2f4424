package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/gtcheck"
	main "github.com/fwojciec/gtcheck/cmd/gtcheck"
	"github.com/fwojciec/gtcheck/mock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCorpus(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	writeFile(t, dir, "README.md", "# Corpus\n\nFix the OCR errors.\n")
	writeFile(t, dir, "a.gt.txt", "teh quick fox\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	writeFile(t, dir, "a.gt.txt", "the quick fox\n")
	writeFile(t, dir, "b.gt.txt", "brand new\n")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command git %v failed: %s", args, string(output))
	return string(output)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// cli runs gtcheck commands against one data directory.
type cli struct {
	t         *testing.T
	dataDir   string
	clipboard *mock.Clipboard
}

func newCLI(t *testing.T) *cli {
	return &cli{
		t:         t,
		dataDir:   t.TempDir(),
		clipboard: &mock.Clipboard{CopyFn: func(string) error { return nil }},
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout bytes.Buffer
	app := &main.App{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stdout,
		Viper:  viper.New(),
		Logger: slog.New(slog.DiscardHandler),

		Clipboard: c.clipboard,
	}
	args = append(args, "--data-dir", c.dataDir)
	err := app.Run(context.Background(), args)
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "gtcheck %v", args)
	return out
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out := newCLI(t).mustRun("version")

	assert.Equal(t, "gtcheck dev\n", out)
}

func TestReviewFlow(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)

	out := c.mustRun("add", dir, "--name", "corpus")
	assert.Contains(t, out, "Registered corpus with 2 file(s) to review.")

	out = c.mustRun("next", "-C", dir)
	assert.Contains(t, out, "a.gt.txt (modified)")
	assert.Contains(t, out, "[-teh-]{+the+} quick fox")
	assert.Contains(t, out, "message: corpus: teh -> the")
	assert.Contains(t, out, "pending 2, skipped 0, finished 0, removed 0, staged 0")

	out = c.mustRun("decide", "commit", "-C", dir)
	assert.Contains(t, out, "b.gt.txt (new)")
	assert.Equal(t, "[GTCheck] corpus: teh -> the\n", runGit(t, dir, "log", "-1", "--format=%s"))

	out = c.mustRun("skip", "-C", dir, "--json")
	var res struct {
		Terminal int `json:"terminal"`
		Item     *struct {
			Path string `json:"path"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Item, "the skipped file comes around again")
	assert.Equal(t, "b.gt.txt", res.Item.Path)

	out = c.mustRun("history", "-C", dir, "--json")
	var entries []gtcheck.JournalEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, gtcheck.ActionCommit, entries[0].Action)
	assert.Equal(t, "a.gt.txt", entries[0].Path)
	assert.Equal(t, gtcheck.ActionSkip, entries[1].Action)

	out = c.mustRun("list")
	assert.Contains(t, out, "corpus")
	assert.Contains(t, out, dir)

	out = c.mustRun("readme", "-C", dir)
	assert.Contains(t, out, "Fix the OCR errors.")

	c.mustRun("done", "-C", dir)
	_, err := c.run("next", "-C", dir)
	assert.ErrorIs(t, err, gtcheck.ErrRecordNotFound)
}

func TestDecide_EditedText(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)
	c.mustRun("add", dir, "--name", "corpus")
	c.mustRun("next", "-C", dir)

	c.mustRun("decide", "--action", "add", "--text", "the quick brown fox\n", "-C", dir)

	data, err := os.ReadFile(filepath.Join(dir, "a.gt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox\n", string(data))
	assert.Contains(t, runGit(t, dir, "diff", "--cached", "--name-only"), "a.gt.txt")
}

func TestNext_Copy(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)
	var copied string
	c.clipboard.CopyFn = func(content string) error {
		copied = content
		return nil
	}
	c.mustRun("add", dir)

	c.mustRun("next", "--copy", "-C", dir)

	assert.Equal(t, "the quick fox\n", copied)
}

func TestDecide_UnknownAction(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)
	c.mustRun("add", dir)

	_, err := c.run("decide", "merge", "-C", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "merge"`)
}

func TestSettings(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)
	c.mustRun("add", dir)

	out := c.mustRun("settings", "set", "skipcc=false", "filter_all=fox", "-C", dir)
	assert.Contains(t, out, "skipcc: false")
	assert.Contains(t, out, "all: fox")

	_, err := c.run("settings", "set", "filter_from=(", "-C", dir)
	var settingsErr *gtcheck.SettingsError
	require.ErrorAs(t, err, &settingsErr)

	_, err = c.run("settings", "set", "colour=red", "-C", dir)
	require.Error(t, err)

	out = c.mustRun("settings", "show", "-C", dir)
	assert.Contains(t, out, "skipcc: false")
}

func TestReserve(t *testing.T) {
	t.Parallel()

	dir := setupCorpus(t)
	c := newCLI(t)
	c.mustRun("add", dir)
	c.mustRun("reserve", "--by", "bob", "-C", dir)
	c.mustRun("next", "-C", dir)

	_, err := c.run("skip", "--reviewer", "anna", "-C", dir)
	assert.ErrorIs(t, err, gtcheck.ErrReserved)

	c.mustRun("release", "-C", dir)
	c.mustRun("skip", "--reviewer", "anna", "-C", dir)
}
