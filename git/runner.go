// Package git provides access to a git working copy via shell commands,
// with go-git for repository metadata.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fwojciec/gtcheck"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Compile-time interface verification.
var _ gtcheck.Repository = (*Runner)(nil)

// gtPathspec limits commands to ground truth files in any directory.
const gtPathspec = "*" + gtcheck.GTSuffix

// Runner executes git commands against one working tree.
type Runner struct {
	root   string
	parser gtcheck.PatchParser
	repo   *gogit.Repository
}

// Open returns a Runner for the working tree containing path.
func Open(ctx context.Context, path string, parser gtcheck.PatchParser) (*Runner, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git rev-parse failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git rev-parse failed: %w", err)
	}
	root := strings.TrimSpace(string(output))

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", root, err)
	}
	return &Runner{root: root, parser: parser, repo: repo}, nil
}

// Init creates a repository in dir, which may not exist yet, and opens it.
func Init(ctx context.Context, dir string, parser gtcheck.PatchParser) (*Runner, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "init", "-q", "-b", "main")
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git init failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return Open(ctx, dir, parser)
}

// Root returns the absolute path of the working tree.
func (r *Runner) Root() string {
	return r.root
}

// run executes git in the working tree and returns stdout.
func (r *Runner) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	full := append([]string{"-C", r.root, "-c", "core.quotepath=off"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Stdin = stdin
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return output, nil
}

// names runs a command with -z output and returns the listed paths.
func (r *Runner) names(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.run(ctx, nil, args...)
	if err != nil {
		return nil, err
	}
	var paths []string
	seen := make(map[string]struct{})
	for _, p := range strings.Split(string(output), "\x00") {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths, nil
}

// Changed lists ground truth files whose working tree differs from the index.
func (r *Runner) Changed(ctx context.Context) ([]string, error) {
	paths, err := r.names(ctx, "diff", "--name-only", "-z", "--no-renames", "--", gtPathspec)
	if err != nil {
		return nil, err
	}
	gtcheck.SortNatural(paths)
	return paths, nil
}

// Untracked lists ground truth files git does not know about.
func (r *Runner) Untracked(ctx context.Context) ([]string, error) {
	paths, err := r.names(ctx, "ls-files", "-z", "--others", "--exclude-standard", "--", gtPathspec)
	if err != nil {
		return nil, err
	}
	gtcheck.SortNatural(paths)
	return paths, nil
}

// GroundTruthFiles lists tracked and untracked ground truth files.
func (r *Runner) GroundTruthFiles(ctx context.Context) ([]string, error) {
	paths, err := r.names(ctx, "ls-files", "-z", "--cached", "--others", "--exclude-standard", "--", gtPathspec)
	if err != nil {
		return nil, err
	}
	gtcheck.SortNatural(paths)
	return paths, nil
}

// Changes returns the before/after state of paths. The before state is the
// index, the after state the working tree.
func (r *Runner) Changes(ctx context.Context, paths []string) (map[string]*gtcheck.Change, error) {
	if len(paths) == 0 {
		return map[string]*gtcheck.Change{}, nil
	}

	unmerged, err := r.names(ctx, "diff", "--name-only", "-z", "--diff-filter=U", "--", gtPathspec)
	if err != nil {
		return nil, err
	}
	conflicted := make(map[string]bool, len(unmerged))
	for _, p := range unmerged {
		conflicted[p] = true
	}

	// Conflicted files are excluded so git does not emit combined diffs.
	args := []string{"diff", "--no-color", "--no-ext-diff", "--no-renames", "--diff-filter=ADMT", "--", gtPathspec}
	for _, p := range unmerged {
		args = append(args, ":(exclude)"+p)
	}
	patch, err := r.run(ctx, nil, args...)
	if err != nil {
		return nil, err
	}
	statuses, err := r.parser.Parse(bytes.NewReader(patch))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	kinds := make(map[string]gtcheck.Kind, len(statuses))
	for _, s := range statuses {
		kinds[s.Path] = s.Kind
	}

	specs := make([]string, 0, len(paths))
	for _, p := range paths {
		if conflicted[p] {
			specs = append(specs, "HEAD:"+p)
		} else {
			specs = append(specs, ":"+p)
		}
	}
	blobs, err := r.blobs(ctx, specs)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]*gtcheck.Change, len(paths))
	for i, p := range paths {
		content, exists, err := r.readWorktree(p)
		if err != nil {
			return nil, err
		}
		original := blobs[specs[i]]

		var change *gtcheck.Change
		kind, changed := kinds[p]
		switch {
		case conflicted[p]:
			if c, ok := gtcheck.ParseConflict(content); ok {
				change, err = gtcheck.NewChange(p, gtcheck.KindMerge, c.Ours, c.Theirs, c)
			} else {
				change, err = gtcheck.NewChange(p, gtcheck.KindModified, original, content, nil)
			}
		case changed && kind == gtcheck.KindNew:
			change, err = gtcheck.NewChange(p, kind, "", content, nil)
		case changed && kind == gtcheck.KindDeleted:
			change, err = gtcheck.NewChange(p, kind, original, "", nil)
		case changed:
			change, err = gtcheck.NewChange(p, kind, original, content, nil)
		case exists:
			change, err = gtcheck.NewChange(p, gtcheck.KindUnchanged, original, content, nil)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		changes[p] = change
	}
	return changes, nil
}

func (r *Runner) readWorktree(path string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(r.root, path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// WordDiff returns the word-diff annotated hunk text for path, without
// headers. An empty wordRegex uses git's whitespace word splitting.
func (r *Runner) WordDiff(ctx context.Context, path, wordRegex string) (string, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff", "--word-diff=plain"}
	if wordRegex != "" {
		args = append(args, "--word-diff-regex="+wordRegex)
	}
	args = append(args, "--", path)
	output, err := r.run(ctx, nil, args...)
	if err != nil {
		return "", err
	}
	return hunkText(string(output)), nil
}

// hunkText drops the diff header and hunk header lines.
func hunkText(output string) string {
	var lines []string
	inHunk := false
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		if strings.HasPrefix(line, "@@") {
			inHunk = true
			continue
		}
		if !inHunk || strings.HasPrefix(line, `\ `) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Show returns the content of path at rev.
func (r *Runner) Show(ctx context.Context, rev, path string) (string, error) {
	output, err := r.run(ctx, nil, "show", rev+":"+path)
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// Stage adds the current state of paths, including deletions, to the index.
func (r *Runner) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.run(ctx, nil, append([]string{"add", "-A", "--"}, paths...)...)
	return err
}

// Unstage resets the index entry of path to HEAD.
func (r *Runner) Unstage(ctx context.Context, path string) error {
	_, err := r.run(ctx, nil, "reset", "-q", "--", path)
	return err
}

// IntentToAdd records untracked paths in the index without content so they
// show up as new files in diffs.
func (r *Runner) IntentToAdd(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.run(ctx, nil, append([]string{"add", "-N", "--"}, paths...)...)
	return err
}

// Commit records the index with message.
func (r *Runner) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, nil, "commit", "-q", "-m", message)
	return err
}

// Revert restores path in the index and working tree to HEAD.
func (r *Runner) Revert(ctx context.Context, path string) error {
	_, err := r.run(ctx, nil, "checkout", "HEAD", "--", path)
	return err
}

// Remove deletes path from the index and the working tree.
func (r *Runner) Remove(ctx context.Context, path string) error {
	_, err := r.run(ctx, nil, "rm", "-f", "-q", "--", path)
	return err
}

// Reset moves HEAD to rev. A soft reset keeps the index.
func (r *Runner) Reset(ctx context.Context, rev string, soft bool) error {
	mode := "--mixed"
	if soft {
		mode = "--soft"
	}
	_, err := r.run(ctx, nil, "reset", "-q", mode, rev)
	return err
}

// StagedSummary returns the number of files staged for commit.
func (r *Runner) StagedSummary(ctx context.Context) (int, error) {
	paths, err := r.names(ctx, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

// IsDirty reports whether tracked files have uncommitted changes.
func (r *Runner) IsDirty(ctx context.Context) (bool, error) {
	output, err := r.run(ctx, nil, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(output)) > 0, nil
}

// Head returns the commit hash of HEAD, or "" on an unborn branch.
func (r *Runner) Head(ctx context.Context) (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
