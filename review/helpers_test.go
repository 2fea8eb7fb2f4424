package review_test

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/mock"
	"github.com/fwojciec/gtcheck/review"
	"github.com/fwojciec/gtcheck/worddiff"
)

const root = "/corpus/book"

// world is an in-memory repository and file system.
type world struct {
	head     map[string]string // committed content by relative path
	files    map[string]string // disk content by absolute path
	tracked  map[string]bool
	images   map[string]bool
	staged   []string
	commits  []string
	calls    []string
	failNext map[string]error
}

func newWorld() *world {
	return &world{
		head:     map[string]string{},
		files:    map[string]string{},
		tracked:  map[string]bool{},
		images:   map[string]bool{},
		failNext: map[string]error{},
	}
}

func abs(p string) string {
	return path.Join(root, p)
}

// modified adds a committed file with different disk content.
func (w *world) modified(p, original, modified string) *world {
	w.head[p] = original
	w.tracked[p] = true
	w.files[abs(p)] = modified
	return w
}

// added adds an uncommitted new file.
func (w *world) added(p, content string) *world {
	w.tracked[p] = true
	w.files[abs(p)] = content
	return w
}

func (w *world) fail(op string, err error) {
	w.failNext[op] = err
}

func (w *world) call(op string, args ...string) error {
	w.calls = append(w.calls, strings.TrimSpace(op+" "+strings.Join(args, " ")))
	if err, ok := w.failNext[op]; ok {
		delete(w.failNext, op)
		return err
	}
	return nil
}

func (w *world) change(p string) (*gtcheck.Change, bool) {
	original, inHead := w.head[p]
	content, onDisk := w.files[abs(p)]
	switch {
	case !w.tracked[p] && !inHead:
		return nil, false
	case inHead && !onDisk:
		return &gtcheck.Change{Path: p, Kind: gtcheck.KindDeleted, Original: original}, true
	case !inHead && onDisk:
		return &gtcheck.Change{Path: p, Kind: gtcheck.KindNew, Modified: content}, true
	case !onDisk:
		return nil, false
	case original == content:
		return &gtcheck.Change{Path: p, Kind: gtcheck.KindUnchanged, Original: original, Modified: content}, true
	}
	if c, ok := gtcheck.ParseConflict(content); ok {
		return &gtcheck.Change{Path: p, Kind: gtcheck.KindMerge, Original: c.Ours, Modified: c.Theirs, Conflict: c}, true
	}
	return &gtcheck.Change{Path: p, Kind: gtcheck.KindModified, Original: original, Modified: content}, true
}

func (w *world) changed() []string {
	var paths []string
	for p := range w.tracked {
		if c, ok := w.change(p); ok && c.Kind != gtcheck.KindUnchanged {
			paths = append(paths, p)
		}
	}
	gtcheck.SortNatural(paths)
	return paths
}

func (w *world) repo() *mock.Repository {
	return &mock.Repository{
		RootFn: func() string { return root },
		ChangedFn: func(ctx context.Context) ([]string, error) {
			return w.changed(), w.call("changed")
		},
		ChangesFn: func(ctx context.Context, paths []string) (map[string]*gtcheck.Change, error) {
			if err := w.call("changes"); err != nil {
				return nil, err
			}
			out := make(map[string]*gtcheck.Change)
			for _, p := range paths {
				if c, ok := w.change(p); ok {
					out[p] = c
				}
			}
			return out, nil
		},
		WordDiffFn: func(ctx context.Context, p, wordRegex string) (string, error) {
			return "", w.call("worddiff", p)
		},
		UntrackedFn: func(ctx context.Context) ([]string, error) {
			return nil, w.call("untracked")
		},
		GroundTruthFilesFn: func(ctx context.Context) ([]string, error) {
			var paths []string
			for p := range w.tracked {
				paths = append(paths, p)
			}
			gtcheck.SortNatural(paths)
			return paths, w.call("ls-files")
		},
		ShowFn: func(ctx context.Context, rev, p string) (string, error) {
			content, ok := w.head[p]
			if !ok {
				return "", fmt.Errorf("git show failed: path '%s' does not exist in '%s'", p, rev)
			}
			return content, w.call("show", p)
		},
		StageFn: func(ctx context.Context, paths ...string) error {
			if err := w.call("stage", paths...); err != nil {
				return err
			}
			w.staged = append(w.staged, paths...)
			return nil
		},
		UnstageFn: func(ctx context.Context, p string) error {
			if err := w.call("unstage", p); err != nil {
				return err
			}
			w.staged = slices.DeleteFunc(w.staged, func(s string) bool { return s == p })
			return nil
		},
		IntentToAddFn: func(ctx context.Context, paths ...string) error {
			if err := w.call("intent-to-add", paths...); err != nil {
				return err
			}
			for _, p := range paths {
				w.tracked[p] = true
			}
			return nil
		},
		CommitFn: func(ctx context.Context, message string) error {
			if err := w.call("commit", message); err != nil {
				return err
			}
			if len(w.staged) == 0 {
				return errors.New("git commit failed: nothing to commit")
			}
			for _, p := range w.staged {
				if content, ok := w.files[abs(p)]; ok {
					w.head[p] = content
				} else {
					delete(w.head, p)
				}
			}
			w.staged = nil
			w.commits = append(w.commits, message)
			return nil
		},
		RevertFn: func(ctx context.Context, p string) error {
			if err := w.call("revert", p); err != nil {
				return err
			}
			w.files[abs(p)] = w.head[p]
			return nil
		},
		RemoveFn: func(ctx context.Context, p string) error {
			if err := w.call("remove", p); err != nil {
				return err
			}
			delete(w.files, abs(p))
			delete(w.tracked, p)
			return nil
		},
		ResetFn: func(ctx context.Context, rev string, soft bool) error {
			return w.call("reset", rev)
		},
		StagedSummaryFn: func(ctx context.Context) (int, error) {
			return len(w.staged), nil
		},
		IsDirtyFn: func(ctx context.Context) (bool, error) {
			return len(w.changed()) > 0, nil
		},
		HeadFn: func(ctx context.Context) (string, error) {
			return fmt.Sprintf("c%03d", len(w.commits)), nil
		},
		IdentityFn: func(ctx context.Context) (string, string, error) {
			return "Reviewer", "reviewer@example.org", nil
		},
		SetIdentityFn: func(ctx context.Context, name, email string) error {
			return w.call("identity", name, email)
		},
	}
}

func (w *world) fs() *mock.FileSystem {
	return &mock.FileSystem{
		ReadFileFn: func(p string) (string, error) {
			content, ok := w.files[p]
			if !ok {
				return "", fmt.Errorf("%s: %w", p, gtcheck.ErrNotFound)
			}
			return content, nil
		},
		WriteFileFn: func(p, content string) error {
			if err := w.call("write", p); err != nil {
				return err
			}
			w.files[p] = content
			return nil
		},
		RemoveFn: func(p string) error {
			delete(w.files, p)
			return w.call("rm", p)
		},
		CopyFileFn: func(src, dst string) error {
			w.files[dst] = w.files[src]
			return nil
		},
		ListDirFn: func(dir string) ([]string, error) {
			var names []string
			for p := range w.files {
				if path.Dir(p) == dir {
					names = append(names, path.Base(p))
				}
			}
			if names == nil {
				return nil, fmt.Errorf("%s: %w", dir, gtcheck.ErrNotFound)
			}
			sort.Strings(names)
			return names, nil
		},
		IsImageFn: func(p string) bool {
			return w.images[p]
		},
	}
}

func (w *world) machine() *review.Machine {
	return review.NewMachine(w.fs(), worddiff.NewDiffer(), nil)
}

func newRecord(paths ...string) *gtcheck.Record {
	return &gtcheck.Record{
		Path:     root,
		Mode:     gtcheck.ModeMain,
		Group:    review.DefaultGroup,
		Variant:  gtcheck.MainVariant,
		Name:     "book",
		Settings: gtcheck.DefaultSettings(),
		Queue:    gtcheck.NewQueue(paths),
	}
}
