// Package review implements the review queue state machine and the
// persisted review service built on it.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/gtcheck"
)

// maxPasses bounds how often Advance requeues skipped files in one call.
const maxPasses = 2

// Terminal reports why Advance has no file to present.
type Terminal int

// Terminal states.
const (
	TerminalNone Terminal = iota
	TerminalCommit
	TerminalNoFiles
	TerminalPassComplete
)

func (t Terminal) String() string {
	switch t {
	case TerminalNone:
		return "none"
	case TerminalCommit:
		return "staged files await commit"
	case TerminalNoFiles:
		return "no files to review"
	case TerminalPassComplete:
		return "only skipped files remain"
	}
	return fmt.Sprintf("Terminal(%d)", int(t))
}

// Counts summarizes the queue of a record.
type Counts struct {
	Pending  int `json:"pending"`
	Skipped  int `json:"skipped"`
	Finished int `json:"finished"`
	Removed  int `json:"removed"`
	Staged   int `json:"staged"`
}

// Item is the file presented to the reviewer.
type Item struct {
	Path      string             `json:"path"`
	Kind      gtcheck.Kind       `json:"kind"`
	Original  string             `json:"original"`
	Modified  string             `json:"modified"`
	DiffText  string             `json:"diff_text"`
	HTML      string             `json:"html"`
	Edits     []gtcheck.EditPair `json:"edits"`
	Message   string             `json:"message"`
	Notice    string             `json:"notice,omitempty"`
	Image     string             `json:"image,omitempty"`
	Neighbors gtcheck.Neighbors  `json:"neighbors"`
}

// Result is the outcome of Advance: a presented item or a terminal state.
type Result struct {
	Terminal Terminal `json:"terminal"`
	Item     *Item    `json:"item,omitempty"`
	Counts   Counts   `json:"counts"`
}

// Machine applies queue transitions to a record.
type Machine struct {
	FS        gtcheck.FileSystem
	Annotator gtcheck.Annotator
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewMachine creates a Machine.
func NewMachine(fs gtcheck.FileSystem, annotator gtcheck.Annotator, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{FS: fs, Annotator: annotator, Logger: logger, Now: time.Now}
}

func (m *Machine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// candidate is a pending change that survived the sweep.
type candidate struct {
	change   *gtcheck.Change
	diffText string
	diffDone bool
}

// Advance sweeps the pending list and selects the next file to present.
//
// Missing files move to removed, carbon copies to finished (when addcc
// stages them) or skipped, and files failing the filters to skipped. The
// first remaining file stays at the head of pending and is presented.
func (m *Machine) Advance(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record) (*Result, error) {
	rec.Current = nil
	if rec.Queue.Empty() {
		paths, err := repo.Changed(ctx)
		if err != nil {
			return nil, err
		}
		rec.Queue.Pending = paths
	}
	filters, err := rec.Settings.Filters.Compile()
	if err != nil {
		return nil, err
	}

	for pass := 0; pass < maxPasses; pass++ {
		next, err := m.sweep(ctx, repo, rec, filters)
		if err != nil {
			return nil, err
		}
		if next != nil {
			item, err := m.present(ctx, repo, rec, next)
			if err != nil {
				return nil, err
			}
			counts, err := m.counts(ctx, repo, rec)
			if err != nil {
				return nil, err
			}
			if counts.Staged > 0 {
				item.Notice = joinNotice(item.Notice, fmt.Sprintf("%d staged file(s) will be part of the next commit.", counts.Staged))
			}
			return &Result{Item: item, Counts: counts}, nil
		}

		counts, err := m.counts(ctx, repo, rec)
		if err != nil {
			return nil, err
		}
		switch {
		case counts.Staged > 0:
			return &Result{Terminal: TerminalCommit, Counts: counts}, nil
		case rec.Queue.Empty():
			return &Result{Terminal: TerminalNoFiles, Counts: counts}, nil
		case pass+1 < maxPasses && len(rec.Queue.Skipped) > 0:
			n := rec.Queue.Requeue(gtcheck.BucketSkipped)
			m.Logger.Debug("requeued skipped files", "count", n)
		default:
			return &Result{Terminal: TerminalPassComplete, Counts: counts}, nil
		}
	}
	counts, err := m.counts(ctx, repo, rec)
	if err != nil {
		return nil, err
	}
	return &Result{Terminal: TerminalPassComplete, Counts: counts}, nil
}

// sweep moves every suppressed pending file out of the way and returns the
// first one to present, or nil when pending drains.
func (m *Machine) sweep(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record, filters *gtcheck.FilterSet) (*candidate, error) {
	if len(rec.Queue.Pending) == 0 {
		return nil, nil
	}
	changes, err := repo.Changes(ctx, rec.Queue.Pending)
	if err != nil {
		return nil, err
	}

	var first *candidate
	for _, p := range append([]string(nil), rec.Queue.Pending...) {
		change, ok := changes[p]
		if !ok {
			m.Logger.Warn("file disappeared, removing from review", "path", p)
			if err := rec.Queue.Move(p, gtcheck.BucketPending, gtcheck.BucketRemoved); err != nil {
				return nil, err
			}
			continue
		}
		// Add-all records review untouched files too.
		reviewAll := rec.AddAll && change.Kind == gtcheck.KindUnchanged
		if rec.Settings.SkipCC && change.CarbonCopy() && !reviewAll {
			to := gtcheck.BucketSkipped
			if rec.Settings.AddCC {
				if err := repo.Stage(ctx, p); err != nil {
					return nil, err
				}
				to = gtcheck.BucketFinished
			}
			if err := rec.Queue.Move(p, gtcheck.BucketPending, to); err != nil {
				return nil, err
			}
			continue
		}
		c := &candidate{change: change}
		if filters.NeedsDiff() {
			c.diffText = m.diffText(ctx, repo, rec, change)
			c.diffDone = true
		}
		if !filters.Match(change, c.diffText) {
			if err := rec.Queue.Move(p, gtcheck.BucketPending, gtcheck.BucketSkipped); err != nil {
				return nil, err
			}
			continue
		}
		if first == nil {
			first = c
		}
	}
	// Files before the survivor were all moved out, so it heads pending.
	return first, nil
}

// diffText returns the word-diff annotated text of change.
func (m *Machine) diffText(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record, change *gtcheck.Change) string {
	switch change.Kind {
	case gtcheck.KindModified:
		text, err := repo.WordDiff(ctx, change.Path, rec.Settings.WordDiffRegex)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			m.Logger.Warn("word diff failed, using built-in differ", "path", change.Path, "error", err)
		}
		return m.Annotator.Annotate(change.Original, change.Modified)
	case gtcheck.KindMerge:
		return m.Annotator.Annotate(change.Conflict.Ours, change.Conflict.Theirs)
	}
	return ""
}

func (m *Machine) present(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record, c *candidate) (*Item, error) {
	change := c.change
	if !c.diffDone {
		c.diffText = m.diffText(ctx, repo, rec, change)
	}
	edits := gtcheck.Tokenize(c.diffText)
	item := &Item{
		Path:     change.Path,
		Kind:     change.Kind,
		Original: change.Original,
		Modified: change.Modified,
		DiffText: c.diffText,
		HTML:     gtcheck.Colorize(c.diffText),
		Edits:    edits,
		Message:  commitMessage(rec, change, edits),
		Notice:   notice(change.Kind),
	}
	if err := m.locateImage(rec, repo.Root(), item); err != nil {
		return nil, err
	}
	rec.Current = &gtcheck.Current{
		Path:      change.Path,
		Kind:      change.Kind,
		Shown:     change.Modified,
		Message:   item.Message,
		Edits:     edits,
		Presented: m.now(),
	}
	return item, nil
}

func (m *Machine) counts(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record) (Counts, error) {
	staged, err := repo.StagedSummary(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Pending:  len(rec.Queue.Pending),
		Skipped:  len(rec.Queue.Skipped),
		Finished: len(rec.Queue.Finished),
		Removed:  len(rec.Queue.Removed),
		Staged:   staged,
	}, nil
}

// RepoName is the display name used in commit messages.
func RepoName(rec *gtcheck.Record) string {
	if rec.Name != "" {
		return rec.Name
	}
	return filepath.Base(rec.Path)
}

func commitMessage(rec *gtcheck.Record, change *gtcheck.Change, edits []gtcheck.EditPair) string {
	if len(edits) == 0 {
		return fmt.Sprintf("%s: %s %s", RepoName(rec), change.Kind, change.Path)
	}
	return RepoName(rec) + ": " + gtcheck.FormatEdits(edits)
}

func notice(kind gtcheck.Kind) string {
	switch kind {
	case gtcheck.KindNew:
		return "New file: it gets added when committed and deleted when stashed."
	case gtcheck.KindDeleted:
		return "Deleted file: it gets removed when committed and restored when stashed."
	case gtcheck.KindMerge:
		return "Merge conflict: the edited text resolves the conflict when committed."
	case gtcheck.KindUnchanged:
		return "Unchanged file."
	}
	return ""
}

func joinNotice(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

// locateImage finds the page image of the item and its neighbors. Images
// live next to the ground truth file (in the parent repository for split
// records) unless the record names an image directory.
func (m *Machine) locateImage(rec *gtcheck.Record, root string, item *Item) error {
	dir := rec.ImageDir
	if dir == "" {
		base := root
		if rec.Mode == gtcheck.ModeSub && rec.ParentRepoPath != "" {
			base = rec.ParentRepoPath
		}
		dir = filepath.Join(base, filepath.FromSlash(path.Dir(item.Path)))
	}
	listing, err := m.FS.ListDir(dir)
	if err != nil {
		if errors.Is(err, gtcheck.ErrNotFound) {
			return nil
		}
		m.Logger.Warn("cannot list image directory", "dir", dir, "error", err)
		return nil
	}

	name := path.Base(item.Path)
	stem := strings.TrimSuffix(name, "gt.txt")
	for _, entry := range listing {
		if entry == name || !strings.HasPrefix(entry, stem) || strings.HasSuffix(entry, gtcheck.GTSuffix) {
			continue
		}
		if m.FS.IsImage(filepath.Join(dir, entry)) {
			item.Image = filepath.Join(dir, entry)
			break
		}
	}
	if item.Image == "" {
		return nil
	}

	expr := rec.Settings.PagePattern
	if expr == "" {
		expr = gtcheck.DefaultPagePattern
	}
	pattern, err := gtcheck.ParsePagePattern(expr)
	if err != nil {
		return err
	}
	n := gtcheck.LocateNeighbors(filepath.Base(item.Image), listing, pattern)
	if n.Prev != "" {
		item.Neighbors.Prev = filepath.Join(dir, n.Prev)
	}
	if n.Next != "" {
		item.Neighbors.Next = filepath.Join(dir, n.Next)
	}
	return nil
}
