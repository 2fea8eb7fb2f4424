package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/gtcheck"
)

// CommitPrefix marks commits made by gtcheck.
const CommitPrefix = "[GTCheck] "

// Decide applies d to the presented file and advances to the next one.
func (m *Machine) Decide(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record, d gtcheck.Decision) (*Result, error) {
	if err := m.Apply(ctx, repo, rec, d); err != nil {
		return nil, err
	}
	return m.Advance(ctx, repo, rec)
}

// Apply performs d without advancing. The queue changes only after every
// repository and file operation succeeded.
func (m *Machine) Apply(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record, d gtcheck.Decision) error {
	if d.Action == gtcheck.ActionUndo {
		return m.undo(ctx, repo, rec)
	}

	cur := rec.Current
	if cur == nil {
		return gtcheck.ErrNoCurrentItem
	}
	if b, ok := rec.Queue.Locate(cur.Path); !ok || b != gtcheck.BucketPending {
		return fmt.Errorf("%s: %w", cur.Path, gtcheck.ErrStaleItem)
	}

	abs := filepath.Join(repo.Root(), filepath.FromSlash(cur.Path))
	previous, err := m.FS.ReadFile(abs)
	existed := true
	if err != nil {
		if !errors.Is(err, gtcheck.ErrNotFound) {
			return err
		}
		existed = false
	}

	to := gtcheck.BucketFinished
	switch d.Action {
	case gtcheck.ActionCommit, gtcheck.ActionAdd:
		text := strings.ReplaceAll(d.Text, "\r\n", "\n")
		// An unchanged file accepted as shown has nothing to stage.
		if cur.Kind == gtcheck.KindUnchanged && text == cur.Shown {
			break
		}
		if text != cur.Shown || cur.Kind == gtcheck.KindMerge {
			if err := m.FS.WriteFile(abs, text); err != nil {
				return err
			}
		}
		if err := repo.Stage(ctx, cur.Path); err != nil {
			return err
		}
		if d.Action == gtcheck.ActionCommit {
			message := d.Message
			if message == "" {
				message = cur.Message
			}
			if err := repo.Commit(ctx, CommitPrefix+message); err != nil {
				return err
			}
		}
	case gtcheck.ActionStash:
		if cur.Kind == gtcheck.KindNew {
			if err := repo.Remove(ctx, cur.Path); err != nil {
				return err
			}
			to = gtcheck.BucketRemoved
		} else {
			if err := repo.Revert(ctx, cur.Path); err != nil {
				return err
			}
			to = gtcheck.BucketSkipped
		}
	case gtcheck.ActionSkip:
		to = gtcheck.BucketSkipped
	default:
		return fmt.Errorf("unsupported action %s", d.Action)
	}

	if err := rec.Queue.Move(cur.Path, gtcheck.BucketPending, to); err != nil {
		return err
	}
	rec.Queue.Undo = &gtcheck.UndoSlot{
		Path:    cur.Path,
		Content: previous,
		Existed: existed,
		Source:  to,
		Action:  d.Action,
		Kind:    cur.Kind,
	}
	rec.LastAction = d.Action.String()
	rec.Current = nil
	return nil
}

// undo reverses the last decision. An empty undo slot is a no-op.
func (m *Machine) undo(ctx context.Context, repo gtcheck.Repository, rec *gtcheck.Record) error {
	slot := rec.Queue.Undo
	if slot == nil {
		return nil
	}

	abs := filepath.Join(repo.Root(), filepath.FromSlash(slot.Path))
	if slot.Existed {
		if err := m.FS.WriteFile(abs, slot.Content); err != nil {
			return err
		}
	} else if err := m.FS.Remove(abs); err != nil {
		return err
	}
	if slot.Action == gtcheck.ActionAdd {
		if err := repo.Unstage(ctx, slot.Path); err != nil {
			return err
		}
	}
	if slot.Kind == gtcheck.KindNew && slot.Existed && (slot.Action == gtcheck.ActionAdd || slot.Action == gtcheck.ActionStash) {
		if err := repo.IntentToAdd(ctx, slot.Path); err != nil {
			return err
		}
	}

	// The file normally still sits where the decision put it, but a
	// requeue or refilter may have moved it since.
	from, ok := rec.Queue.Locate(slot.Path)
	if !ok {
		return fmt.Errorf("%s: %w", slot.Path, gtcheck.ErrNotInBucket)
	}
	if from != gtcheck.BucketPending {
		if err := rec.Queue.Restore(slot.Path, from); err != nil {
			return err
		}
	}
	rec.Queue.Undo = nil
	rec.LastAction = gtcheck.ActionUndo.String()
	rec.Current = nil
	return nil
}

// Requeue moves every skipped file back to the front of pending.
func (m *Machine) Requeue(rec *gtcheck.Record) int {
	rec.Current = nil
	return rec.Queue.Requeue(gtcheck.BucketSkipped)
}

// Refilter moves skipped and finished files whose text on disk matches
// expr to the front of pending, skipped files first.
func (m *Machine) Refilter(repo gtcheck.Repository, rec *gtcheck.Record, expr string) (int, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return 0, &gtcheck.SettingsError{Field: "filter", Reason: err.Error()}
	}

	var matched []string
	for _, b := range []gtcheck.Bucket{gtcheck.BucketSkipped, gtcheck.BucketFinished} {
		var paths []string
		switch b {
		case gtcheck.BucketSkipped:
			paths = rec.Queue.Skipped
		case gtcheck.BucketFinished:
			paths = rec.Queue.Finished
		}
		for _, p := range append([]string(nil), paths...) {
			text, err := m.FS.ReadFile(filepath.Join(repo.Root(), filepath.FromSlash(p)))
			if err != nil {
				if errors.Is(err, gtcheck.ErrNotFound) {
					continue
				}
				return 0, err
			}
			if !re.MatchString(text) {
				continue
			}
			if err := rec.Queue.Move(p, b, gtcheck.BucketPending); err != nil {
				return 0, err
			}
			matched = append(matched, p)
		}
	}
	// Move appended the matches, bring them to the front in match order.
	rec.Queue.Pending = append(matched, rec.Queue.Pending[:len(rec.Queue.Pending)-len(matched)]...)
	rec.Current = nil
	return len(matched), nil
}
