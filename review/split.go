package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/gtcheck"
)

// maxDuplicates bounds the duplicate numbering of split repositories.
const maxDuplicates = 99

// SplitOptions describe how to divide a review among reviewers.
type SplitOptions struct {
	Duplicates int // independent copies of the whole set, at least one
	Parts      int // parts each copy is cut into, at least one
}

// Split copies the open files of a record into new repositories, one per
// duplicate and part, each reviewed through its own record. A split
// repository starts with the original text committed and the modified
// text in the working tree.
func (s *Service) Split(ctx context.Context, key gtcheck.RecordKey, opts SplitOptions) ([]gtcheck.RecordKey, error) {
	if opts.Duplicates < 1 || opts.Parts < 1 {
		return nil, errors.New("duplicates and parts must be at least one")
	}
	if s.Init == nil || s.SubrepoDir == "" {
		return nil, errors.New("split repositories are not configured")
	}
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Mode != gtcheck.ModeMain {
		return nil, errors.New("only main records can be split")
	}

	var paths []string
	if rec.AddAll {
		if paths, err = repo.GroundTruthFiles(ctx); err != nil {
			return nil, err
		}
	} else {
		paths = append(append(paths, rec.Queue.Pending...), rec.Queue.Skipped...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", rec.Path, gtcheck.ErrNoChanges)
	}

	base := filepath.Join(s.SubrepoDir, key.Hash)
	offset := 0
	for ; offset < maxDuplicates; offset++ {
		if _, err := s.FS.ListDir(filepath.Join(base, variantName(offset+1, 1))); errors.Is(err, gtcheck.ErrNotFound) {
			break
		}
	}
	perPart := (len(paths) + opts.Parts - 1) / opts.Parts

	var keys []gtcheck.RecordKey
	for dup := offset + 1; dup <= offset+opts.Duplicates; dup++ {
		for part, start := 1, 0; start < len(paths); part, start = part+1, start+perPart {
			chunk := paths[start:min(start+perPart, len(paths))]
			variant := variantName(dup, part)
			subKey, err := s.createSub(ctx, rec, repo, filepath.Join(base, variant), variant, chunk)
			if err != nil {
				return keys, fmt.Errorf("%s: %w", variant, err)
			}
			keys = append(keys, subKey)
		}
	}
	return keys, nil
}

func variantName(dup, part int) string {
	return fmt.Sprintf("duplicate_%02d_part_%02d", dup, part)
}

func (s *Service) createSub(ctx context.Context, parent *gtcheck.Record, repo gtcheck.Repository, dir, variant string, paths []string) (gtcheck.RecordKey, error) {
	sub, err := s.Init(ctx, dir)
	if err != nil {
		return gtcheck.RecordKey{}, err
	}
	if parent.Settings.Username != "" || parent.Settings.Email != "" {
		if err := sub.SetIdentity(ctx, parent.Settings.Username, parent.Settings.Email); err != nil {
			return gtcheck.RecordKey{}, err
		}
	}
	if parent.Readme != "" {
		if err := s.FS.CopyFile(parent.Readme, filepath.Join(dir, filepath.Base(parent.Readme))); err != nil {
			s.logger().Warn("cannot copy readme", "readme", parent.Readme, "error", err)
		}
	}

	// Original state first, so the split review sees the same diff.
	var added []string
	for _, p := range paths {
		original, err := repo.Show(ctx, "HEAD", p)
		if err != nil {
			added = append(added, p)
			continue
		}
		if err := s.FS.WriteFile(filepath.Join(dir, filepath.FromSlash(p)), original); err != nil {
			return gtcheck.RecordKey{}, err
		}
	}
	if len(added) < len(paths) {
		if err := sub.Stage(ctx, "."); err != nil {
			return gtcheck.RecordKey{}, err
		}
		if err := sub.Commit(ctx, CommitPrefix+"Add original state of modified files."); err != nil {
			return gtcheck.RecordKey{}, err
		}
	}

	for _, p := range paths {
		dst := filepath.Join(dir, filepath.FromSlash(p))
		text, err := s.FS.ReadFile(filepath.Join(parent.Path, filepath.FromSlash(p)))
		switch {
		case errors.Is(err, gtcheck.ErrNotFound):
			if err := s.FS.Remove(dst); err != nil {
				return gtcheck.RecordKey{}, err
			}
		case err != nil:
			return gtcheck.RecordKey{}, err
		default:
			if err := s.FS.WriteFile(dst, text); err != nil {
				return gtcheck.RecordKey{}, err
			}
		}
	}
	if err := sub.IntentToAdd(ctx, added...); err != nil {
		return gtcheck.RecordKey{}, err
	}

	pending, err := sub.Changed(ctx)
	if err != nil {
		return gtcheck.RecordKey{}, err
	}
	head, err := sub.Head(ctx)
	if err != nil {
		return gtcheck.RecordKey{}, err
	}
	rec := &gtcheck.Record{
		Path:           sub.Root(),
		Mode:           gtcheck.ModeSub,
		Group:          parent.Group,
		Variant:        variant,
		ParentRepoPath: parent.Path,
		ImageDir:       parent.ImageDir,
		Name:           RepoName(parent) + "_" + variant,
		Info:           joinNotice(parent.Info, "This repo is a duplicate and/or split into parts."),
		InitHead:       head,
		AddAll:         parent.AddAll,
		Created:        s.now(),
		Settings:       parent.Settings,
		Queue:          gtcheck.NewQueue(pending),
	}
	key := rec.Key()
	if err := s.Store.Create(key, rec); err != nil {
		return gtcheck.RecordKey{}, err
	}
	s.logger().Info("created split repository", "dir", dir, "key", key.String(), "files", len(pending))
	return key, nil
}
