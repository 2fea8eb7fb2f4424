package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fwojciec/gtcheck"
)

// DefaultGroup is the group of records registered without one.
const DefaultGroup = "default"

// RegisterOptions describe a repository to add for review.
type RegisterOptions struct {
	Path     string
	Group    string
	Name     string
	Info     string
	ImageDir string
	Readme   string // markdown file, detected in the repository when empty
	AddAll   bool   // review every ground truth file, not only modified ones
	ResetTo  string // soft reset to this revision first
	Username string
	Email    string
}

// Register creates a review record for the repository at opts.Path.
func (s *Service) Register(ctx context.Context, opts RegisterOptions) (*gtcheck.Record, error) {
	repo, err := s.Open(ctx, opts.Path)
	if err != nil {
		return nil, err
	}
	root := repo.Root()
	group := opts.Group
	if group == "" {
		group = DefaultGroup
	}
	key := gtcheck.NewRecordKey(group, root, gtcheck.MainVariant)
	if _, err := s.Store.Load(key); err == nil {
		return nil, fmt.Errorf("%s: %w", root, gtcheck.ErrRecordExists)
	} else if !errors.Is(err, gtcheck.ErrRecordNotFound) {
		return nil, err
	}

	settings := gtcheck.DefaultSettings()
	settings.Username, settings.Email = opts.Username, opts.Email
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if opts.ResetTo != "" {
		if err := repo.Reset(ctx, opts.ResetTo, true); err != nil {
			return nil, err
		}
	}
	untracked, err := repo.Untracked(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.IntentToAdd(ctx, untracked...); err != nil {
		return nil, err
	}

	var paths []string
	if opts.AddAll {
		paths, err = repo.GroundTruthFiles(ctx)
	} else {
		paths, err = repo.Changed(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", root, gtcheck.ErrNoChanges)
	}
	gtcheck.SortNatural(paths)

	if settings.Username != "" || settings.Email != "" {
		if err := repo.SetIdentity(ctx, settings.Username, settings.Email); err != nil {
			return nil, err
		}
	}
	settings.Username, settings.Email, err = repo.Identity(ctx)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, err
	}
	if head == "" {
		s.logger().Warn("repository has no commit yet", "path", root)
	}

	readme := opts.Readme
	if readme == "" {
		readme = s.findReadme(root)
	} else if abs, err := filepath.Abs(readme); err == nil {
		readme = abs
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(root)
	}
	imageDir := opts.ImageDir
	if imageDir != "" {
		if abs, err := filepath.Abs(imageDir); err == nil {
			imageDir = abs
		}
	}

	rec := &gtcheck.Record{
		Path:     root,
		Mode:     gtcheck.ModeMain,
		Group:    group,
		Variant:  gtcheck.MainVariant,
		ImageDir: imageDir,
		Name:     name,
		Info:     opts.Info,
		InitHead: head,
		AddAll:   opts.AddAll,
		Readme:   readme,
		Created:  s.now(),
		Settings: settings,
		Queue:    gtcheck.NewQueue(paths),
	}
	if err := s.Store.Create(key, rec); err != nil {
		return nil, err
	}
	s.logger().Info("registered repository", "path", root, "key", key.String(), "files", len(paths))
	return rec, nil
}

// findReadme returns the first markdown file in dir named like a readme.
func (s *Service) findReadme(dir string) string {
	names, err := s.FS.ListDir(dir)
	if err != nil {
		return ""
	}
	for _, name := range names {
		if strings.EqualFold(filepath.Ext(name), ".md") && strings.Contains(strings.ToLower(name), "readme") {
			return filepath.Join(dir, name)
		}
	}
	return ""
}
