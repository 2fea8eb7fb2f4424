package mock

import (
	"context"

	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.Repository = (*Repository)(nil)

// Repository is a mock implementation of gtcheck.Repository.
type Repository struct {
	RootFn             func() string
	ChangedFn          func(ctx context.Context) ([]string, error)
	ChangesFn          func(ctx context.Context, paths []string) (map[string]*gtcheck.Change, error)
	WordDiffFn         func(ctx context.Context, path, wordRegex string) (string, error)
	UntrackedFn        func(ctx context.Context) ([]string, error)
	GroundTruthFilesFn func(ctx context.Context) ([]string, error)
	ShowFn             func(ctx context.Context, rev, path string) (string, error)
	StageFn            func(ctx context.Context, paths ...string) error
	UnstageFn          func(ctx context.Context, path string) error
	IntentToAddFn      func(ctx context.Context, paths ...string) error
	CommitFn           func(ctx context.Context, message string) error
	RevertFn           func(ctx context.Context, path string) error
	RemoveFn           func(ctx context.Context, path string) error
	ResetFn            func(ctx context.Context, rev string, soft bool) error
	StagedSummaryFn    func(ctx context.Context) (int, error)
	IsDirtyFn          func(ctx context.Context) (bool, error)
	HeadFn             func(ctx context.Context) (string, error)
	IdentityFn         func(ctx context.Context) (string, string, error)
	SetIdentityFn      func(ctx context.Context, name, email string) error
}

func (r *Repository) Root() string {
	return r.RootFn()
}

func (r *Repository) Changed(ctx context.Context) ([]string, error) {
	return r.ChangedFn(ctx)
}

func (r *Repository) Changes(ctx context.Context, paths []string) (map[string]*gtcheck.Change, error) {
	return r.ChangesFn(ctx, paths)
}

func (r *Repository) WordDiff(ctx context.Context, path, wordRegex string) (string, error) {
	return r.WordDiffFn(ctx, path, wordRegex)
}

func (r *Repository) Untracked(ctx context.Context) ([]string, error) {
	return r.UntrackedFn(ctx)
}

func (r *Repository) GroundTruthFiles(ctx context.Context) ([]string, error) {
	return r.GroundTruthFilesFn(ctx)
}

func (r *Repository) Show(ctx context.Context, rev, path string) (string, error) {
	return r.ShowFn(ctx, rev, path)
}

func (r *Repository) Stage(ctx context.Context, paths ...string) error {
	return r.StageFn(ctx, paths...)
}

func (r *Repository) Unstage(ctx context.Context, path string) error {
	return r.UnstageFn(ctx, path)
}

func (r *Repository) IntentToAdd(ctx context.Context, paths ...string) error {
	return r.IntentToAddFn(ctx, paths...)
}

func (r *Repository) Commit(ctx context.Context, message string) error {
	return r.CommitFn(ctx, message)
}

func (r *Repository) Revert(ctx context.Context, path string) error {
	return r.RevertFn(ctx, path)
}

func (r *Repository) Remove(ctx context.Context, path string) error {
	return r.RemoveFn(ctx, path)
}

func (r *Repository) Reset(ctx context.Context, rev string, soft bool) error {
	return r.ResetFn(ctx, rev, soft)
}

func (r *Repository) StagedSummary(ctx context.Context) (int, error) {
	return r.StagedSummaryFn(ctx)
}

func (r *Repository) IsDirty(ctx context.Context) (bool, error) {
	return r.IsDirtyFn(ctx)
}

func (r *Repository) Head(ctx context.Context) (string, error) {
	return r.HeadFn(ctx)
}

func (r *Repository) Identity(ctx context.Context) (string, string, error) {
	return r.IdentityFn(ctx)
}

func (r *Repository) SetIdentity(ctx context.Context, name, email string) error {
	return r.SetIdentityFn(ctx, name, email)
}
