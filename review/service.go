package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/gtcheck"
	"golang.org/x/sync/errgroup"
)

// overviewLimit caps concurrent repository inspections in Overview.
const overviewLimit = 4

// OpenFunc opens the repository whose working tree contains path.
type OpenFunc func(ctx context.Context, path string) (gtcheck.Repository, error)

// DefaultReviewer names the reviewer when none is configured.
const DefaultReviewer = "GTChecker"

// Service runs review operations against persisted records. Every
// operation loads the record, applies the change and saves it, failing
// with gtcheck.ErrConflict when another writer saved in between.
type Service struct {
	Store      gtcheck.RecordStore
	Journal    gtcheck.Journal
	Machine    *Machine
	FS         gtcheck.FileSystem
	Open       OpenFunc
	Init       OpenFunc // creates a repository, used by Split
	SubrepoDir string
	Reviewer   string // checked against reservations
	Logger     *slog.Logger
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) reviewer() string {
	if s.Reviewer == "" {
		return DefaultReviewer
	}
	return s.Reviewer
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// Get loads the record for key.
func (s *Service) Get(key gtcheck.RecordKey) (*gtcheck.Record, error) {
	return s.Store.Load(key)
}

// load returns the record for key and its opened repository.
func (s *Service) load(ctx context.Context, key gtcheck.RecordKey) (*gtcheck.Record, gtcheck.Repository, error) {
	rec, err := s.Store.Load(key)
	if err != nil {
		return nil, nil, err
	}
	repo, err := s.Open(ctx, rec.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", rec.Path, err)
	}
	return rec, repo, nil
}

func (s *Service) save(key gtcheck.RecordKey, rec *gtcheck.Record) error {
	if err := rec.Queue.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent queue: %w", err)
	}
	return s.Store.Save(key, rec)
}

// checkReservation fails when someone other than the reviewer holds rec.
func (s *Service) checkReservation(rec *gtcheck.Record) error {
	if r := rec.Reservation; r != nil && r.By != s.reviewer() {
		return fmt.Errorf("reserved by %s since %s: %w", r.By, r.Since.Format(time.DateOnly), gtcheck.ErrReserved)
	}
	return nil
}

// Next presents the next file of the record.
func (s *Service) Next(ctx context.Context, key gtcheck.RecordKey) (*Result, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := s.Machine.Advance(ctx, repo, rec)
	if err != nil {
		return nil, err
	}
	if err := s.save(key, rec); err != nil {
		return nil, err
	}
	return res, nil
}

// Decide applies a decision to the presented file, journals it and
// presents the next file. A decision that was applied is saved even when
// advancing afterwards fails.
func (s *Service) Decide(ctx context.Context, key gtcheck.RecordKey, d gtcheck.Decision) (*Result, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.checkReservation(rec); err != nil {
		return nil, err
	}

	cur := rec.Current
	if err := s.Machine.Apply(ctx, repo, rec, d); err != nil {
		return nil, err
	}
	s.journal(key, d, cur)

	res, advanceErr := s.Machine.Advance(ctx, repo, rec)
	if err := s.save(key, rec); err != nil {
		return nil, err
	}
	if advanceErr != nil {
		return nil, advanceErr
	}
	return res, nil
}

func (s *Service) journal(key gtcheck.RecordKey, d gtcheck.Decision, cur *gtcheck.Current) {
	if s.Journal == nil {
		return
	}
	entry := gtcheck.JournalEntry{Time: s.now(), Action: d.Action}
	if cur != nil && d.Action != gtcheck.ActionUndo {
		entry.Path = cur.Path
		entry.Kind = cur.Kind
		entry.Edits = cur.Edits
		if d.Action == gtcheck.ActionCommit {
			entry.Message = d.Message
			if entry.Message == "" {
				entry.Message = cur.Message
			}
		}
	}
	if err := s.Journal.Append(key, entry); err != nil {
		s.logger().Warn("cannot write journal", "key", key.String(), "error", err)
	}
}

// Requeue moves skipped files back to pending and presents the next file.
func (s *Service) Requeue(ctx context.Context, key gtcheck.RecordKey) (int, *Result, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return 0, nil, err
	}
	if err := s.checkReservation(rec); err != nil {
		return 0, nil, err
	}
	n := s.Machine.Requeue(rec)
	res, err := s.Machine.Advance(ctx, repo, rec)
	if err != nil {
		return 0, nil, err
	}
	if err := s.save(key, rec); err != nil {
		return 0, nil, err
	}
	return n, res, nil
}

// CommitStaged commits the files staged with add, requeues the skipped
// files and presents the next file. An empty message describes the commit
// by its file count.
func (s *Service) CommitStaged(ctx context.Context, key gtcheck.RecordKey, message string) (int, *Result, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return 0, nil, err
	}
	if err := s.checkReservation(rec); err != nil {
		return 0, nil, err
	}
	staged, err := repo.StagedSummary(ctx)
	if err != nil {
		return 0, nil, err
	}
	if staged == 0 {
		return 0, nil, errors.New("nothing staged to commit")
	}
	if message == "" {
		message = fmt.Sprintf("Commit %d staged files.", staged)
	}
	if err := repo.Commit(ctx, CommitPrefix+message); err != nil {
		return 0, nil, err
	}
	s.Machine.Requeue(rec)
	rec.Queue.Undo = nil
	rec.LastAction = gtcheck.ActionCommit.String()
	s.logger().Info("committed staged files", "key", key.String(), "files", staged)

	res, advanceErr := s.Machine.Advance(ctx, repo, rec)
	if err := s.save(key, rec); err != nil {
		return 0, nil, err
	}
	if advanceErr != nil {
		return 0, nil, advanceErr
	}
	return staged, res, nil
}

// Refilter moves reviewed files whose text matches expr back to pending
// and presents the next file.
func (s *Service) Refilter(ctx context.Context, key gtcheck.RecordKey, expr string) (int, *Result, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return 0, nil, err
	}
	if err := s.checkReservation(rec); err != nil {
		return 0, nil, err
	}
	n, err := s.Machine.Refilter(repo, rec, expr)
	if err != nil {
		return 0, nil, err
	}
	res, err := s.Machine.Advance(ctx, repo, rec)
	if err != nil {
		return 0, nil, err
	}
	if err := s.save(key, rec); err != nil {
		return 0, nil, err
	}
	return n, res, nil
}

// UpdateSettings applies fn to the record settings. Invalid settings are
// rejected before anything is written.
func (s *Service) UpdateSettings(ctx context.Context, key gtcheck.RecordKey, fn func(*gtcheck.Settings)) (*gtcheck.Record, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	settings := rec.Settings
	fn(&settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.Username != rec.Settings.Username || settings.Email != rec.Settings.Email {
		if err := repo.SetIdentity(ctx, settings.Username, settings.Email); err != nil {
			return nil, err
		}
	}
	rec.Settings = settings
	rec.Current = nil
	if err := s.save(key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Squash replaces the commits made during review with a single commit on
// top of the initial head.
func (s *Service) Squash(ctx context.Context, key gtcheck.RecordKey) (int, error) {
	rec, repo, err := s.load(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := s.checkReservation(rec); err != nil {
		return 0, err
	}
	if rec.InitHead == "" {
		return 0, errors.New("repository had no commit when registered, nothing to squash onto")
	}
	if err := repo.Reset(ctx, rec.InitHead, false); err != nil {
		return 0, err
	}
	changed, err := repo.Changed(ctx)
	if err != nil {
		return 0, err
	}
	if err := repo.Stage(ctx, changed...); err != nil {
		return 0, err
	}
	if err := repo.Commit(ctx, fmt.Sprintf("%sSquashed-commit added %d files.", CommitPrefix, len(changed))); err != nil {
		return 0, err
	}
	head, err := repo.Head(ctx)
	if err != nil {
		return 0, err
	}
	rec.Squashed = head
	if err := s.save(key, rec); err != nil {
		return 0, err
	}
	s.logger().Info("squashed review commits", "key", key.String(), "files", len(changed), "head", head)
	return len(changed), nil
}

// Reserve marks the record as claimed by by, or by the service's reviewer
// when by is empty.
func (s *Service) Reserve(key gtcheck.RecordKey, by string) error {
	rec, err := s.Store.Load(key)
	if err != nil {
		return err
	}
	if by == "" {
		by = s.reviewer()
	}
	if r := rec.Reservation; r != nil && r.By != by {
		return fmt.Errorf("reserved by %s: %w", r.By, gtcheck.ErrReserved)
	}
	rec.Reservation = &gtcheck.Reservation{By: by, Since: s.now()}
	return s.save(key, rec)
}

// Release clears the reservation of the record.
func (s *Service) Release(key gtcheck.RecordKey) error {
	rec, err := s.Store.Load(key)
	if err != nil {
		return err
	}
	if rec.Reservation == nil {
		return nil
	}
	rec.Reservation = nil
	return s.save(key, rec)
}

// Done removes the record. The repository is left untouched.
func (s *Service) Done(key gtcheck.RecordKey) error {
	if err := s.Store.Delete(key); err != nil {
		return err
	}
	s.logger().Info("review done", "key", key.String())
	return nil
}

// History returns the journaled decisions of the record.
func (s *Service) History(key gtcheck.RecordKey) ([]gtcheck.JournalEntry, error) {
	if s.Journal == nil {
		return nil, nil
	}
	return s.Journal.Load(key)
}

// Status summarizes one record for Overview.
type Status struct {
	Key         gtcheck.RecordKey    `json:"key"`
	Name        string               `json:"name"`
	Path        string               `json:"path"`
	Mode        string               `json:"mode"`
	Counts      Counts               `json:"counts"`
	Dirty       bool                 `json:"dirty"`
	Reservation *gtcheck.Reservation `json:"reservation,omitempty"`
	LastAction  string               `json:"last_action,omitempty"`
	Err         string               `json:"error,omitempty"`
}

// Overview inspects every stored record concurrently. Problems with a
// single repository are reported in its Status.
func (s *Service) Overview(ctx context.Context) ([]Status, error) {
	keys, err := s.Store.List()
	if err != nil {
		return nil, err
	}
	statuses := make([]Status, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewLimit)
	for i, key := range keys {
		g.Go(func() error {
			statuses[i] = s.status(ctx, key)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *Service) status(ctx context.Context, key gtcheck.RecordKey) Status {
	st := Status{Key: key}
	rec, err := s.Store.Load(key)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	st.Name = RepoName(rec)
	st.Path = rec.Path
	st.Mode = rec.Mode
	st.Reservation = rec.Reservation
	st.LastAction = rec.LastAction
	st.Counts = Counts{
		Pending:  len(rec.Queue.Pending),
		Skipped:  len(rec.Queue.Skipped),
		Finished: len(rec.Queue.Finished),
		Removed:  len(rec.Queue.Removed),
	}
	repo, err := s.Open(ctx, rec.Path)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	if st.Counts.Staged, err = repo.StagedSummary(ctx); err != nil {
		st.Err = err.Error()
		return st
	}
	if st.Dirty, err = repo.IsDirty(ctx); err != nil {
		st.Err = err.Error()
	}
	return st
}
