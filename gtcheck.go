// Package gtcheck provides domain types for reviewing edits to OCR ground
// truth files tracked in git.
package gtcheck

import (
	"context"
	"fmt"
	"io"
)

// GTSuffix identifies ground truth transcription files.
const GTSuffix = ".gt.txt"

// Kind describes how a ground truth file differs from its committed state.
type Kind int

// Modification kinds.
const (
	KindModified Kind = iota
	KindNew
	KindDeleted
	KindMerge
	KindUnchanged
)

var kindNames = map[Kind]string{
	KindModified:  "modified",
	KindNew:       "new",
	KindDeleted:   "deleted",
	KindMerge:     "merge-conflict",
	KindUnchanged: "unchanged",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", text)
}

// Conflict holds both sides of an unresolved merge.
type Conflict struct {
	Ours   string
	Theirs string
}

// Change is the before/after state of a single ground truth file.
type Change struct {
	Path     string
	Kind     Kind
	Original string // index content, empty for new files
	Modified string // working tree content, empty for deleted files
	Conflict *Conflict
}

// NewChange builds a Change, rejecting merge conflicts without both sides.
func NewChange(path string, kind Kind, original, modified string, conflict *Conflict) (*Change, error) {
	if kind == KindMerge && conflict == nil {
		return nil, fmt.Errorf("%s: merge conflict without conflict text", path)
	}
	if kind != KindMerge && conflict != nil {
		return nil, fmt.Errorf("%s: conflict text on %s file", path, kind)
	}
	return &Change{
		Path:     path,
		Kind:     kind,
		Original: original,
		Modified: modified,
		Conflict: conflict,
	}, nil
}

// CarbonCopy reports whether the change is a no-op edit of non-empty text.
func (c *Change) CarbonCopy() bool {
	return c.Kind != KindMerge && c.Original != "" && c.Original == c.Modified
}

// FileStatus is the per-file result of parsing a patch.
type FileStatus struct {
	Path string
	Kind Kind
}

// Repository is the version control collaborator for one working copy.
type Repository interface {
	// Root returns the absolute path of the working tree.
	Root() string

	// Changed lists ground truth files that differ from the index.
	Changed(ctx context.Context) ([]string, error)

	// Changes returns the before/after state of the given paths.
	// Paths that are neither changed nor present on disk are absent from the result.
	Changes(ctx context.Context, paths []string) (map[string]*Change, error)

	// WordDiff returns word-diff annotated text for a single path.
	WordDiff(ctx context.Context, path, wordRegex string) (string, error)

	// Untracked lists ground truth files unknown to version control.
	Untracked(ctx context.Context) ([]string, error)

	// GroundTruthFiles lists every ground truth file, tracked or not.
	GroundTruthFiles(ctx context.Context) ([]string, error)

	// Show returns the content of path at the given revision.
	Show(ctx context.Context, rev, path string) (string, error)

	Stage(ctx context.Context, paths ...string) error
	Unstage(ctx context.Context, path string) error
	IntentToAdd(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Revert(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
	Reset(ctx context.Context, rev string, soft bool) error

	// StagedSummary returns the number of staged files, zero when nothing is staged.
	StagedSummary(ctx context.Context) (int, error)
	IsDirty(ctx context.Context) (bool, error)
	Head(ctx context.Context) (string, error)

	Identity(ctx context.Context) (name, email string, err error)
	SetIdentity(ctx context.Context, name, email string) error
}

// FileSystem reads and writes working tree files.
type FileSystem interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	Remove(path string) error
	CopyFile(src, dst string) error
	ListDir(dir string) ([]string, error)
	IsImage(path string) bool
}

// Annotator produces word-diff annotated text for two versions of a text.
type Annotator interface {
	Annotate(old, new string) string
}

// PatchParser extracts per-file statuses from unified diff output.
type PatchParser interface {
	Parse(r io.Reader) ([]FileStatus, error)
}

// RecordStore persists review records.
type RecordStore interface {
	Load(key RecordKey) (*Record, error)
	Create(key RecordKey, rec *Record) error
	// Save writes rec if the stored revision still equals rec.Revision,
	// returning ErrConflict otherwise, and increments rec.Revision.
	Save(key RecordKey, rec *Record) error
	Delete(key RecordKey) error
	List() ([]RecordKey, error)
}

// Journal records review decisions.
type Journal interface {
	Append(key RecordKey, entry JournalEntry) error
	Load(key RecordKey) ([]JournalEntry, error)
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
