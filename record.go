package gtcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Record modes.
const (
	ModeMain = "main"
	ModeSub  = "sub"
)

// MainVariant is the variant name of a directly registered repository.
const MainVariant = "main"

// RecordKey identifies a review record.
type RecordKey struct {
	Group   string `json:"group"`
	Hash    string `json:"hash"`
	Variant string `json:"variant"`
}

// NewRecordKey keys the repository at path within group.
func NewRecordKey(group, path, variant string) RecordKey {
	if variant == "" {
		variant = MainVariant
	}
	return RecordKey{Group: group, Hash: HashPath(path), Variant: variant}
}

func (k RecordKey) String() string {
	return k.Group + "/" + k.Hash[:min(len(k.Hash), 12)] + "/" + k.Variant
}

// HashPath returns the sha256 hex digest of the cleaned absolute path.
func HashPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(sum[:])
}

// Current is the file presented to the reviewer.
type Current struct {
	Path      string     `json:"path"`
	Kind      Kind       `json:"kind"`
	Shown     string     `json:"shown"` // text shown for editing
	Message   string     `json:"message"`
	Edits     []EditPair `json:"edits,omitempty"`
	Presented time.Time  `json:"presented"`
}

// Reservation marks a record as claimed by one reviewer.
type Reservation struct {
	By    string    `json:"reserved_by"`
	Since time.Time `json:"reserved_since"`
}

// Record is the persisted state of one repository review.
type Record struct {
	Path           string       `json:"path"`
	Mode           string       `json:"mode"`
	Group          string       `json:"group"`
	Variant        string       `json:"variant"`
	ParentRepoPath string       `json:"parent_repo_path,omitempty"`
	ImageDir       string       `json:"image_dir,omitempty"`
	Name           string       `json:"name"`
	Info           string       `json:"info,omitempty"`
	InitHead       string       `json:"init_head,omitempty"`
	Squashed       string       `json:"squashed,omitempty"`
	AddAll         bool         `json:"add_all"`
	Readme         string       `json:"readme,omitempty"`
	Reservation    *Reservation `json:"reservation,omitempty"`
	LastAction     string       `json:"last_action,omitempty"`
	Created        time.Time    `json:"created"`
	Revision       int64        `json:"revision"`
	Settings       Settings     `json:"settings"`
	Queue          Queue        `json:"queue"`
	Current        *Current     `json:"current,omitempty"`
}

// Key returns the record key.
func (r *Record) Key() RecordKey {
	path := r.Path
	if r.Mode == ModeSub && r.ParentRepoPath != "" {
		path = r.ParentRepoPath
	}
	return NewRecordKey(r.Group, path, r.Variant)
}

// JournalEntry is one logged review decision.
type JournalEntry struct {
	Time    time.Time  `json:"time"`
	Path    string     `json:"path"`
	Action  Action     `json:"action"`
	Kind    Kind       `json:"kind"`
	Message string     `json:"message,omitempty"`
	Edits   []EditPair `json:"edits,omitempty"`
}

// SortNatural sorts paths so that digit runs compare by numeric value:
// page2 sorts before page10.
func SortNatural(paths []string) {
	slices.SortStableFunc(paths, compareNatural)
}

func compareNatural(a, b string) int {
	ca, cb := naturalChunks(a), naturalChunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		xd, yd := isDigits(x), isDigits(y)
		switch {
		case xd && yd:
			if c := compareDigits(x, y); c != 0 {
				return c
			}
		default:
			if c := strings.Compare(x, y); c != 0 {
				return c
			}
		}
	}
	return len(ca) - len(cb)
}

func compareDigits(x, y string) int {
	tx, ty := strings.TrimLeft(x, "0"), strings.TrimLeft(y, "0")
	if len(tx) != len(ty) {
		return len(tx) - len(ty)
	}
	if c := strings.Compare(tx, ty); c != 0 {
		return c
	}
	return len(x) - len(y)
}

func naturalChunks(s string) []string {
	var chunks []string
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i]) != isDigit(s[i-1]) {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
