// Package jsonfile persists review records as one JSON document per record.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/gtcheck"
	"github.com/gofrs/flock"
)

// Compile-time interface verification.
var _ gtcheck.RecordStore = (*Store)(nil)

const (
	recordExt = ".json"
	lockExt   = ".lock"
)

// Store keeps records under dir/<group>/<hash>/<variant>.json. Writes hold
// an exclusive lock on a sibling .lock file, so the revision check also
// holds between processes.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file that holds the record for key.
func (s *Store) Path(key gtcheck.RecordKey) string {
	return filepath.Join(s.dir, key.Group, key.Hash, key.Variant+recordExt)
}

func validKey(key gtcheck.RecordKey) error {
	for _, part := range []string{key.Group, key.Hash, key.Variant} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("invalid record key %q", key.Group+"/"+key.Hash+"/"+key.Variant)
		}
	}
	return nil
}

// Load reads the record for key.
func (s *Store) Load(key gtcheck.RecordKey) (*gtcheck.Record, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return s.read(s.Path(key))
}

func (s *Store) read(path string) (*gtcheck.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, gtcheck.ErrRecordNotFound)
		}
		return nil, err
	}
	var rec gtcheck.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rec, nil
}

// Create writes a new record, failing with ErrRecordExists if one is stored.
func (s *Store) Create(key gtcheck.RecordKey, rec *gtcheck.Record) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	unlock, err := lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", key, gtcheck.ErrRecordExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	rec.Revision = 1
	return write(path, rec)
}

// Save replaces the stored record if its revision still equals rec.Revision.
func (s *Store) Save(key gtcheck.RecordKey, rec *gtcheck.Record) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	unlock, err := lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	stored, err := s.read(path)
	if err != nil {
		return err
	}
	if stored.Revision != rec.Revision {
		return fmt.Errorf("%s: stored revision %d, have %d: %w", key, stored.Revision, rec.Revision, gtcheck.ErrConflict)
	}
	rec.Revision++
	if err := write(path, rec); err != nil {
		rec.Revision--
		return err
	}
	return nil
}

// lock takes the cross-process lock guarding path.
func lock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(path + lockExt)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// write replaces path atomically via a temporary file in the same directory.
func write(path string, rec *gtcheck.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes the record for key.
func (s *Store) Delete(key gtcheck.RecordKey) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	unlock, err := lock(path)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, gtcheck.ErrRecordNotFound)
		}
		return err
	}
	return nil
}

// List returns the keys of all stored records.
func (s *Store) List() ([]gtcheck.RecordKey, error) {
	var keys []gtcheck.RecordKey
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == s.dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != recordExt || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			return nil
		}
		keys = append(keys, gtcheck.RecordKey{
			Group:   parts[0],
			Hash:    parts[1],
			Variant: strings.TrimSuffix(parts[2], recordExt),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
