// Package jsonl provides the JSONL decision journal.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.Journal = (*Journal)(nil)

// maxLineSize is the maximum size for a single JSONL line (4MB).
const maxLineSize = 4 * 1024 * 1024

// Journal appends review decisions to dir/<group>/<hash>/<variant>.jsonl.
type Journal struct {
	dir string
	mu  sync.Mutex
}

// NewJournal creates a Journal rooted at dir.
func NewJournal(dir string) *Journal {
	return &Journal{dir: dir}
}

// Path returns the journal file for key.
func (j *Journal) Path(key gtcheck.RecordKey) string {
	return filepath.Join(j.dir, key.Group, key.Hash, key.Variant+".jsonl")
}

// Append writes entry as one line, creating parent directories if needed.
func (j *Journal) Append(key gtcheck.RecordKey, entry gtcheck.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	path := j.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// Load reads all entries for key. A missing journal has no entries.
func (j *Journal) Load(key gtcheck.RecordKey) ([]gtcheck.JournalEntry, error) {
	f, err := os.Open(j.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []gtcheck.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var e gtcheck.JournalEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
