package jsonl_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendLoad(t *testing.T) {
	t.Parallel()

	t.Run("appends entries in order", func(t *testing.T) {
		t.Parallel()

		journal := jsonl.NewJournal(t.TempDir())
		key := gtcheck.NewRecordKey("default", "/data/book", "")
		at := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

		require.NoError(t, journal.Append(key, gtcheck.JournalEntry{
			Time:    at,
			Path:    "p001.gt.txt",
			Action:  gtcheck.ActionCommit,
			Kind:    gtcheck.KindModified,
			Message: "book: teh → the",
			Edits:   []gtcheck.EditPair{{Original: "teh", Replacement: "the"}},
		}))
		require.NoError(t, journal.Append(key, gtcheck.JournalEntry{
			Time:   at.Add(time.Minute),
			Path:   "p002.gt.txt",
			Action: gtcheck.ActionSkip,
			Kind:   gtcheck.KindNew,
		}))

		entries, err := journal.Load(key)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "p001.gt.txt", entries[0].Path)
		assert.Equal(t, gtcheck.ActionCommit, entries[0].Action)
		assert.Equal(t, []gtcheck.EditPair{{Original: "teh", Replacement: "the"}}, entries[0].Edits)
		assert.Equal(t, gtcheck.KindNew, entries[1].Kind)
		assert.True(t, at.Equal(entries[0].Time))
	})

	t.Run("missing journal is empty", func(t *testing.T) {
		t.Parallel()

		journal := jsonl.NewJournal(t.TempDir())

		entries, err := journal.Load(gtcheck.NewRecordKey("default", "/nowhere", ""))

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("reports malformed line", func(t *testing.T) {
		t.Parallel()

		journal := jsonl.NewJournal(t.TempDir())
		key := gtcheck.NewRecordKey("default", "/data/book", "")
		path := journal.Path(key)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{\"path\":\"a.gt.txt\",\"action\":\"skip\",\"kind\":\"new\"}\nnot valid json\n"), 0o644))

		_, err := journal.Load(key)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}
