package gtcheck_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/gtcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	settings := gtcheck.DefaultSettings()
	settings.Filters.From = "teh"
	settings.CustomKeys = []string{"ſ", "ꝛ"}
	settings.Username = "Reviewer"
	settings.Email = "reviewer@example.com"

	rec := &gtcheck.Record{
		Path:        "/data/corpus",
		Mode:        gtcheck.ModeMain,
		Group:       "default",
		Variant:     gtcheck.MainVariant,
		Name:        "corpus",
		InitHead:    "0123abcd",
		AddAll:      true,
		Readme:      "README.md",
		Reservation: &gtcheck.Reservation{By: "ana", Since: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		Created:     time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC),
		Revision:    7,
		Settings:    settings,
		Queue: gtcheck.Queue{
			Pending:  []string{"a.gt.txt"},
			Skipped:  []string{"b.gt.txt"},
			Finished: []string{"c.gt.txt"},
			Removed:  []string{"d.gt.txt"},
			Undo:     &gtcheck.UndoSlot{Path: "c.gt.txt", Content: "x", Existed: true, Source: gtcheck.BucketFinished, Action: gtcheck.ActionCommit},
		},
		Current: &gtcheck.Current{Path: "a.gt.txt", Kind: gtcheck.KindMerge, Shown: "the", Message: "corpus: teh -> the"},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var got gtcheck.Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec, &got)
	assert.Contains(t, string(data), `"regexnum":`)
	assert.Contains(t, string(data), `"kind":"merge-conflict"`)
}

func TestRecordKey(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the main variant", func(t *testing.T) {
		t.Parallel()

		key := gtcheck.NewRecordKey("g", "/repo", "")

		assert.Equal(t, gtcheck.MainVariant, key.Variant)
		assert.Len(t, key.Hash, 64)
	})

	t.Run("hashes cleaned paths identically", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, gtcheck.HashPath("/repo/sub/.."), gtcheck.HashPath("/repo"))
		assert.NotEqual(t, gtcheck.HashPath("/repo"), gtcheck.HashPath("/other"))
	})

	t.Run("sub records are keyed by their parent", func(t *testing.T) {
		t.Parallel()

		rec := &gtcheck.Record{Path: "/subs/x", Mode: gtcheck.ModeSub, ParentRepoPath: "/repo", Group: "g", Variant: "duplicate_01_part_01"}

		assert.Equal(t, gtcheck.NewRecordKey("g", "/repo", "duplicate_01_part_01"), rec.Key())
	})
}

func TestSortNatural(t *testing.T) {
	t.Parallel()

	paths := []string{"page10.gt.txt", "page2.gt.txt", "page1.gt.txt", "b/page1.gt.txt", "page02.gt.txt"}

	gtcheck.SortNatural(paths)

	assert.Equal(t, []string{"b/page1.gt.txt", "page1.gt.txt", "page2.gt.txt", "page02.gt.txt", "page10.gt.txt"}, paths)
}

func TestKind_Text(t *testing.T) {
	t.Parallel()

	for _, k := range []gtcheck.Kind{gtcheck.KindModified, gtcheck.KindNew, gtcheck.KindDeleted, gtcheck.KindMerge, gtcheck.KindUnchanged} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got gtcheck.Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	var k gtcheck.Kind
	assert.Error(t, k.UnmarshalText([]byte("mod")))
}

func TestNewChange(t *testing.T) {
	t.Parallel()

	t.Run("rejects merge without conflict", func(t *testing.T) {
		t.Parallel()

		_, err := gtcheck.NewChange("a.gt.txt", gtcheck.KindMerge, "a", "b", nil)

		assert.Error(t, err)
	})

	t.Run("rejects conflict on other kinds", func(t *testing.T) {
		t.Parallel()

		_, err := gtcheck.NewChange("a.gt.txt", gtcheck.KindModified, "a", "b", &gtcheck.Conflict{})

		assert.Error(t, err)
	})

	t.Run("carbon copy needs identical non-empty text", func(t *testing.T) {
		t.Parallel()

		same, err := gtcheck.NewChange("a.gt.txt", gtcheck.KindUnchanged, "x\n", "x\n", nil)
		require.NoError(t, err)
		empty, err := gtcheck.NewChange("b.gt.txt", gtcheck.KindNew, "", "", nil)
		require.NoError(t, err)
		edited, err := gtcheck.NewChange("c.gt.txt", gtcheck.KindModified, "x", "y", nil)
		require.NoError(t, err)

		assert.True(t, same.CarbonCopy())
		assert.False(t, empty.CarbonCopy())
		assert.False(t, edited.CarbonCopy())
	})
}

func TestParseConflict(t *testing.T) {
	t.Parallel()

	t.Run("splits both sides and keeps shared text", func(t *testing.T) {
		t.Parallel()

		text := "head\n<<<<<<< HEAD\nteh line\n=======\nthe line\n>>>>>>> branch\ntail\n"

		c, ok := gtcheck.ParseConflict(text)

		require.True(t, ok)
		assert.Equal(t, "head\nteh line\ntail\n", c.Ours)
		assert.Equal(t, "head\nthe line\ntail\n", c.Theirs)
	})

	t.Run("rejects text without markers", func(t *testing.T) {
		t.Parallel()

		_, ok := gtcheck.ParseConflict("plain text\n")

		assert.False(t, ok)
	})

	t.Run("rejects unterminated block", func(t *testing.T) {
		t.Parallel()

		_, ok := gtcheck.ParseConflict("<<<<<<< HEAD\na\n=======\nb\n")

		assert.False(t, ok)
	})
}
