package review_test

import (
	"testing"

	"github.com/fwojciec/gtcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_Refilter(t *testing.T) {
	t.Parallel()

	t.Run("pulls matching files back to the front", func(t *testing.T) {
		t.Parallel()

		w := newWorld().
			modified("a.gt.txt", "x", "long ſ here").
			modified("b.gt.txt", "x", "plain").
			modified("c.gt.txt", "x", "another ſ").
			modified("d.gt.txt", "x", "pending")
		rec := newRecord("d.gt.txt")
		rec.Queue.Skipped = []string{"a.gt.txt", "b.gt.txt"}
		rec.Queue.Finished = []string{"c.gt.txt"}

		n, err := w.machine().Refilter(w.repo(), rec, "ſ")

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"a.gt.txt", "c.gt.txt", "d.gt.txt"}, rec.Queue.Pending)
		assert.Equal(t, []string{"b.gt.txt"}, rec.Queue.Skipped)
		assert.Empty(t, rec.Queue.Finished)
	})

	t.Run("invalid expression", func(t *testing.T) {
		t.Parallel()

		w := newWorld()
		rec := newRecord()

		_, err := w.machine().Refilter(w.repo(), rec, "(")

		var settingsErr *gtcheck.SettingsError
		require.ErrorAs(t, err, &settingsErr)
		assert.Equal(t, "filter", settingsErr.Field)
	})
}

func TestMachine_Requeue(t *testing.T) {
	t.Parallel()

	w := newWorld()
	rec := newRecord("c.gt.txt")
	rec.Queue.Skipped = []string{"a.gt.txt", "b.gt.txt"}
	rec.Current = &gtcheck.Current{Path: "c.gt.txt"}

	n := w.machine().Requeue(rec)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a.gt.txt", "b.gt.txt", "c.gt.txt"}, rec.Queue.Pending)
	assert.Nil(t, rec.Current)
}
