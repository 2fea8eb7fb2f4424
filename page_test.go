package gtcheck_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/gtcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagePattern(t *testing.T) {
	t.Parallel()

	t.Run("accepts the default pattern", func(t *testing.T) {
		t.Parallel()

		p, err := gtcheck.ParsePagePattern(gtcheck.DefaultPagePattern)

		require.NoError(t, err)
		assert.Equal(t, gtcheck.DefaultPagePattern, p.String())
	})

	t.Run("rejects invalid regex", func(t *testing.T) {
		t.Parallel()

		_, err := gtcheck.ParsePagePattern(`^(.*?(\d+)`)

		var settingsErr *gtcheck.SettingsError
		require.ErrorAs(t, err, &settingsErr)
		assert.Equal(t, "page_pattern", settingsErr.Field)
	})

	t.Run("rejects patterns with too few groups", func(t *testing.T) {
		t.Parallel()

		_, err := gtcheck.ParsePagePattern(`^(.*?)(\d+)$`)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "got 2")
	})
}

func TestPagePattern_Parse(t *testing.T) {
	t.Parallel()

	p, err := gtcheck.ParsePagePattern(gtcheck.DefaultPagePattern)
	require.NoError(t, err)

	t.Run("splits prefix number and suffix", func(t *testing.T) {
		t.Parallel()

		page, ok := p.Parse("scan_0042.png")

		require.True(t, ok)
		assert.Equal(t, gtcheck.PageName{Prefix: "scan_", Number: 42, Width: 4, Suffix: ".png"}, page)
	})

	t.Run("keeps zero padding width", func(t *testing.T) {
		t.Parallel()

		page, ok := p.Parse("p007.tif")

		require.True(t, ok)
		assert.Equal(t, "p006.tif", page.Sibling(-1))
		assert.Equal(t, "p008.tif", page.Sibling(1))
	})

	t.Run("grows width when the number overflows it", func(t *testing.T) {
		t.Parallel()

		page, ok := p.Parse("p99.tif")

		require.True(t, ok)
		assert.Equal(t, "p100.tif", page.Sibling(1))
	})

	t.Run("reports no match without digits", func(t *testing.T) {
		t.Parallel()

		_, ok := p.Parse("cover.png")

		assert.False(t, ok)
	})
}

func TestLocateNeighbors(t *testing.T) {
	t.Parallel()

	p, err := gtcheck.ParsePagePattern(gtcheck.DefaultPagePattern)
	require.NoError(t, err)

	var listing []string
	for i := 0; i <= 10; i++ {
		listing = append(listing, fmt.Sprintf("page-%03d.png", i))
	}

	t.Run("finds both neighbors in the middle", func(t *testing.T) {
		t.Parallel()

		got := gtcheck.LocateNeighbors("page-005.png", listing, p)

		assert.Equal(t, gtcheck.Neighbors{Prev: "page-004.png", Next: "page-006.png"}, got)
	})

	t.Run("first page has no predecessor", func(t *testing.T) {
		t.Parallel()

		got := gtcheck.LocateNeighbors("page-000.png", listing, p)

		assert.Equal(t, gtcheck.Neighbors{Next: "page-001.png"}, got)
	})

	t.Run("last page has no successor", func(t *testing.T) {
		t.Parallel()

		got := gtcheck.LocateNeighbors("page-010.png", listing, p)

		assert.Equal(t, gtcheck.Neighbors{Prev: "page-009.png"}, got)
	})

	t.Run("unparseable name has no neighbors", func(t *testing.T) {
		t.Parallel()

		got := gtcheck.LocateNeighbors("cover.png", listing, p)

		assert.Equal(t, gtcheck.Neighbors{}, got)
	})
}
