package worddiff_test

import (
	"testing"

	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/worddiff"
	"github.com/stretchr/testify/assert"
)

func TestDiffer_Tokenize(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()

	assert.Nil(t, d.Tokenize(""))
	assert.Equal(t, []string{"Hello", ",", " ", "wörld", "  ", "42x"}, d.Tokenize("Hello, wörld  42x"))
}

func TestDiffer_Annotate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{name: "identical", old: "hello world", new: "hello world", want: "hello world"},
		{name: "both empty", old: "", new: "", want: ""},
		{name: "insert into empty", old: "", new: "x", want: "{+x+}"},
		{name: "delete everything", old: "x", new: "", want: "[-x-]"},
		{name: "single word change", old: "hello world", new: "hello universe", want: "hello [-world-]{+universe+}"},
		{name: "completely different", old: "abc", new: "xyz", want: "[-abc-]{+xyz+}"},
		{
			name: "multiple changes",
			old:  "teh quick brwon fox",
			new:  "the quick brown fox",
			want: "[-teh-]{+the+} quick [-brwon-]{+brown+} fox",
		},
		{name: "historical letters", old: "Þæt ſind", new: "Þæt sind", want: "Þæt [-ſind-]{+sind+}"},
		{name: "punctuation", old: "end.", new: "end,", want: "end[-.-]{+,+}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := worddiff.NewDiffer()

			assert.Equal(t, tt.want, d.Annotate(tt.old, tt.new))
		})
	}
}

func TestDiffer_Annotate_TokenizesToEditPairs(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()

	pairs := gtcheck.Tokenize(d.Annotate("teh quick brwon fox", "the quick brown fox"))

	assert.Equal(t, []gtcheck.EditPair{
		{Original: "teh", Replacement: "the"},
		{Original: "brwon", Replacement: "brown"},
	}, pairs)
}
