// Package worddiff computes word-level diffs of transcription text in
// process and renders them with git's plain word-diff markers.
package worddiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/gtcheck"
)

// Compile-time interface verification.
var _ gtcheck.Annotator = (*Differ)(nil)

// Differ tokenizes text and computes word-level diffs.
type Differ struct{}

// NewDiffer creates a new Differ instance.
func NewDiffer() *Differ {
	return &Differ{}
}

// Tokenize splits a string into words, whitespace runs and single
// punctuation characters.
func (d *Differ) Tokenize(s string) []string {
	if len(s) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(s)/3+1)
	i := 0

	for i < len(s) {
		start := i
		r, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case isWordRune(r):
			i += size
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}

		case unicode.IsSpace(r):
			i += size
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}

		default:
			i += size
		}

		tokens = append(tokens, s[start:i])
	}

	return tokens
}

// isWordRune accepts letters with their combining marks and digits, which
// covers historical orthography such as long s or superscript e.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// similarityThreshold is the minimum ratio for word-level diffing.
// Below this threshold, texts are treated as complete replacements.
const similarityThreshold = 0.4

// Annotate returns new compared against old, with deleted text wrapped in
// [- -] and inserted text in {+ +}.
func (d *Differ) Annotate(old, new string) string {
	switch {
	case old == new:
		return old
	case old == "":
		return gtcheck.InsertStart + new + gtcheck.InsertEnd
	case new == "":
		return gtcheck.DeleteStart + old + gtcheck.DeleteEnd
	}

	oldTokens := d.Tokenize(old)
	newTokens := d.Tokenize(new)

	if !hasSufficientSimilarity(oldTokens, newTokens) {
		return gtcheck.DeleteStart + old + gtcheck.DeleteEnd + gtcheck.InsertStart + new + gtcheck.InsertEnd
	}

	return annotate(oldTokens, newTokens)
}

// hasSufficientSimilarity checks if tokens have enough overlap to warrant word-level diff.
func hasSufficientSimilarity(oldTokens, newTokens []string) bool {
	oldLen, newLen := len(oldTokens), len(newTokens)
	if oldLen == 0 || newLen == 0 {
		return false
	}

	counts := make(map[string]int, oldLen)
	for _, t := range oldTokens {
		counts[t]++
	}

	common := 0
	for _, t := range newTokens {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}

	total := oldLen + newLen
	return float64(2*common)/float64(total) >= similarityThreshold
}

// annotate computes the LCS of two token sequences and writes every gap
// between matches as a deletion followed by an insertion.
func annotate(oldTokens, newTokens []string) string {
	m, n := len(oldTokens), len(newTokens)

	// table[i*(n+1)+j] corresponds to table[i][j]
	table := make([]int, (m+1)*(n+1))
	stride := n + 1

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if oldTokens[i-1] == newTokens[j-1] {
				table[i*stride+j] = table[(i-1)*stride+j-1] + 1
			} else if table[(i-1)*stride+j] > table[i*stride+j-1] {
				table[i*stride+j] = table[(i-1)*stride+j]
			} else {
				table[i*stride+j] = table[i*stride+j-1]
			}
		}
	}

	type match struct{ oldIdx, newIdx int }
	matches := make([]match, 0, table[m*stride+n])

	i, j := m, n
	for i > 0 && j > 0 {
		if oldTokens[i-1] == newTokens[j-1] {
			matches = append(matches, match{i - 1, j - 1})
			i--
			j--
		} else if table[(i-1)*stride+j] > table[i*stride+j-1] {
			i--
		} else {
			j--
		}
	}

	// Backtracking yields matches in reverse order.
	for left, right := 0, len(matches)-1; left < right; left, right = left+1, right-1 {
		matches[left], matches[right] = matches[right], matches[left]
	}

	var b strings.Builder
	gap := func(oldGap, newGap []string) {
		if len(oldGap) > 0 {
			b.WriteString(gtcheck.DeleteStart)
			b.WriteString(strings.Join(oldGap, ""))
			b.WriteString(gtcheck.DeleteEnd)
		}
		if len(newGap) > 0 {
			b.WriteString(gtcheck.InsertStart)
			b.WriteString(strings.Join(newGap, ""))
			b.WriteString(gtcheck.InsertEnd)
		}
	}

	oldIdx, newIdx := 0, 0
	for _, mt := range matches {
		gap(oldTokens[oldIdx:mt.oldIdx], newTokens[newIdx:mt.newIdx])
		b.WriteString(oldTokens[mt.oldIdx])
		oldIdx = mt.oldIdx + 1
		newIdx = mt.newIdx + 1
	}
	gap(oldTokens[oldIdx:], newTokens[newIdx:])

	return b.String()
}
