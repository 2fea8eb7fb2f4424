package gtcheck

import (
	"html"
	"regexp"
	"strings"
)

// Word-diff markers as emitted by git diff --word-diff=plain.
const (
	DeleteStart = "[-"
	DeleteEnd   = "-]"
	InsertStart = "{+"
	InsertEnd   = "+}"
)

// markerRe matches one deleted or inserted span. Unmatched markers are
// left alone and therefore read as literal text.
var markerRe = regexp.MustCompile(`(?s)\[-(.*?)-\]|\{\+(.*?)\+\}`)

// SpanKind classifies a piece of annotated diff text.
type SpanKind int

// Span kinds.
const (
	SpanEqual SpanKind = iota
	SpanDeleted
	SpanInserted
)

// Span is a contiguous piece of annotated diff text.
// Start and End are byte offsets into the annotated text, markers included.
type Span struct {
	Kind  SpanKind
	Text  string
	Start int
	End   int
}

// EditPair is one substitution between the original and the edited text.
type EditPair struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Spans splits annotated diff text into equal, deleted and inserted spans.
func Spans(diffText string) []Span {
	var spans []Span
	pos := 0
	for _, m := range markerRe.FindAllStringSubmatchIndex(diffText, -1) {
		if m[0] > pos {
			spans = append(spans, Span{Kind: SpanEqual, Text: diffText[pos:m[0]], Start: pos, End: m[0]})
		}
		span := Span{Start: m[0], End: m[1]}
		if m[2] >= 0 {
			span.Kind = SpanDeleted
			span.Text = diffText[m[2]:m[3]]
		} else {
			span.Kind = SpanInserted
			span.Text = diffText[m[4]:m[5]]
		}
		spans = append(spans, span)
		pos = m[1]
	}
	if pos < len(diffText) {
		spans = append(spans, Span{Kind: SpanEqual, Text: diffText[pos:], Start: pos, End: len(diffText)})
	}
	return spans
}

// Tokenize converts annotated diff text into ordered edit pairs.
//
// A non-empty insertion that starts exactly where the last emitted pair
// ended is folded into that pair when it has no replacement yet, so
// "[-teh-]{+the+}" yields a single teh -> the pair.
func Tokenize(diffText string) []EditPair {
	var pairs []EditPair
	lastEnd := -1
	for _, s := range Spans(diffText) {
		switch s.Kind {
		case SpanDeleted:
			pairs = append(pairs, EditPair{Original: s.Text})
			lastEnd = s.End
		case SpanInserted:
			if n := len(pairs); s.Text != "" && n > 0 && s.Start == lastEnd && pairs[n-1].Replacement == "" {
				pairs[n-1].Replacement = s.Text
				continue
			}
			pairs = append(pairs, EditPair{Replacement: s.Text})
			lastEnd = s.End
		}
	}
	return pairs
}

// Colorize renders annotated diff text as HTML. Deleted spans are red and
// inserted spans green. The text itself is HTML escaped, unmatched markers
// included.
func Colorize(diffText string) string {
	var b strings.Builder
	for _, s := range Spans(diffText) {
		switch s.Kind {
		case SpanDeleted:
			b.WriteString(`<span style="color:red">`)
		case SpanInserted:
			b.WriteString(`<span style="color:green">`)
		}
		b.WriteString(html.EscapeString(s.Text))
		if s.Kind != SpanEqual {
			b.WriteString("</span>")
		}
	}
	return b.String()
}

// DiffHalves returns the deleted-only and inserted-only text, each
// joined by single spaces.
func DiffHalves(diffText string) (deleted, inserted string) {
	var dels, ins []string
	for _, s := range Spans(diffText) {
		switch s.Kind {
		case SpanDeleted:
			dels = append(dels, s.Text)
		case SpanInserted:
			ins = append(ins, s.Text)
		}
	}
	return strings.Join(dels, " "), strings.Join(ins, " ")
}

// FormatEdits joins edit pairs for display, e.g. "teh -> the, adn -> and".
func FormatEdits(pairs []EditPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Original+" -> "+p.Replacement)
	}
	return strings.Join(parts, ", ")
}
