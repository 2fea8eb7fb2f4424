package lipgloss

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/gtcheck"
	"github.com/muesli/termenv"
)

// Renderer styles word-diff text for one output stream.
type Renderer struct {
	r        *lipgloss.Renderer
	deleted  lipgloss.Style
	inserted lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
}

// NewRenderer creates a Renderer writing to w. A nil theme picks the dark or
// light theme from the terminal background. With noColor set, diff text is
// returned with its markers and no escape sequences.
func NewRenderer(w io.Writer, theme *Theme, noColor bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	if theme == nil {
		theme = LightTheme()
		if r.HasDarkBackground() {
			theme = DarkTheme()
		}
	}
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return &Renderer{
		r:        r,
		deleted:  colored(base, theme.Deleted).Strikethrough(true),
		inserted: colored(base, theme.Inserted).Bold(true),
		title:    colored(base, theme.Title).Bold(true),
		muted:    colored(base, theme.Muted),
	}
}

func colored(s lipgloss.Style, c ColorPair) lipgloss.Style {
	if c.Foreground != "" {
		s = s.Foreground(lipgloss.Color(c.Foreground))
	}
	if c.Background != "" {
		s = s.Background(lipgloss.Color(c.Background))
	}
	return s
}

// SetColorProfile overrides the detected terminal color profile.
func (r *Renderer) SetColorProfile(p termenv.Profile) {
	r.r.SetColorProfile(p)
}

// Plain reports whether output carries no styling.
func (r *Renderer) Plain() bool {
	return r.r.ColorProfile() == termenv.Ascii
}

// Diff renders word-diff annotated text with deletions struck through and
// insertions highlighted.
func (r *Renderer) Diff(diffText string) string {
	if r.Plain() {
		return diffText
	}
	var b strings.Builder
	for _, span := range gtcheck.Spans(diffText) {
		switch span.Kind {
		case gtcheck.SpanDeleted:
			b.WriteString(styleLines(r.deleted, span.Text))
		case gtcheck.SpanInserted:
			b.WriteString(styleLines(r.inserted, span.Text))
		default:
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// Title renders a heading line.
func (r *Renderer) Title(s string) string {
	return r.title.Render(s)
}

// Muted renders secondary information.
func (r *Renderer) Muted(s string) string {
	return r.muted.Render(s)
}

// styleLines styles each line separately so multi-line spans are not padded
// to a block.
func styleLines(s lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = s.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
