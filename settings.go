package gtcheck

import (
	"net/mail"
	"regexp"
)

// DefaultFont is the display font for ground truth text.
const DefaultFont = "RobotoMonoGTC"

// Settings configure how one repository is reviewed.
type Settings struct {
	PagePattern   string   `json:"regexnum" yaml:"page_pattern"`
	SkipCC        bool     `json:"skipcc" yaml:"skipcc"`
	AddCC         bool     `json:"addcc" yaml:"addcc"`
	Filters       Filters  `json:"filters" yaml:"filters"`
	WordDiffRegex string   `json:"word_diff_regex,omitempty" yaml:"word_diff_regex,omitempty"`
	Font          string   `json:"font" yaml:"font"`
	VKeyLang      string   `json:"vkeylang" yaml:"vkeylang"`
	CustomKeys    []string `json:"custom_keys,omitempty" yaml:"custom_keys,omitempty"`
	Username      string   `json:"username" yaml:"username"`
	Email         string   `json:"email" yaml:"email"`
}

// DefaultSettings returns settings for a newly registered repository.
func DefaultSettings() Settings {
	return Settings{
		PagePattern: DefaultPagePattern,
		SkipCC:      true,
		Font:        DefaultFont,
		VKeyLang:    "default",
	}
}

// Validate compiles every pattern so bad input is rejected when the
// settings are saved rather than during review.
func (s Settings) Validate() error {
	if _, err := ParsePagePattern(s.PagePattern); err != nil {
		return err
	}
	if _, err := s.Filters.Compile(); err != nil {
		return err
	}
	if s.WordDiffRegex != "" {
		if _, err := regexp.CompilePOSIX(s.WordDiffRegex); err != nil {
			return &SettingsError{Field: "word_diff_regex", Reason: err.Error()}
		}
	}
	if s.AddCC && !s.SkipCC {
		return &SettingsError{Field: "addcc", Reason: "requires skipcc"}
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return &SettingsError{Field: "email", Reason: err.Error()}
		}
	}
	return nil
}

// Filters restrict which changes are presented. Empty fields match everything.
type Filters struct {
	All  string `json:"all" yaml:"all"`   // matched against original or modified text
	From string `json:"from" yaml:"from"` // matched against deleted text
	To   string `json:"to" yaml:"to"`     // matched against inserted text
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.All != "" || f.From != "" || f.To != ""
}

// FilterSet is a compiled Filters.
type FilterSet struct {
	all  *regexp.Regexp
	from *regexp.Regexp
	to   *regexp.Regexp
}

// Compile compiles the filter expressions.
func (f Filters) Compile() (*FilterSet, error) {
	var fs FilterSet
	for _, c := range []struct {
		field string
		expr  string
		dst   **regexp.Regexp
	}{
		{"filter_all", f.All, &fs.all},
		{"filter_from", f.From, &fs.from},
		{"filter_to", f.To, &fs.to},
	} {
		if c.expr == "" {
			continue
		}
		re, err := regexp.Compile(c.expr)
		if err != nil {
			return nil, &SettingsError{Field: c.field, Reason: err.Error()}
		}
		*c.dst = re
	}
	return &fs, nil
}

// NeedsDiff reports whether Match inspects diff text.
func (fs *FilterSet) NeedsDiff() bool {
	return fs.from != nil || fs.to != nil
}

// Match reports whether c passes every configured filter.
func (fs *FilterSet) Match(c *Change, diffText string) bool {
	if fs.all != nil && !fs.all.MatchString(c.Original) && !fs.all.MatchString(c.Modified) {
		return false
	}
	if !fs.NeedsDiff() {
		return true
	}
	deleted, inserted := DiffHalves(diffText)
	if fs.from != nil && !fs.from.MatchString(deleted) {
		return false
	}
	if fs.to != nil && !fs.to.MatchString(inserted) {
		return false
	}
	return true
}
