package gtcheck

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPagePattern splits a file name into prefix, page number and suffix.
const DefaultPagePattern = `^(.*?)(\d+)(\D*)$`

// PagePattern is a compiled page-number pattern. Group one is the prefix,
// group two the digit run and group three the suffix.
type PagePattern struct {
	re *regexp.Regexp
}

// ParsePagePattern compiles expr and checks that it has the three groups.
func ParsePagePattern(expr string) (*PagePattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &SettingsError{Field: "page_pattern", Reason: err.Error()}
	}
	if re.NumSubexp() < 3 {
		return nil, &SettingsError{
			Field:  "page_pattern",
			Reason: fmt.Sprintf("need prefix, number and suffix groups, got %d", re.NumSubexp()),
		}
	}
	return &PagePattern{re: re}, nil
}

// String returns the source expression.
func (p *PagePattern) String() string {
	return p.re.String()
}

// PageName is a file name split around its page number.
type PageName struct {
	Prefix string
	Number int
	Width  int // digit count of the number as written
	Suffix string
}

// Parse splits name. It reports false when the pattern does not match or
// the digit group is not a number.
func (p *PagePattern) Parse(name string) (PageName, bool) {
	m := p.re.FindStringSubmatchIndex(name)
	if m == nil || m[4] < 0 || m[2] < 0 || m[6] < 0 {
		return PageName{}, false
	}
	digits := name[m[4]:m[5]]
	n, err := strconv.Atoi(digits)
	if err != nil {
		return PageName{}, false
	}
	// Everything before the end of group one is prefix and everything
	// after the start of group three is suffix, even for unanchored patterns.
	return PageName{
		Prefix: name[:m[3]],
		Number: n,
		Width:  len(digits),
		Suffix: name[m[6]:],
	}, true
}

// Sibling returns the name delta pages away, zero padded to the same width.
func (n PageName) Sibling(delta int) string {
	return fmt.Sprintf("%s%0*d%s", n.Prefix, n.Width, n.Number+delta, n.Suffix)
}

// Neighbors holds the names of the previous and next page. An empty field
// means the page does not exist.
type Neighbors struct {
	Prev string
	Next string
}

// LocateNeighbors finds the pages before and after name in listing.
func LocateNeighbors(name string, listing []string, pattern *PagePattern) Neighbors {
	page, ok := pattern.Parse(name)
	if !ok {
		return Neighbors{}
	}
	present := make(map[string]struct{}, len(listing))
	for _, entry := range listing {
		present[entry] = struct{}{}
	}
	var n Neighbors
	if prev := page.Sibling(-1); hasEntry(present, prev) {
		n.Prev = prev
	}
	if next := page.Sibling(1); hasEntry(present, next) {
		n.Next = next
	}
	return n
}

func hasEntry(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}
