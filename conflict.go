package gtcheck

import "strings"

// Conflict markers written by git into conflicted files.
const (
	conflictStart = "<<<<<<< "
	conflictBase  = "||||||| "
	conflictSep   = "======="
	conflictEnd   = ">>>>>>> "
)

// ParseConflict splits text containing git conflict markers into both
// sides. Text outside conflict blocks belongs to both sides. It reports
// false when text has no complete conflict block.
func ParseConflict(text string) (*Conflict, bool) {
	const (
		outside = iota
		inOurs
		inBase
		inTheirs
	)
	var ours, theirs strings.Builder
	state := outside
	blocks := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		bare := strings.TrimRight(line, "\r\n")
		switch {
		case state == outside && strings.HasPrefix(bare, conflictStart):
			state = inOurs
		case state == inOurs && strings.HasPrefix(bare, conflictBase):
			state = inBase
		case (state == inOurs || state == inBase) && bare == conflictSep:
			state = inTheirs
		case state == inBase:
			// diff3 base lines belong to neither side
		case state == inTheirs && strings.HasPrefix(bare, conflictEnd):
			state = outside
			blocks++
		case state == inOurs:
			ours.WriteString(line)
		case state == inTheirs:
			theirs.WriteString(line)
		default:
			ours.WriteString(line)
			theirs.WriteString(line)
		}
	}
	if blocks == 0 || state != outside {
		return nil, false
	}
	return &Conflict{Ours: ours.String(), Theirs: theirs.String()}, true
}
