package gtcheck

import (
	"fmt"
	"slices"
)

// Action is a reviewer decision on the presented file.
type Action int

// Reviewer actions.
const (
	ActionCommit Action = iota
	ActionStash
	ActionAdd
	ActionSkip
	ActionUndo
)

var actionNames = [...]string{"commit", "stash", "add", "skip", "undo"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, error) {
	i := slices.Index(actionNames[:], s)
	if i < 0 {
		return 0, fmt.Errorf("unknown action %q (want one of %v)", s, actionNames)
	}
	return Action(i), nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionNames) {
		return nil, fmt.Errorf("unknown action %d", int(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Decision is a reviewer action with its inputs.
type Decision struct {
	Action  Action
	Text    string // edited text, used by commit and add
	Message string // commit message, used by commit
}
