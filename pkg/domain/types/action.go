package types

import (
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Action represents a moderation action a moderator can select.
// The numeric values are the codes moderators type.
type Action int

const (
	ActionRecord    Action = 1 // store the incident against the user
	ActionFlag      Action = 2 // flag the post with a warning
	ActionDelete    Action = 3 // remove the post
	ActionBan       Action = 4 // ban the user
	ActionLegalHold Action = 5 // store the post for legal proceedings
)

// AllActions returns all valid actions in numeric order
func AllActions() []Action {
	return []Action{
		ActionRecord,
		ActionFlag,
		ActionDelete,
		ActionBan,
		ActionLegalHold,
	}
}

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	return a >= ActionRecord && a <= ActionLegalHold
}

// String returns a short label for the action
func (a Action) String() string {
	switch a {
	case ActionRecord:
		return "record"
	case ActionFlag:
		return "flag"
	case ActionDelete:
		return "delete"
	case ActionBan:
		return "ban"
	case ActionLegalHold:
		return "legal-hold"
	default:
		return "unknown"
	}
}

// ActionSet is a set of selected moderation actions
type ActionSet map[Action]bool

// NewActionSet builds an ActionSet from the given actions
func NewActionSet(actions ...Action) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}

// Has reports whether the action is in the set
func (s ActionSet) Has(a Action) bool {
	return s[a]
}

// Sorted returns the actions in ascending numeric order
func (s ActionSet) Sorted() []Action {
	actions := make([]Action, 0, len(s))
	for a := range s {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// ParseActionSet parses a comma-separated list of action numbers, e.g. "2,3".
func ParseActionSet(input string) (ActionSet, error) {
	set := make(ActionSet)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, goerr.Wrap(err, "action code is not a number", goerr.V("input", input))
		}
		a := Action(n)
		if !a.IsValid() {
			return nil, goerr.New("unknown action code", goerr.V("code", n))
		}
		set[a] = true
	}
	if len(set) == 0 {
		return nil, goerr.New("no action codes given", goerr.V("input", input))
	}
	return set, nil
}
