package session

import (
	"strings"
)

// Action is an operator choice while reviewing a candidate message.
type Action int

const (
	Accept Action = iota
	Edit
	Regenerate
	Quit
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Edit:
		return "edit"
	case Regenerate:
		return "regenerate"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// ParseAction maps operator input to an Action using its first character,
// case-insensitively. The second result is false for anything else.
func ParseAction(input string) (Action, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}

	switch strings.ToLower(input[:1]) {
	case "a", "y":
		return Accept, true
	case "e":
		return Edit, true
	case "r":
		return Regenerate, true
	case "q", "n":
		return Quit, true
	default:
		return 0, false
	}
}
