package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeycumines/aagent/internal/goal"
)

var (
	// ErrUnknownDirective is returned for directives with an unknown verb
	// or an invalid action.
	ErrUnknownDirective = errors.New("agent: unknown directive")
	// ErrUnknownGoal is returned when a goal directive names no known goal.
	ErrUnknownGoal = errors.New("agent: unknown goal")
	// ErrUnknownTree is returned when a bt directive names no known tree.
	ErrUnknownTree = errors.New("agent: unknown tree")
)

// DirectiveKind is the verb of a directive.
type DirectiveKind string

const (
	DirectiveAction DirectiveKind = "action"
	DirectiveGoal   DirectiveKind = "goal"
	DirectiveTree   DirectiveKind = "bt"
)

// Directive is an operator instruction, written "verb:data".
type Directive struct {
	Kind DirectiveKind
	Data string
}

func (d Directive) String() string { return string(d.Kind) + ":" + d.Data }

// ParseDirective parses "action:X", "goal:G" or "bt:T".
func ParseDirective(s string) (Directive, error) {
	verb, data, ok := strings.Cut(s, ":")
	if !ok || data == "" {
		return Directive{}, fmt.Errorf("%w: %q", ErrUnknownDirective, s)
	}
	d := Directive{Kind: DirectiveKind(verb), Data: data}
	switch d.Kind {
	case DirectiveAction:
		if !goal.Command(data).Valid() {
			return Directive{}, fmt.Errorf("%w: invalid action %q", ErrUnknownDirective, data)
		}
	case DirectiveGoal, DirectiveTree:
	default:
		return Directive{}, fmt.Errorf("%w: %q", ErrUnknownDirective, s)
	}
	return d, nil
}
