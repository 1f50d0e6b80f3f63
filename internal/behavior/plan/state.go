// Package plan builds behaviors with go-pabt, the planning-and-acting
// behavior tree planner. Facts live on a behavior.Blackboard; actions pair
// preconditions and effects with a bt.Node, and the planner grows the tree
// backwards from a goal condition as conditions fail at run time.
package plan

import (
	"fmt"
	"log/slog"

	"github.com/joeycumines/aagent/internal/behavior"
	pabtpkg "github.com/joeycumines/go-pabt"
)

var _ pabtpkg.IState = (*State)(nil)

// State implements pabtpkg.IState over a blackboard. Keys are normalized to
// strings; values are read as stored.
type State struct {
	*behavior.Blackboard
	actions *ActionRegistry
	logger  *slog.Logger
}

// NewState returns a state reading facts from bb.
func NewState(bb *behavior.Blackboard) *State {
	return &State{
		Blackboard: bb,
		actions:    NewActionRegistry(),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger used for planner debug output.
func (s *State) SetLogger(l *slog.Logger) { s.logger = l }

// Variable returns the fact stored under key, or nil when there is none.
func (s *State) Variable(key any) (any, error) {
	k, err := keyString(key)
	if err != nil {
		return nil, err
	}
	return s.Get(k), nil
}

func keyString(key any) (string, error) {
	switch k := key.(type) {
	case nil:
		return "", fmt.Errorf("plan: variable key cannot be nil")
	case string:
		return k, nil
	case fmt.Stringer:
		return k.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", k), nil
	default:
		return "", fmt.Errorf("plan: unsupported key type %T", key)
	}
}

// Actions returns the registered actions having an effect that satisfies
// failed, in name order. A nil condition returns every action.
func (s *State) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	all := s.actions.All()
	if failed == nil {
		return all, nil
	}
	var out []pabtpkg.IAction
	for _, a := range all {
		if satisfies(a, failed) {
			out = append(out, a)
		}
	}
	s.logger.Debug("planner expanding", "key", failed.Key(), "candidates", len(out))
	return out, nil
}

func satisfies(a pabtpkg.IAction, failed pabtpkg.Condition) bool {
	for _, e := range a.Effects() {
		if e != nil && e.Key() == failed.Key() && failed.Match(e.Value()) {
			return true
		}
	}
	return false
}

// RegisterAction adds or replaces a named action.
func (s *State) RegisterAction(name string, action pabtpkg.IAction) {
	s.actions.Register(name, action)
}
