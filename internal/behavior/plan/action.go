package plan

import (
	"fmt"
	"slices"
	"sync"

	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"
)

// ActionRegistry stores named actions.
type ActionRegistry struct {
	mu      sync.RWMutex
	actions map[string]pabtpkg.IAction
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]pabtpkg.IAction)}
}

func (r *ActionRegistry) Register(name string, action pabtpkg.IAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = action
}

// Get returns the named action, or nil.
func (r *ActionRegistry) Get(name string) pabtpkg.IAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[name]
}

// All returns every action sorted by name, so planning is deterministic.
func (r *ActionRegistry) All() []pabtpkg.IAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]pabtpkg.IAction, 0, len(names))
	for _, name := range names {
		out = append(out, r.actions[name])
	}
	return out
}

// Action is a named planner action. Each IConditions group is an AND; the
// groups are alternatives.
type Action struct {
	Name       string
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
	node       bt.Node
}

var _ pabtpkg.IAction = (*Action)(nil)

// NewAction returns an action. node must not be nil.
func NewAction(name string, conditions []pabtpkg.IConditions, effects pabtpkg.Effects, node bt.Node) *Action {
	if node == nil {
		panic(fmt.Sprintf("plan.NewAction: nil node (action=%s)", name))
	}
	return &Action{Name: name, conditions: conditions, effects: effects, node: node}
}

func (a *Action) Conditions() []pabtpkg.IConditions { return a.conditions }
func (a *Action) Effects() pabtpkg.Effects          { return a.effects }
func (a *Action) Node() bt.Node                     { return a.node }

// ActionBuilder assembles an Action.
type ActionBuilder struct {
	name       string
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
	node       bt.Node
}

func NewActionBuilder(name string) *ActionBuilder {
	return &ActionBuilder{name: name}
}

// When adds a precondition group; every condition in it must hold.
func (b *ActionBuilder) When(conds ...pabtpkg.Condition) *ActionBuilder {
	b.conditions = append(b.conditions, conds)
	return b
}

// Sets declares that the action leaves key holding value.
func (b *ActionBuilder) Sets(key, value any) *ActionBuilder {
	b.effects = append(b.effects, NewEffect(key, value))
	return b
}

func (b *ActionBuilder) Do(node bt.Node) *ActionBuilder {
	b.node = node
	return b
}

func (b *ActionBuilder) Build() *Action {
	return NewAction(b.name, b.conditions, b.effects, b.node)
}

// Cond is a condition over a single key.
type Cond struct {
	key   any
	match func(value any) bool
}

var _ pabtpkg.Condition = (*Cond)(nil)

func NewCond(key any, match func(value any) bool) *Cond {
	return &Cond{key: key, match: match}
}

func (c *Cond) Key() any { return c.key }

func (c *Cond) Match(value any) bool {
	return c.match != nil && c.match(value)
}

// Equals holds when the value under key equals expected.
func Equals(key, expected any) *Cond {
	return NewCond(key, func(v any) bool { return v == expected })
}

// Effect is a key/value pair an action establishes.
type Effect struct {
	key, value any
}

var _ pabtpkg.Effect = (*Effect)(nil)

func NewEffect(key, value any) *Effect { return &Effect{key: key, value: value} }

func (e *Effect) Key() any   { return e.key }
func (e *Effect) Value() any { return e.value }
