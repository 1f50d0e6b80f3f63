// Package catalog maps directive names to fresh goal and tree instances.
//
// Goals are single routine-backed behaviors; trees compose goals and
// percept conditions. Both are built per lookup, so every activation gets
// its own routine state. Trees can also be declared in YAML (see
// LoadTrees) with conditions written as expr-lang expressions over the
// percept.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/goal"
)

// ErrNotFound is returned for names the catalog does not know.
var ErrNotFound = errors.New("catalog: not found")

// Profile holds the values that differ between agent variants.
type Profile struct {
	FlowerTag      string  `yaml:"flower_tag" json:"flower_tag"`
	AstronautTag   string  `yaml:"astronaut_tag" json:"astronaut_tag"`
	CritterTag     string  `yaml:"critter_tag" json:"critter_tag"`
	BaseLocation   string  `yaml:"base_location" json:"base_location"`
	InventoryFull  int     `yaml:"inventory_full" json:"inventory_full"`
	TouchThreshold float64 `yaml:"touch_threshold" json:"touch_threshold"`
	// TimingScale multiplies every routine timing; zero keeps the defaults.
	TimingScale float64 `yaml:"timing_scale" json:"timing_scale"`
}

// DefaultProfile returns the values used by the stock simulator scenes.
func DefaultProfile() Profile {
	return Profile{
		FlowerTag:      "AlienFlower",
		AstronautTag:   "Astronaut",
		CritterTag:     "CritterMantaRay",
		BaseLocation:   "Base",
		InventoryFull:  2,
		TouchThreshold: 0.6,
	}
}

// WithDefaults fills zero fields from DefaultProfile.
func (p Profile) WithDefaults() Profile {
	d := DefaultProfile()
	if p.FlowerTag == "" {
		p.FlowerTag = d.FlowerTag
	}
	if p.AstronautTag == "" {
		p.AstronautTag = d.AstronautTag
	}
	if p.CritterTag == "" {
		p.CritterTag = d.CritterTag
	}
	if p.BaseLocation == "" {
		p.BaseLocation = d.BaseLocation
	}
	if p.InventoryFull == 0 {
		p.InventoryFull = d.InventoryFull
	}
	if p.TouchThreshold == 0 {
		p.TouchThreshold = d.TouchThreshold
	}
	return p
}

// Timing returns the routine timings for the profile.
func (p Profile) Timing() goal.Timing {
	return goal.DefaultTiming().Scaled(p.TimingScale)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger handed to routine nodes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithContext sets the parent context of every routine node. Cancelling it
// cancels running routines without a verdict.
func WithContext(ctx context.Context) Option {
	return func(c *Catalog) { c.ctx = ctx }
}

// WithTrees adds tree definitions, typically from LoadTrees. A definition
// named like a built-in tree replaces it.
func WithTrees(defs map[string]NodeDef) Option {
	return func(c *Catalog) {
		maps.Copy(c.defs, defs)
	}
}

// Catalog builds goals and trees bound to one agent environment.
type Catalog struct {
	env     goal.Env
	profile Profile
	logger  *slog.Logger
	ctx     context.Context
	defs    map[string]NodeDef
}

// New returns a catalog for env.
func New(env goal.Env, profile Profile, opts ...Option) *Catalog {
	c := &Catalog{
		env:     env,
		profile: profile.WithDefaults(),
		logger:  slog.Default(),
		defs:    make(map[string]NodeDef),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns the effective profile.
func (c *Catalog) Profile() Profile { return c.profile }

// Goal returns a fresh instance of the named goal.
func (c *Catalog) Goal(name string) (behavior.Behavior, error) {
	mk, ok := goals[name]
	if !ok {
		return nil, fmt.Errorf("%w: goal %q", ErrNotFound, name)
	}
	return mk(c, name), nil
}

// Tree returns a fresh instance of the named tree.
func (c *Catalog) Tree(name string) (*behavior.Tree, error) {
	if def, ok := c.defs[name]; ok {
		root, err := c.build(def)
		if err != nil {
			return nil, fmt.Errorf("catalog: tree %q: %w", name, err)
		}
		return behavior.NewTree(name, root), nil
	}
	mk, ok := trees[name]
	if !ok {
		return nil, fmt.Errorf("%w: tree %q", ErrNotFound, name)
	}
	root, err := mk(c)
	if err != nil {
		return nil, fmt.Errorf("catalog: tree %q: %w", name, err)
	}
	return behavior.NewTree(name, root), nil
}

// Goals lists the goal names in sorted order.
func (c *Catalog) Goals() []string {
	return slices.Sorted(maps.Keys(goals))
}

// Trees lists the tree names, built-in and defined, in sorted order.
func (c *Catalog) Trees() []string {
	names := slices.Collect(maps.Keys(trees))
	for name := range c.defs {
		if _, ok := trees[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (c *Catalog) routine(name string, r goal.Routine, opts ...behavior.RoutineOption) *behavior.Node {
	base := []behavior.RoutineOption{behavior.WithLogger(c.logger)}
	if c.ctx != nil {
		base = append(base, behavior.WithContext(c.ctx))
	}
	opts = append(base, opts...)
	return behavior.NewRoutine(name, func(ctx context.Context) (bool, error) {
		return r.Run(ctx, c.env)
	}, opts...)
}

func (c *Catalog) condition(name string, pred goal.Predicate) *behavior.Node {
	return behavior.NewCondition(name, func() bool { return pred(c.env.Percept()) })
}
