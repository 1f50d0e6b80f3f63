package plan

import (
	"fmt"

	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/sensor"
	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"
)

// Fact keys maintained by the collect planner.
const (
	FactVisible   = "visible"
	FactCentered  = "centered"
	// FactCollected counts entities collected in the current activation.
	FactCollected = "collected"
	FactFrozen    = "frozen"
)

// CollectConfig describes a planned collection of one entity.
type CollectConfig struct {
	// Tag is the entity tag; it is also the inventory item name.
	Tag     string
	Percept func() sensor.Percept
	// Scan brings the entity into view, Face centers it, and Walk reaches
	// and picks it up.
	Scan, Face, Walk behavior.Behavior
}

// tracked records whether the planner ticked an action's behavior during
// the current plan tick.
type tracked struct {
	b      behavior.Behavior
	ticked bool
}

func (t *tracked) node() bt.Node {
	inner := behavior.Adapt(t.b)
	return bt.New(func([]bt.Node) (bt.Status, error) {
		t.ticked = true
		return inner.Tick()
	})
}

// NewCollect returns a leaf that plans and executes collecting one entity:
// the goal "collected >= 1" is reached through walk (needs "centered"), face
// (needs "visible") and scan (needs not "frozen"). Facts are refreshed from
// the percept before every tick, and every activation plans afresh.
//
// The planner does not invalidate an action it stops ticking, so after
// every tick any action behavior that is still running but was not ticked
// is stopped. Stopping the leaf stops all of them.
func NewCollect(name string, cfg CollectConfig) (*behavior.Node, error) {
	if cfg.Tag == "" || cfg.Percept == nil || cfg.Scan == nil || cfg.Face == nil || cfg.Walk == nil {
		return nil, fmt.Errorf("plan: incomplete collect config for %q", name)
	}
	collected, err := NewExprCondition(FactCollected, "value >= 1")
	if err != nil {
		return nil, err
	}

	bb := new(behavior.Blackboard)
	state := NewState(bb)
	scan := &tracked{b: cfg.Scan}
	face := &tracked{b: cfg.Face}
	walk := &tracked{b: cfg.Walk}
	all := []*tracked{scan, face, walk}

	state.RegisterAction("scan", NewActionBuilder("scan").
		When(Equals(FactFrozen, false)).
		Sets(FactVisible, true).
		Do(scan.node()).
		Build())
	state.RegisterAction("face", NewActionBuilder("face").
		When(Equals(FactVisible, true)).
		Sets(FactCentered, true).
		Do(face.node()).
		Build())
	state.RegisterAction("walk", NewActionBuilder("walk").
		When(Equals(FactCentered, true)).
		Sets(FactCollected, 1).
		Do(walk.node()).
		Build())

	var baseline int
	refresh := func() {
		p := cfg.Percept()
		i, seen := p.Sensor.Find(cfg.Tag)
		bb.Set(FactVisible, seen)
		bb.Set(FactCentered, seen && i == p.Sensor.Center())
		bb.Set(FactCollected, p.State.Count(cfg.Tag)-baseline)
		bb.Set(FactFrozen, p.State.Frozen)
	}

	build := func() bt.Node {
		baseline = cfg.Percept().State.Count(cfg.Tag)
		refresh()
		p, err := pabtpkg.INew(state, []pabtpkg.IConditions{{collected}})
		if err != nil {
			return bt.New(func([]bt.Node) (bt.Status, error) { return bt.Failure, err })
		}
		root := p.Node()
		return bt.New(func([]bt.Node) (bt.Status, error) {
			refresh()
			for _, t := range all {
				t.ticked = false
			}
			st, err := root.Tick()
			for _, t := range all {
				if !t.ticked && t.b.Status() == behavior.Running {
					t.b.Stop()
				}
			}
			return st, err
		})
	}
	return behavior.FromBT(name, build, cfg.Scan, cfg.Face, cfg.Walk), nil
}
