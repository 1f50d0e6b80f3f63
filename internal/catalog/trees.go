package catalog

import (
	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/behavior/plan"
	"github.com/joeycumines/aagent/internal/goal"
)

type treeFunc func(c *Catalog) (behavior.Behavior, error)

var trees = map[string]treeFunc{
	"BTRoam":           btRoam,
	"BTCritter":        btCritter,
	"BTAstronautAlone": btAstronautAlone,
	"PlannedCollect":   plannedCollect,
}

// goal is a shorthand for instantiating a known goal under another name.
func (c *Catalog) goal(goalName, nodeName string) behavior.Behavior {
	return goals[goalName](c, nodeName)
}

func btRoam(c *Catalog) (behavior.Behavior, error) {
	return behavior.NewParallel("BTRoam", behavior.SuccessOnAll,
		c.routine("ForwardRandom", goal.MoveDistance{Distance: -1, Min: 1, Max: 5}),
		c.routine("TurnRandom", goal.Turn{}),
	), nil
}

func btCritter(c *Catalog) (behavior.Behavior, error) {
	p := c.profile
	return behavior.NewSelector("BTCritter",
		behavior.NewSequence("chase", true,
			c.condition("DetectAstronaut", goal.SeesTag(p.AstronautTag)),
			c.goal("FaceAstronaut", "FaceAstronaut"),
			c.goal("WalkToAstronaut", "WalkToAstronaut"),
			c.goal("Retreat", "Retreat"),
		),
		behavior.NewSequence("roaming", false,
			c.goal("Avoid", "Avoid"),
		),
	), nil
}

func btAstronautAlone(c *Catalog) (behavior.Behavior, error) {
	p := c.profile
	return behavior.NewSelector("BTAstronautAlone",
		behavior.NewSequence("frozen", true,
			c.condition("IsFrozen", goal.IsFrozen),
			c.goal("HoldWhileFrozen", "HoldWhileFrozen"),
		),
		behavior.NewSequence("evade", true,
			c.condition("DetectCritter", goal.SeesTag(p.CritterTag)),
			c.goal("EvadeCritter", "EvadeCritter"),
		),
		behavior.NewSequence("retreat", true,
			c.condition("InventoryFull", goal.Carrying(p.FlowerTag, p.InventoryFull)),
			c.goal("WalkToBase", "WalkToBase"),
			c.goal("LeaveFlowers", "LeaveFlowers"),
		),
		behavior.NewSequence("detection", true,
			c.condition("DetectFlower", goal.SeesTag(p.FlowerTag)),
			c.goal("FaceFlower", "FaceFlower"),
			c.goal("WalkToFlower", "WalkToFlower"),
		),
		behavior.NewSequence("roaming", false,
			c.goal("Avoid", "Avoid"),
		),
	), nil
}

func plannedCollect(c *Catalog) (behavior.Behavior, error) {
	tag := c.profile.FlowerTag
	return plan.NewCollect("PlannedCollect", plan.CollectConfig{
		Tag:     tag,
		Percept: c.env.Percept,
		Scan:    c.goal("ScanFlower", "Scan"),
		Face:    c.goal("FaceFlower", "Face"),
		Walk:    c.goal("WalkToFlower", "Walk"),
	})
}
