package catalog

import (
	"github.com/joeycumines/aagent/internal/behavior"
	"github.com/joeycumines/aagent/internal/goal"
)

type goalFunc func(c *Catalog, name string) behavior.Behavior

// routineGoal builds a goal from a routine that depends on the profile.
func routineGoal(mk func(p Profile) goal.Routine, opts ...behavior.RoutineOption) goalFunc {
	return func(c *Catalog, name string) behavior.Behavior {
		return c.routine(name, mk(c.profile), opts...)
	}
}

func fixed(r goal.Routine) func(Profile) goal.Routine {
	return func(Profile) goal.Routine { return r }
}

var goals = map[string]goalFunc{
	"DoNothing":   routineGoal(fixed(goal.Idle{})),
	"ForwardStop": routineGoal(fixed(goal.MoveUntilObstacle{})),
	"ForwardDist": routineGoal(fixed(goal.MoveDistance{Distance: -1, Min: 1, Max: 5})),
	"Turn":        routineGoal(fixed(goal.Turn{})),
	"RandomRoam":  routineGoal(fixed(goal.RandomRoam{})),
	"Avoid":       routineGoal(fixed(goal.AvoidObstacles{}), behavior.WithNeverFail()),
	"Retreat":     routineGoal(fixed(goal.Retreat{})),
	"FaceFlower": routineGoal(func(p Profile) goal.Routine {
		return goal.FaceEntity{Tag: p.FlowerTag}
	}),
	"WalkToFlower": routineGoal(func(p Profile) goal.Routine {
		return goal.WalkToEntityByInventory{Tag: p.FlowerTag}
	}),
	"CollectFlower": routineGoal(func(p Profile) goal.Routine {
		return goal.CollectItem{Tag: p.FlowerTag}
	}),
	"WalkToBase": routineGoal(func(p Profile) goal.Routine {
		return goal.NavigateTo{Location: p.BaseLocation}
	}),
	"LeaveFlowers": routineGoal(func(p Profile) goal.Routine {
		return goal.LeaveItems{Item: p.FlowerTag}
	}),
	"FaceAstronaut": routineGoal(func(p Profile) goal.Routine {
		return goal.FaceEntity{Tag: p.AstronautTag}
	}),
	"WalkToAstronaut": routineGoal(func(p Profile) goal.Routine {
		return goal.WalkToEntityByProximity{Tag: p.AstronautTag, Threshold: p.TouchThreshold}
	}),
	"EvadeCritter": routineGoal(func(p Profile) goal.Routine {
		return goal.EvadeThreat{Tag: p.CritterTag}
	}),
	"HoldWhileFrozen": routineGoal(fixed(goal.HoldWhileFrozen{})),
	"ScanFlower": routineGoal(func(p Profile) goal.Routine {
		return goal.Scan{Tag: p.FlowerTag}
	}),
}
