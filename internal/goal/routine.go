// Package goal implements the goal routines: small asynchronous state
// machines, each one atomic skill of the agent (turn, move, approach,
// collect). A routine reads the committed percept through its Env, emits
// commands, and runs until it reaches a verdict or its context is cancelled.
//
// A routine returns (true, nil) when the goal was achieved and (false, nil)
// when it was abandoned. When cancelled it sends its compensating stop
// commands first and then returns the context error, which callers must not
// treat as a verdict.
package goal

import (
	"context"

	"github.com/joeycumines/aagent/internal/sensor"
)

// Routine is one goal routine. Run is called once per activation; values
// are not reused across activations.
type Routine interface {
	Run(ctx context.Context, env Env) (bool, error)
}

// RoutineFunc adapts a function to Routine.
type RoutineFunc func(ctx context.Context, env Env) (bool, error)

func (f RoutineFunc) Run(ctx context.Context, env Env) (bool, error) { return f(ctx, env) }

// Predicate is a synchronous check over a percept.
type Predicate func(p sensor.Percept) bool

// SeesTag holds while any ray sees an object with the tag.
func SeesTag(tag string) Predicate {
	return func(p sensor.Percept) bool { return p.Sensor.Sees(tag) }
}

// Centered holds while the nearest ray seeing tag is the center ray.
func Centered(tag string) Predicate {
	return func(p sensor.Percept) bool {
		i, ok := p.Sensor.Find(tag)
		return ok && i == p.Sensor.Center()
	}
}

// Carrying holds while the agent carries at least n of the item.
func Carrying(item string, n int) Predicate {
	return func(p sensor.Percept) bool { return p.State.Count(item) >= n }
}

// IsFrozen holds while the simulator reports the agent frozen.
func IsFrozen(p sensor.Percept) bool { return p.State.Frozen }

// Not negates a predicate.
func Not(pred Predicate) Predicate {
	return func(p sensor.Percept) bool { return !pred(p) }
}
