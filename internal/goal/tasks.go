package goal

import (
	"context"
)

// CollectItem asks the simulator to pick up an item with Tag.
type CollectItem struct {
	Tag string
}

func (c CollectItem) Run(ctx context.Context, env Env) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	env.Send(Collect(c.Tag))
	return true, nil
}

// NavigateTo hands navigation to the simulator and waits for the en-route
// flag to clear. If the simulator never reports the agent en route, the
// routine succeeds only when the agent is already at Location.
type NavigateTo struct {
	Location string
}

func (n NavigateTo) Run(ctx context.Context, env Env) (bool, error) {
	t := env.Timing()
	env.Send(WalkTo(n.Location))
	if err := sleep(ctx, t.RouteStart); err != nil {
		env.Send(StopMoving)
		return false, err
	}
	st := env.Percept().State
	if !st.OnRoute {
		return st.CurrentLocation == n.Location, nil
	}
	for st.OnRoute {
		if err := sleep(ctx, t.WalkPoll); err != nil {
			env.Send(StopMoving)
			return false, err
		}
		st = env.Percept().State
	}
	return true, nil
}

// LeaveItems drops N of Item into the nearby container. N <= 0 leaves
// everything carried. It fails when nothing is carried.
type LeaveItems struct {
	Item string
	N    int
}

func (l LeaveItems) Run(ctx context.Context, env Env) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n := l.N
	if n <= 0 {
		n = env.Percept().State.Count(l.Item)
	}
	if n <= 0 {
		return false, nil
	}
	env.Send(Leave(l.Item, n))
	return true, nil
}

// HoldWhileFrozen stops all motion and waits for the frozen flag to clear.
type HoldWhileFrozen struct{}

func (HoldWhileFrozen) Run(ctx context.Context, env Env) (bool, error) {
	env.Send(Stop)
	env.Send(StopTurning)
	poll := env.Timing().Poll
	for env.Percept().State.Frozen {
		if err := sleep(ctx, poll); err != nil {
			return false, err
		}
	}
	return true, nil
}
