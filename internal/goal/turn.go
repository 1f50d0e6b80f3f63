package goal

import (
	"context"
)

const defaultTurnTolerance = 5

// Turn rotates by a random angle in [MinAngle, MaxAngle] degrees, in a random
// direction unless FixedDirection is set. It waits the settle time once the
// turn is complete.
type Turn struct {
	MinAngle, MaxAngle int
	Direction          Direction
	FixedDirection     bool
	// Tolerance is subtracted from the target angle; zero means 5 degrees.
	Tolerance float64
}

func (t Turn) Run(ctx context.Context, env Env) (bool, error) {
	lo, hi := t.MinAngle, t.MaxAngle
	if lo == 0 && hi == 0 {
		lo, hi = 10, 360
	}
	r := env.Rand()
	angle := float64(between(r, lo, hi))
	dir := t.Direction
	if !t.FixedDirection {
		dir = Direction(r.IntN(2))
	}
	tol := t.Tolerance
	if tol == 0 {
		tol = defaultTurnTolerance
	}
	if _, err := rotate(ctx, env, dir, angle, tol); err != nil {
		return false, err
	}
	if err := sleep(ctx, env.Timing().TurnSettle); err != nil {
		return false, err
	}
	return true, nil
}

// DirectedTurn rotates by a single degree in a fixed direction.
type DirectedTurn struct {
	Direction Direction
}

func (t DirectedTurn) Run(ctx context.Context, env Env) (bool, error) {
	if _, err := rotate(ctx, env, t.Direction, 1, 0); err != nil {
		return false, err
	}
	return true, nil
}

// rotate turns in dir until the accumulated yaw change reaches angle-tol,
// then stops turning. StopTurning is sent on every exit path. It returns the
// accumulated angle.
func rotate(ctx context.Context, env Env, dir Direction, angle, tol float64) (float64, error) {
	poll := env.Timing().TurnPoll
	prev := env.Percept().State.Yaw()
	env.Send(dir.Command())
	var turned float64
	for turned < angle-tol {
		if err := sleep(ctx, poll); err != nil {
			env.Send(StopTurning)
			return turned, err
		}
		cur := env.Percept().State.Yaw()
		turned += yawDelta(prev, cur, dir)
		prev = cur
	}
	env.Send(StopTurning)
	return turned, nil
}

// yawDelta returns how far the heading moved from prev to cur in the
// direction of dir, correcting for the 0/360 wrap.
func yawDelta(prev, cur float64, dir Direction) float64 {
	d := cur - prev
	if dir == Left {
		d = -d
	}
	if d < -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}
