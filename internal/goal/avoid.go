package goal

import (
	"context"
	"time"

	"github.com/joeycumines/aagent/internal/sensor"
)

// AvoidObstacles walks forward and turns away from anything closer than
// MinDistance. It never reaches a verdict on its own; it runs until
// cancelled.
type AvoidObstacles struct {
	MinDistance float64 // zero means 2
	TurnAngle   float64 // zero means 30
	Tolerance   float64 // zero means 2
}

func (a AvoidObstacles) withDefaults() AvoidObstacles {
	if a.MinDistance == 0 {
		a.MinDistance = 2
	}
	if a.TurnAngle == 0 {
		a.TurnAngle = 30
	}
	if a.Tolerance == 0 {
		a.Tolerance = 2
	}
	return a
}

func (a AvoidObstacles) Run(ctx context.Context, env Env) (bool, error) {
	a = a.withDefaults()
	t := env.Timing()
	r := env.Rand()

	fail := func(err error) (bool, error) {
		env.Send(StopTurning)
		env.Send(Stop)
		return false, err
	}

	env.Send(MoveForward)
	moving := time.Now()
	for {
		if err := sleep(ctx, t.WalkPoll); err != nil {
			return fail(err)
		}

		dir, blocked := obstacle(env.Percept().Sensor, a.MinDistance, r)
		if blocked {
			env.Send(StopMoving)
			for blocked {
				if _, err := rotate(ctx, env, dir, a.TurnAngle, a.Tolerance); err != nil {
					return fail(err)
				}
				dir, blocked = obstacle(env.Percept().Sensor, a.MinDistance, r)
			}
			env.Send(MoveForward)
			moving = time.Now()
			continue
		}

		if time.Since(moving) >= t.AvoidTimeout {
			env.Send(StopMoving)
			angle := float64(between(r, 1, 359))
			if _, err := rotate(ctx, env, Direction(r.IntN(2)), angle, a.Tolerance); err != nil {
				return fail(err)
			}
			env.Send(MoveForward)
			moving = time.Now()
		}
	}
}

// obstacle reports whether any ray is nearer than minDist and which way to
// turn to get clear: away from the side with more near hits, or a random
// side when only the center (or both sides equally) is blocked.
func obstacle(s sensor.Snapshot, minDist float64, r Rand) (Direction, bool) {
	c := s.Center()
	var left, right, center int
	for i, ray := range s.Rays() {
		if !ray.Hit || ray.Distance < 0 || ray.Distance >= minDist {
			continue
		}
		switch {
		case i < c:
			left++
		case i > c:
			right++
		default:
			center++
		}
	}
	switch {
	case left == 0 && right == 0 && center == 0:
		return 0, false
	case left > right:
		return Right, true
	case right > left:
		return Left, true
	default:
		return Direction(r.IntN(2)), true
	}
}

// EvadeThreat turns away from the side a tagged threat is seen on. Without
// a sighting it fails immediately and sends nothing.
type EvadeThreat struct {
	Tag string
}

func (e EvadeThreat) Run(ctx context.Context, env Env) (bool, error) {
	s := env.Percept().Sensor
	i, ok := s.Find(e.Tag)
	if !ok {
		return false, nil
	}
	dir := Left
	if i < s.Center() {
		dir = Right
	}
	env.Send(TimedTurn(dir, 0.5))
	err := sleep(ctx, env.Timing().RetreatTurn)
	env.Send(StopTurning)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Retreat is a fixed open-loop escape: stop, turn right, then walk away.
type Retreat struct{}

func (Retreat) Run(ctx context.Context, env Env) (bool, error) {
	t := env.Timing()
	env.Send(StopMoving)
	env.Send(TurnRight)
	err := sleep(ctx, t.RetreatTurn)
	env.Send(StopTurning)
	if err != nil {
		return false, err
	}
	env.Send(MoveForward)
	err = sleep(ctx, t.RetreatMove)
	env.Send(StopMoving)
	if err != nil {
		return false, err
	}
	return true, nil
}
