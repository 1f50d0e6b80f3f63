package goal

import (
	"context"
)

// FaceEntity turns toward the nearest sighting of Tag one DirectedTurn at a
// time until it sits on the center ray. It fails as soon as nothing with the
// tag is visible.
type FaceEntity struct {
	Tag string
}

func (f FaceEntity) Run(ctx context.Context, env Env) (bool, error) {
	settle := env.Timing().FaceSettle
	for {
		s := env.Percept().Sensor
		i, ok := s.Find(f.Tag)
		if !ok {
			return false, nil
		}
		if i == s.Center() {
			return true, nil
		}
		step := DirectedTurn{Direction: Right}
		if i < s.Center() {
			step.Direction = Left
		}
		if _, err := step.Run(ctx, env); err != nil {
			return false, err
		}
		if err := sleep(ctx, settle); err != nil {
			return false, err
		}
	}
}

// stuckPolls is how many consecutive polls without movement abandon a walk.
const stuckPolls = 3

// WalkToEntityByInventory walks forward until the carried count of Tag
// increases, i.e. the simulator picked the entity up on contact.
type WalkToEntityByInventory struct {
	Tag string
}

func (w WalkToEntityByInventory) Run(ctx context.Context, env Env) (bool, error) {
	poll := env.Timing().WalkPoll
	p := env.Percept()
	start := p.State.Count(w.Tag)
	prev := p.State.Position
	env.Send(MoveForward)
	still := 0
	for {
		if err := sleep(ctx, poll); err != nil {
			env.Send(StopMoving)
			return false, err
		}
		p = env.Percept()
		if p.State.Count(w.Tag) > start {
			env.Send(StopMoving)
			return true, nil
		}
		if prev.PlanarDistance(p.State.Position) < stuckEpsilon {
			still++
			if still >= stuckPolls {
				env.Send(StopMoving)
				return false, nil
			}
		} else {
			still = 0
		}
		prev = p.State.Position
	}
}

// WalkToEntityByProximity walks forward until the entity tagged Tag is
// within Threshold. It also accepts arriving when the distance stops
// shrinking very close to the entity, or when the entity drops out of view
// after having been seen very close.
type WalkToEntityByProximity struct {
	Tag       string
	Threshold float64
}

func (w WalkToEntityByProximity) Run(ctx context.Context, env Env) (bool, error) {
	d, ok := w.distance(env)
	if !ok {
		return false, nil
	}
	if d <= w.Threshold {
		return true, nil
	}
	closest := d
	poll := env.Timing().WalkPoll
	env.Send(MoveForward)
	for {
		if err := sleep(ctx, poll); err != nil {
			env.Send(StopMoving)
			return false, err
		}
		d, ok = w.distance(env)
		switch {
		case !ok:
			env.Send(StopMoving)
			return closest < 0.5, nil
		case d <= w.Threshold, closest < 0.3 && d >= closest-0.2:
			env.Send(StopMoving)
			return true, nil
		}
		closest = min(closest, d)
	}
}

func (w WalkToEntityByProximity) distance(env Env) (float64, bool) {
	s := env.Percept().Sensor
	i, ok := s.Find(w.Tag)
	if !ok {
		return 0, false
	}
	return s.Ray(i).Distance, true
}

// Scan turns right until Tag comes into view, failing after a full
// revolution.
type Scan struct {
	Tag string
}

func (sc Scan) Run(ctx context.Context, env Env) (bool, error) {
	if env.Percept().Sensor.Sees(sc.Tag) {
		return true, nil
	}
	poll := env.Timing().TurnPoll
	prev := env.Percept().State.Yaw()
	env.Send(TurnRight)
	var turned float64
	for turned < 360 {
		if err := sleep(ctx, poll); err != nil {
			env.Send(StopTurning)
			return false, err
		}
		p := env.Percept()
		if p.Sensor.Sees(sc.Tag) {
			env.Send(StopTurning)
			return true, nil
		}
		cur := p.State.Yaw()
		turned += yawDelta(prev, cur, Right)
		prev = cur
	}
	env.Send(StopTurning)
	return false, nil
}
