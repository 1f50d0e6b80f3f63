package goal

import (
	"context"
)

// stuckEpsilon is the smallest displacement between two polls that still
// counts as movement.
const stuckEpsilon = 1e-4

// Idle waits and succeeds.
type Idle struct{}

func (Idle) Run(ctx context.Context, env Env) (bool, error) {
	if err := sleep(ctx, env.Timing().IdleWait); err != nil {
		return false, err
	}
	return true, nil
}

// MoveDistance walks forward until the travelled distance reaches the
// target. A negative Distance picks a random integer target in [Min, Max].
type MoveDistance struct {
	Distance float64
	Min, Max int
}

// PickTarget returns the distance the routine will try to cover.
func (m MoveDistance) PickTarget(r Rand) float64 {
	if m.Distance >= 0 {
		return m.Distance
	}
	return float64(between(r, m.Min, m.Max))
}

func (m MoveDistance) Run(ctx context.Context, env Env) (bool, error) {
	target := m.PickTarget(env.Rand())
	poll := env.Timing().Poll
	prev := env.Percept().State.Position
	env.Send(MoveForward)
	var travelled float64
	for {
		if err := sleep(ctx, poll); err != nil {
			env.Send(StopMoving)
			return false, err
		}
		pos := env.Percept().State.Position
		step := prev.PlanarDistance(pos)
		travelled += step
		prev = pos
		if travelled >= target {
			env.Send(StopMoving)
			return true, nil
		}
		if step < stuckEpsilon {
			env.Send(StopMoving)
			return false, nil
		}
	}
}

// MoveUntilObstacle walks forward until any ray reports a hit.
type MoveUntilObstacle struct{}

func (MoveUntilObstacle) Run(ctx context.Context, env Env) (bool, error) {
	poll := env.Timing().Poll
	env.Send(MoveForward)
	for !env.Percept().Sensor.AnyHit() {
		if err := sleep(ctx, poll); err != nil {
			env.Send(Stop)
			return false, err
		}
	}
	env.Send(Stop)
	return true, nil
}

type roamState int

const (
	roamForward roamState = iota
	roamBackward
	roamTurn
	roamStop
)

func pickRoamState(r Rand) roamState {
	switch f := r.Float64(); {
	case f < 0.4:
		return roamForward
	case f < 0.6:
		return roamBackward
	case f < 0.9:
		return roamTurn
	default:
		return roamStop
	}
}

// RandomRoam wanders forever, re-rolling between moving forward, moving
// backward, turning and standing still. Moves last MoveMin..MoveMax, stops
// StopMin..StopMax; a turn lasts until the embedded Turn completes.
type RandomRoam struct{}

func (RandomRoam) Run(ctx context.Context, env Env) (bool, error) {
	t := env.Timing()
	r := env.Rand()
	for {
		var err error
		switch pickRoamState(r) {
		case roamForward:
			env.Send(MoveForward)
			err = sleep(ctx, uniform(r, t.MoveMin, t.MoveMax))
		case roamBackward:
			env.Send(MoveBackward)
			err = sleep(ctx, uniform(r, t.MoveMin, t.MoveMax))
		case roamStop:
			env.Send(StopMoving)
			err = sleep(ctx, uniform(r, t.StopMin, t.StopMax))
		case roamTurn:
			env.Send(StopMoving)
			err = runSubtask(ctx, env, Turn{})
		}
		if err != nil {
			env.Send(Stop)
			env.Send(StopTurning)
			return false, err
		}
	}
}

// runSubtask runs r on its own goroutine under a child context and waits
// for it. When ctx is cancelled the subtask is cancelled and joined before
// returning.
func runSubtask(ctx context.Context, env Env, r Routine) error {
	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := r.Run(sub, env)
		done <- err
	}()
	select {
	case <-done:
		return ctx.Err()
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}
