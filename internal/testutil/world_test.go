package testutil

import (
	"testing"

	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_RaysFollowGeometry(t *testing.T) {
	t.Parallel()

	w := NewWorld(sensor.Config{RaysPerDirection: 2, MaxDegrees: 60, RayLength: 10}, 1)
	w.Add(
		Entity{Name: "f", Tag: "Flower", X: 0, Z: 5},
		Entity{Name: "r", Tag: "Rock", X: 5, Z: 0},
	)

	p := w.Current()
	i, ok := p.Sensor.Find("Flower")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.InDelta(t, 5, p.Sensor.Ray(i).Distance, 1e-9)

	// 90 degrees to the right is outside the fan
	_, ok = p.Sensor.Find("Rock")
	assert.False(t, ok)

	w.Update(func(s *sensor.AgentState) { s.Rotation.Y = 60 })
	i, ok = w.Current().Sensor.Find("Rock")
	require.True(t, ok)
	assert.Equal(t, 3, i)
}

func TestWorld_MotionAndPickup(t *testing.T) {
	t.Parallel()

	w := NewWorld(sensor.Config{RaysPerDirection: 1, MaxDegrees: 30, RayLength: 10}, 1)
	w.Add(Entity{Tag: "Flower", Z: 1, Collectible: true})

	w.Send(goal.MoveForward)
	for range 10 {
		w.Percept()
	}
	w.Send(goal.StopMoving)
	st := w.State()
	assert.InDelta(t, 1.0, st.Position.Z, 1e-9)
	assert.Equal(t, 1, st.Count("Flower"))
	assert.False(t, w.Current().Sensor.Sees("Flower"))

	w.Send(goal.TurnLeft)
	w.Percept()
	w.Send(goal.StopTurning)
	w.Percept()
	assert.InDelta(t, 358, w.State().Yaw(), 1e-9)

	w.Send(goal.Leave("Flower", 1))
	assert.Equal(t, 0, w.State().Count("Flower"))
	assert.Equal(t, 1, w.State().ContainerCount("Flower"))

	assert.Equal(t, []goal.Command{"mf", "ntm", "tl", "nt", "leave,Flower,1"}, w.Commands())
}

func TestWorld_WalkTo(t *testing.T) {
	t.Parallel()

	w := NewWorld(sensor.Config{}, 1)
	w.RouteSteps = 2
	w.Send(goal.WalkTo("Base"))
	assert.True(t, w.State().OnRoute)
	w.Percept()
	w.Percept()
	st := w.State()
	assert.False(t, st.OnRoute)
	assert.Equal(t, "Base", st.CurrentLocation)
}
