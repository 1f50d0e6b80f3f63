package sensor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]float64{2, 90, 0.5, 20})
	require.NoError(t, err)
	assert.Equal(t, Config{RaysPerDirection: 2, MaxDegrees: 90, SphereCastRadius: 0.5, RayLength: 20}, cfg)
	assert.Equal(t, 5, cfg.NumRays())

	_, err = ParseConfig([]float64{2, 90})
	require.Error(t, err)
	_, err = ParseConfig([]float64{1.5, 90, 0.5, 20})
	require.Error(t, err)
}

func TestNewSnapshot_Angles(t *testing.T) {
	t.Parallel()

	s := NewSnapshot(Config{RaysPerDirection: 2, MaxDegrees: 90})
	require.Equal(t, 5, s.Len())
	require.Equal(t, 2, s.Center())

	var angles []float64
	for _, r := range s.Rays() {
		angles = append(angles, r.Angle)
		assert.False(t, r.Hit)
		assert.Equal(t, NoDistance, r.Distance)
		assert.Nil(t, r.Object)
	}
	assert.Equal(t, []float64{-90, -45, 0, 45, 90}, angles)
}

func TestNewSnapshot_SingleRay(t *testing.T) {
	t.Parallel()

	s := NewSnapshot(Config{RaysPerDirection: 0, MaxDegrees: 60})
	require.Equal(t, 1, s.Len())
	assert.Equal(t, 0.0, s.Ray(0).Angle)
}

func TestSnapshot_ApplyIsSparse(t *testing.T) {
	t.Parallel()

	base := NewSnapshot(Config{RaysPerDirection: 2, MaxDegrees: 90})
	s1, err := base.Apply([]RayUpdate{
		{Index: 0, Hit: true, Object: &Object{Name: "rock", Tag: "Rock", Distance: 3}},
		{Index: 2, Hit: true, Object: &Object{Name: "f1", Tag: "AlienFlower", Distance: 4}},
	})
	require.NoError(t, err)

	s2, err := s1.Apply([]RayUpdate{{Index: 2, Hit: false}})
	require.NoError(t, err)

	// untouched ray keeps its full record
	assert.True(t, s2.Ray(0).Hit)
	assert.Equal(t, 3.0, s2.Ray(0).Distance)
	assert.Equal(t, "Rock", s2.Ray(0).Object.Tag)
	assert.Equal(t, -90.0, s2.Ray(0).Angle)

	// patched ray is fully replaced
	assert.False(t, s2.Ray(2).Hit)
	assert.Equal(t, NoDistance, s2.Ray(2).Distance)
	assert.Nil(t, s2.Ray(2).Object)

	// earlier values are immutable
	assert.True(t, s1.Ray(2).Hit)
	assert.False(t, base.Ray(0).Hit)
}

func TestSnapshot_ApplyRejectsBadIndex(t *testing.T) {
	t.Parallel()

	base := NewSnapshot(Config{RaysPerDirection: 1, MaxDegrees: 45})
	s, err := base.Apply([]RayUpdate{{Index: 0, Hit: true, Object: &Object{Tag: "x"}}, {Index: 3}})
	require.ErrorIs(t, err, ErrRayIndex)
	assert.False(t, s.Ray(0).Hit, "a rejected patch must not be partially applied")
}

func TestSnapshot_FindPrefersCenter(t *testing.T) {
	t.Parallel()

	base := NewSnapshot(Config{RaysPerDirection: 2, MaxDegrees: 90})
	s, err := base.Apply([]RayUpdate{
		{Index: 0, Hit: true, Object: &Object{Tag: "Target", Distance: 1}},
		{Index: 3, Hit: true, Object: &Object{Tag: "Target", Distance: 2}},
	})
	require.NoError(t, err)

	idx, ok := s.Find("Target")
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = s.Find("Other")
	assert.False(t, ok)
	assert.True(t, s.Sees("Target"))
	assert.True(t, s.AnyHit())
}

func TestAgentState_Count(t *testing.T) {
	t.Parallel()

	st := AgentState{
		Inventory:          []Item{{Name: "AlienFlower", Amount: 2}},
		ContainerInventory: []Item{{Name: "AlienFlower", Amount: 7}},
		Rotation:           Vec3{Y: 123},
	}
	assert.Equal(t, 2, st.Count("AlienFlower"))
	assert.Equal(t, 0, st.Count("Rock"))
	assert.Equal(t, 7, st.ContainerCount("AlienFlower"))
	assert.Equal(t, 123.0, st.Yaw())
	assert.InDelta(t, 5.0, Vec3{}.PlanarDistance(Vec3{X: 3, Y: 100, Z: 4}), 1e-9)
}

func TestStore_StageAndCommit(t *testing.T) {
	t.Parallel()

	store := NewStore(Config{RaysPerDirection: 1, MaxDegrees: 30})
	require.NoError(t, store.Stage(
		[]RayUpdate{{Index: 0, Hit: true, Object: &Object{Tag: "A", Distance: 1}}},
		AgentState{Speed: 1},
	))
	require.NoError(t, store.Stage(
		[]RayUpdate{{Index: 2, Hit: true, Object: &Object{Tag: "B", Distance: 2}}},
		AgentState{Speed: 2},
	))

	// nothing visible until commit
	assert.Equal(t, uint64(0), store.Current().Seq)
	assert.False(t, store.Current().Sensor.AnyHit())

	require.True(t, store.Commit())
	p := store.Current()
	assert.Equal(t, uint64(2), p.Seq)
	assert.Equal(t, 2.0, p.State.Speed)
	assert.True(t, p.Sensor.Ray(0).Hit, "staged patches accumulate")
	assert.True(t, p.Sensor.Ray(2).Hit)

	assert.False(t, store.Commit())
}

func TestStore_StageRejectsBadPatch(t *testing.T) {
	t.Parallel()

	store := NewStore(Config{RaysPerDirection: 1, MaxDegrees: 30})
	require.Error(t, store.Stage([]RayUpdate{{Index: 9}}, AgentState{Speed: 5}))
	assert.False(t, store.Commit())
	assert.Equal(t, 0.0, store.Current().State.Speed)
}

func TestStore_StateIsDetached(t *testing.T) {
	t.Parallel()

	store := NewStore(Config{RaysPerDirection: 1, MaxDegrees: 30})
	inv := []Item{{Name: "AlienFlower", Amount: 1}}
	require.NoError(t, store.Stage(nil, AgentState{Inventory: inv}))
	store.Commit()
	inv[0].Amount = 99
	assert.Equal(t, 1, store.Current().State.Count("AlienFlower"))
}

func TestStore_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	store := NewStore(Config{RaysPerDirection: 2, MaxDegrees: 90})
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				p := store.Current()
				// each committed percept pairs speed with the hit ray index
				if p.Seq > 0 {
					idx := int(p.State.Speed)
					if !p.Sensor.Ray(idx).Hit {
						t.Errorf("percept %d: ray %d not hit", p.Seq, idx)
						return
					}
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		idx := i % 5
		rays := make([]RayUpdate, 5)
		for j := range rays {
			rays[j] = RayUpdate{Index: j}
		}
		rays[idx] = RayUpdate{Index: idx, Hit: true, Object: &Object{Tag: "x", Distance: 1}}
		require.NoError(t, store.Stage(rays, AgentState{Speed: float64(idx)}))
		store.Commit()
	}
	close(stop)
	wg.Wait()
}
