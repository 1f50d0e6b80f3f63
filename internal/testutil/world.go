package testutil

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joeycumines/aagent/internal/goal"
	"github.com/joeycumines/aagent/internal/sensor"
)

// Entity is an object placed in a World.
type Entity struct {
	// Name is reported on ray hits; Tag is what routines search for.
	Name string
	Tag  string
	// X and Z are the ground plane position.
	X, Z float64
	// Collectible entities are picked up (added to the inventory under
	// their tag) when the agent comes within PickupRadius.
	Collectible bool
}

// World is a tiny kinematic simulator implementing goal.Env. Every call to
// Percept advances it by one step: the agent turns by TurnStep degrees while
// rotating and moves MoveStep units along its heading while translating, and
// the ray fan is recomputed from the entity geometry. Yaw 0 faces +Z and
// positive yaw turns right.
type World struct {
	mu       sync.Mutex
	cfg      sensor.Config
	state    sensor.AgentState
	snap     sensor.Snapshot
	entities []Entity
	commands []goal.Command
	seq      uint64
	routeFor int

	rand   goal.Rand
	timing goal.Timing

	// TurnStep is the yaw change per step, in degrees, while rotating.
	TurnStep float64
	// MoveStep is the distance covered per step while translating.
	MoveStep float64
	// PickupRadius is how close a collectible entity must be to be picked
	// up.
	PickupRadius float64
	// RouteSteps is how many steps a walk_to command keeps the agent en
	// route before arriving.
	RouteSteps int
}

// FastTiming scales the routine timings down so tests complete in
// milliseconds.
func FastTiming() goal.Timing {
	return goal.DefaultTiming().Scaled(0.002)
}

// NewWorld returns a world with the given ray fan, the agent at the origin
// facing +Z, and fast timings.
func NewWorld(cfg sensor.Config, seed uint64) *World {
	return &World{
		cfg:          cfg,
		snap:         sensor.NewSnapshot(cfg),
		rand:         goal.NewRand(seed),
		timing:       FastTiming(),
		TurnStep:     2,
		MoveStep:     0.1,
		PickupRadius: 0.5,
		RouteSteps:   5,
	}
}

// Add places entities in the world.
func (w *World) Add(es ...Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities = append(w.entities, es...)
	w.snap = w.scan()
}

// Update mutates the agent state under the world lock.
func (w *World) Update(fn func(s *sensor.AgentState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.state)
	w.snap = w.scan()
}

// SetTiming replaces the timings handed to routines.
func (w *World) SetTiming(t goal.Timing) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timing = t
}

// SetRand replaces the random source handed to routines.
func (w *World) SetRand(r goal.Rand) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rand = r
}

// State returns the current agent state without advancing the world.
func (w *World) State() sensor.AgentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Commands returns every command sent so far.
func (w *World) Commands() []goal.Command {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.commands)
}

// LastCommand returns the most recent command, or "".
func (w *World) LastCommand() goal.Command {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.commands) == 0 {
		return ""
	}
	return w.commands[len(w.commands)-1]
}

// Sent reports whether cmd was ever sent.
func (w *World) Sent(cmd goal.Command) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.commands, cmd)
}

// Rand returns the seeded source shared by routines under test.
func (w *World) Rand() goal.Rand {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rand
}

// Timing returns the timing handed to routines.
func (w *World) Timing() goal.Timing {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timing
}

// Current implements goal.PerceptSource without advancing the world.
func (w *World) Current() sensor.Percept {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.percept()
}

// Percept advances the world one step and returns the new percept.
func (w *World) Percept() sensor.Percept {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step()
	return w.percept()
}

func (w *World) percept() sensor.Percept {
	st := w.state
	st.Inventory = slices.Clone(st.Inventory)
	st.ContainerInventory = slices.Clone(st.ContainerInventory)
	return sensor.Percept{Sensor: w.snap, State: st, Seq: w.seq}
}

// Send records cmd and applies it to the agent's motion flags.
func (w *World) Send(cmd goal.Command) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.commands = append(w.commands, cmd)
	st := &w.state
	switch cmd.Verb() {
	case "mf":
		st.MovingForwards, st.MovingBackwards = true, false
	case "mb":
		st.MovingForwards, st.MovingBackwards = false, true
	case "stop", "ntm":
		st.MovingForwards, st.MovingBackwards = false, false
	case "tr":
		st.RotatingRight, st.RotatingLeft = true, false
	case "tl":
		st.RotatingRight, st.RotatingLeft = false, true
	case "nt":
		st.RotatingRight, st.RotatingLeft = false, false
	case "collect":
		tag := string(cmd)[len("collect:"):]
		w.pickup(func(e Entity) bool { return e.Tag == tag }, 2*w.PickupRadius)
	case "walk_to":
		st.TargetLocation = string(cmd)[len("walk_to,"):]
		st.OnRoute = true
		w.routeFor = w.RouteSteps
	case "leave":
		var item string
		var n int
		if parseLeave(string(cmd), &item, &n) {
			moveItems(&st.Inventory, &st.ContainerInventory, item, n)
		}
	}
}

func (w *World) step() {
	w.seq++
	st := &w.state
	if st.Frozen {
		w.snap = w.scan()
		return
	}
	switch {
	case st.RotatingRight:
		st.Rotation.Y = math.Mod(st.Rotation.Y+w.TurnStep, 360)
	case st.RotatingLeft:
		st.Rotation.Y = math.Mod(st.Rotation.Y-w.TurnStep+360, 360)
	}
	var dir float64
	switch {
	case st.MovingForwards:
		dir = 1
	case st.MovingBackwards:
		dir = -1
	}
	if dir != 0 {
		yaw := st.Rotation.Y * math.Pi / 180
		st.Position.X += dir * w.MoveStep * math.Sin(yaw)
		st.Position.Z += dir * w.MoveStep * math.Cos(yaw)
		w.pickup(func(e Entity) bool { return e.Collectible }, w.PickupRadius)
	}
	if st.OnRoute {
		if w.routeFor--; w.routeFor <= 0 {
			st.OnRoute = false
			st.CurrentLocation = st.TargetLocation
		}
	}
	w.snap = w.scan()
}

func (w *World) pickup(match func(Entity) bool, radius float64) {
	st := &w.state
	w.entities = slices.DeleteFunc(w.entities, func(e Entity) bool {
		if !match(e) || math.Hypot(e.X-st.Position.X, e.Z-st.Position.Z) > radius {
			return false
		}
		addItem(&st.Inventory, e.Tag, 1)
		return true
	})
}

// scan recomputes every ray from the entity geometry. A ray hits the
// nearest entity whose bearing lies within half a ray spacing of the ray's
// angle and whose distance is within the ray length.
func (w *World) scan() sensor.Snapshot {
	base := sensor.NewSnapshot(w.cfg)
	half := 5.0
	if w.cfg.RaysPerDirection > 0 {
		half = w.cfg.MaxDegrees / float64(w.cfg.RaysPerDirection) / 2
	}
	st := w.state
	updates := make([]sensor.RayUpdate, base.Len())
	for i, ray := range base.Rays() {
		updates[i] = sensor.RayUpdate{Index: i}
		best := -1.0
		for _, e := range w.entities {
			dx, dz := e.X-st.Position.X, e.Z-st.Position.Z
			d := math.Hypot(dx, dz)
			if w.cfg.RayLength > 0 && d > w.cfg.RayLength {
				continue
			}
			bearing := math.Atan2(dx, dz)*180/math.Pi - st.Rotation.Y
			bearing = math.Mod(bearing+540, 360) - 180
			if math.Abs(bearing-ray.Angle) > half {
				continue
			}
			if best < 0 || d < best {
				best = d
				updates[i] = sensor.RayUpdate{Index: i, Hit: true, Object: &sensor.Object{Name: e.Name, Tag: e.Tag, Distance: d}}
			}
		}
	}
	snap, err := base.Apply(updates)
	if err != nil {
		panic(err)
	}
	return snap
}

func addItem(items *[]sensor.Item, name string, n int) {
	for i := range *items {
		if (*items)[i].Name == name {
			(*items)[i].Amount += n
			return
		}
	}
	*items = append(*items, sensor.Item{Name: name, Amount: n})
}

func moveItems(from, to *[]sensor.Item, name string, n int) {
	for i := range *from {
		if (*from)[i].Name != name {
			continue
		}
		n = min(n, (*from)[i].Amount)
		(*from)[i].Amount -= n
		addItem(to, name, n)
		return
	}
}

func parseLeave(s string, item *string, n *int) bool {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) != 3 {
		return false
	}
	v, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	*item, *n = parts[1], v
	return true
}

// WaitForCommand polls until cmd has been sent.
func (w *World) WaitForCommand(cmd goal.Command, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if w.Sent(cmd) {
			return true
		}
		time.Sleep(PollingInterval)
	}
	return w.Sent(cmd)
}
