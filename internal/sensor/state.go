package sensor

import "math"

// Vec3 is a world-space vector. For rotations Y is yaw, X is pitch and Z is
// roll, in degrees.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlanarDistance returns the distance between two positions on the ground
// plane.
func (v Vec3) PlanarDistance(o Vec3) float64 {
	return math.Hypot(o.X-v.X, o.Z-v.Z)
}

// Item is an inventory entry.
type Item struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// AgentState mirrors the simulator's internal state record. It is replaced
// wholesale on every update.
type AgentState struct {
	RotatingRight      bool    `json:"isRotatingRight"`
	RotatingLeft       bool    `json:"isRotatingLeft"`
	MovingForwards     bool    `json:"movingForwards"`
	MovingBackwards    bool    `json:"movingBackwards"`
	Frozen             bool    `json:"isFrozen"`
	Speed              float64 `json:"speed"`
	Position           Vec3    `json:"position"`
	Rotation           Vec3    `json:"rotation"`
	CurrentLocation    string  `json:"currentNamedLoc"`
	OnRoute            bool    `json:"onRoute"`
	TargetLocation     string  `json:"targetNamedLoc"`
	Inventory          []Item  `json:"myInventoryList"`
	NearbyContainer    bool    `json:"nearbyContainerInventory"`
	ContainerInventory []Item  `json:"nearbyContainerInventoryList"`
}

// Yaw returns the heading in degrees, [0, 360).
func (s AgentState) Yaw() float64 { return s.Rotation.Y }

// Count returns the amount of the named item carried by the agent.
func (s AgentState) Count(name string) int {
	return count(s.Inventory, name)
}

// ContainerCount returns the amount of the named item in the nearby
// container.
func (s AgentState) ContainerCount(name string) int {
	return count(s.ContainerInventory, name)
}

func count(items []Item, name string) int {
	for _, it := range items {
		if it.Name == name {
			return it.Amount
		}
	}
	return 0
}

// clone returns a deep copy, detaching the inventory slices.
func (s AgentState) clone() AgentState {
	out := s
	if s.Inventory != nil {
		out.Inventory = append([]Item(nil), s.Inventory...)
	}
	if s.ContainerInventory != nil {
		out.ContainerInventory = append([]Item(nil), s.ContainerInventory...)
	}
	return out
}
