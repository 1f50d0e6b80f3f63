// Package sensor holds the agent's view of the world: the ray-cast sensor
// snapshot, the agent state record, and the store that publishes both to
// goal routines as a single consistent percept.
package sensor

import (
	"errors"
	"fmt"
	"math"
)

// NoDistance is the distance reported by a ray that hit nothing.
const NoDistance = -1.0

// ErrRayIndex is returned when an update references a ray outside the fan.
var ErrRayIndex = errors.New("sensor: ray index out of range")

// Config describes the ray fan, as
// [rays_per_direction, max_ray_degrees, sphere_cast_radius, ray_length].
type Config struct {
	RaysPerDirection int
	MaxDegrees       float64
	SphereCastRadius float64
	RayLength        float64
}

// ParseConfig builds a Config from the four element parameter list used by
// agent profiles.
func ParseConfig(params []float64) (Config, error) {
	if len(params) != 4 {
		return Config{}, fmt.Errorf("sensor: expected 4 ray parameters, got %d", len(params))
	}
	rpd := params[0]
	if rpd < 0 || rpd != math.Trunc(rpd) {
		return Config{}, fmt.Errorf("sensor: rays per direction must be a non-negative integer, got %v", rpd)
	}
	return Config{
		RaysPerDirection: int(rpd),
		MaxDegrees:       params[1],
		SphereCastRadius: params[2],
		RayLength:        params[3],
	}, nil
}

// NumRays is always odd: one center ray plus RaysPerDirection on each side.
func (c Config) NumRays() int { return c.RaysPerDirection*2 + 1 }

// Object is what a ray hit.
type Object struct {
	Name     string  `json:"name"`
	Tag      string  `json:"tag"`
	Distance float64 `json:"distance"`
}

// Ray is one cast of the fan.
type Ray struct {
	Hit      bool    `json:"hit"`
	Distance float64 `json:"distance"`
	Object   *Object `json:"object,omitempty"`
	Angle    float64 `json:"angle"`
}

// RayUpdate replaces the record of a single ray. A nil Object means the ray
// reports no distance.
type RayUpdate struct {
	Index  int
	Hit    bool
	Object *Object
}

// Snapshot is an immutable view of the ray fan. Apply returns a new value;
// the receiver is never modified, so a Snapshot can be shared freely.
type Snapshot struct {
	rays []Ray
}

// NewSnapshot returns a snapshot with every ray cleared and the angles laid
// out symmetrically around the center ray.
func NewSnapshot(cfg Config) Snapshot {
	n := cfg.NumRays()
	rays := make([]Ray, n)
	rpd := cfg.RaysPerDirection
	var step float64
	if rpd > 0 {
		step = cfg.MaxDegrees / float64(rpd)
	}
	for i := range rays {
		rays[i].Distance = NoDistance
		switch {
		case i < rpd:
			rays[i].Angle = -float64(rpd-i) * step
		case i > rpd:
			rays[i].Angle = float64(i-rpd) * step
		}
	}
	return Snapshot{rays: rays}
}

// Len returns the number of rays.
func (s Snapshot) Len() int { return len(s.rays) }

// Center returns the index of the center ray.
func (s Snapshot) Center() int { return len(s.rays) / 2 }

// Ray returns the ray at index i.
func (s Snapshot) Ray(i int) Ray { return s.rays[i] }

// Rays returns a copy of all rays.
func (s Snapshot) Rays() []Ray {
	out := make([]Ray, len(s.rays))
	copy(out, s.rays)
	return out
}

// Apply patches the rays named by the updates and returns the result. Rays
// not named keep their previous record. Angles are never touched.
func (s Snapshot) Apply(updates []RayUpdate) (Snapshot, error) {
	for _, u := range updates {
		if u.Index < 0 || u.Index >= len(s.rays) {
			return s, fmt.Errorf("%w: %d (rays: %d)", ErrRayIndex, u.Index, len(s.rays))
		}
	}
	rays := make([]Ray, len(s.rays))
	copy(rays, s.rays)
	for _, u := range updates {
		r := &rays[u.Index]
		r.Hit = u.Hit
		if u.Object == nil {
			r.Distance = NoDistance
			r.Object = nil
		} else {
			obj := *u.Object
			r.Distance = obj.Distance
			r.Object = &obj
		}
	}
	return Snapshot{rays: rays}, nil
}

// Find returns the index of the ray nearest the center whose object has the
// given tag. Ties between the two sides go to the left ray.
func (s Snapshot) Find(tag string) (int, bool) {
	c := s.Center()
	for off := 0; off <= c; off++ {
		if i := c - off; s.tagged(i, tag) {
			return i, true
		}
		if i := c + off; off > 0 && s.tagged(i, tag) {
			return i, true
		}
	}
	return -1, false
}

// Sees reports whether any ray currently sees an object with the tag.
func (s Snapshot) Sees(tag string) bool {
	_, ok := s.Find(tag)
	return ok
}

// AnyHit reports whether any ray hit something.
func (s Snapshot) AnyHit() bool {
	for _, r := range s.rays {
		if r.Hit {
			return true
		}
	}
	return false
}

func (s Snapshot) tagged(i int, tag string) bool {
	if i < 0 || i >= len(s.rays) {
		return false
	}
	obj := s.rays[i].Object
	return obj != nil && obj.Tag == tag
}
