package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

// SteeringSystem drives steerable agents toward the pointer target.
type SteeringSystem struct {
	maxSpeed float64
	filter   ecs.Filter3[components.Position, components.Velocity, components.Steerable]
}

// NewSteeringSystem creates a new steering system.
func NewSteeringSystem(w *ecs.World, maxSpeed float64) *SteeringSystem {
	return &SteeringSystem{
		maxSpeed: maxSpeed,
		filter:   *ecs.NewFilter3[components.Position, components.Velocity, components.Steerable](w),
	}
}

// Update sets each steerable agent's velocity toward target, flattened to
// the XY plane and clamped to the steering max speed. A nil target stops them.
func (s *SteeringSystem) Update(target *r3.Vec) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		if target == nil {
			vel.Vec = r3.Vec{}
			continue
		}
		vel.Vec = ClampLength(flat(r3.Sub(*target, pos.Vec)), s.maxSpeed)
	}
}

// Ray is a pointer ray in world space.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// CursorOnPlane intersects a pointer ray with the horizontal plane z = planeZ.
// Returns false when the ray is parallel to the plane or points away from it.
func CursorOnPlane(ray Ray, planeZ, epsilon float64) (r3.Vec, bool) {
	if ray.Direction.Z > -epsilon && ray.Direction.Z < epsilon {
		return r3.Vec{}, false
	}
	t := (planeZ - ray.Origin.Z) / ray.Direction.Z
	if t < 0 {
		return r3.Vec{}, false
	}
	return r3.Add(ray.Origin, r3.Scale(t, ray.Direction)), true
}
