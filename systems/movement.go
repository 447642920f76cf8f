// Package systems contains the per-tick ECS systems that move fish and form schools.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

// MovementSystem integrates stored forces into velocity and velocity into position.
type MovementSystem struct {
	maxSpeed float64
	epsilon  float64

	forceable ecs.Filter2[components.Velocity, components.Forceable]
	moving    ecs.Filter3[components.Position, components.Orientation, components.Velocity]

	cohMap  *ecs.Map[components.Cohesion]
	sepMap  *ecs.Map[components.Separation]
	aliMap  *ecs.Map[components.Alignment]
	fricMap *ecs.Map[components.Friction]
	wanMap  *ecs.Map[components.Wander]
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World, maxSpeed, epsilon float64) *MovementSystem {
	return &MovementSystem{
		maxSpeed:  maxSpeed,
		epsilon:   epsilon,
		forceable: *ecs.NewFilter2[components.Velocity, components.Forceable](w),
		moving:    *ecs.NewFilter3[components.Position, components.Orientation, components.Velocity](w),
		cohMap:    ecs.NewMap[components.Cohesion](w),
		sepMap:    ecs.NewMap[components.Separation](w),
		aliMap:    ecs.NewMap[components.Alignment](w),
		fricMap:   ecs.NewMap[components.Friction](w),
		wanMap:    ecs.NewMap[components.Wander](w),
	}
}

// SetMaxSpeed changes the velocity clamp used by ApplyForces.
func (s *MovementSystem) SetMaxSpeed(maxSpeed float64) {
	s.maxSpeed = maxSpeed
}

// ApplyForces adds dt times each stored force to the velocity of every
// forceable agent, then clamps the result to the max speed.
func (s *MovementSystem) ApplyForces(dt float64) {
	query := s.forceable.Query()
	for query.Next() {
		vel, _ := query.Get()
		e := query.Entity()

		v := vel.Vec
		if s.cohMap.Has(e) {
			v = r3.Add(v, r3.Scale(dt, s.cohMap.Get(e).Force))
		}
		if s.sepMap.Has(e) {
			v = r3.Add(v, r3.Scale(dt, s.sepMap.Get(e).Force))
		}
		if s.aliMap.Has(e) {
			v = r3.Add(v, r3.Scale(dt, s.aliMap.Get(e).Force))
		}
		if s.fricMap.Has(e) {
			v = r3.Add(v, r3.Scale(dt, s.fricMap.Get(e).Force))
		}
		if s.wanMap.Has(e) {
			v = r3.Add(v, r3.Scale(dt, s.wanMap.Get(e).Force))
		}
		vel.Vec = ClampLength(v, s.maxSpeed)
	}
}

// Move advances every agent by velocity*dt, turning it to face the
// direction of travel when the step is long enough to define one.
func (s *MovementSystem) Move(dt float64) {
	query := s.moving.Query()
	for query.Next() {
		pos, rot, vel := query.Get()
		delta := r3.Scale(dt, vel.Vec)
		if r3.Norm(delta) > s.epsilon {
			rot.LookTo(delta, components.WorldUp, s.epsilon)
		}
		pos.Vec = r3.Add(pos.Vec, delta)
	}
}
