package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

const testEpsilon = 1.1920929e-07

// spawner builds fish with the same component bundles the game uses.
type spawner struct {
	base   *ecs.Map6[components.Fish, components.Position, components.Orientation, components.Velocity, components.Group, components.Separation]
	npc    *ecs.Map5[components.Forceable, components.Friction, components.Cohesion, components.Alignment, components.Wander]
	player *ecs.Map5[components.Cohesion, components.Alignment, components.Steerable, components.Tracked, components.Player]
	nextID uint32
}

func newSpawner(w *ecs.World) *spawner {
	return &spawner{
		base:   ecs.NewMap6[components.Fish, components.Position, components.Orientation, components.Velocity, components.Group, components.Separation](w),
		npc:    ecs.NewMap5[components.Forceable, components.Friction, components.Cohesion, components.Alignment, components.Wander](w),
		player: ecs.NewMap5[components.Cohesion, components.Alignment, components.Steerable, components.Tracked, components.Player](w),
	}
}

func (s *spawner) fish(pos, vel r3.Vec, grp components.Group) ecs.Entity {
	s.nextID++
	fish := components.Fish{ID: s.nextID}
	p := components.Position{Vec: pos}
	rot := components.IdentityOrientation()
	v := components.Velocity{Vec: vel}
	return s.base.NewEntity(&fish, &p, &rot, &v, &grp, &components.Separation{})
}

func (s *spawner) npcAt(pos, vel r3.Vec, grp components.Group) ecs.Entity {
	e := s.fish(pos, vel, grp)
	s.npc.Add(e, &components.Forceable{}, &components.Friction{}, &components.Cohesion{}, &components.Alignment{}, &components.Wander{})
	return e
}

func (s *spawner) playerAt(pos r3.Vec) ecs.Entity {
	e := s.fish(pos, r3.Vec{}, components.InGroup(components.PlayerGroupID))
	s.player.Add(e, &components.Cohesion{}, &components.Alignment{}, &components.Steerable{}, &components.Tracked{}, &components.Player{})
	return e
}

func vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

func assertVec(t *testing.T, name string, got, want r3.Vec, tol float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}
