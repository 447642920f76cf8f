package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/systems"
)

// spawnInitialPopulation creates the player at the origin and scatters the
// NPCs in a disc around it.
func (g *Game) spawnInitialPopulation() {
	g.player = g.spawnPlayer(r3.Vec{})

	for i := 0; i < g.cfg.Spawn.NPCCount; i++ {
		pos := systems.RandomInDisc(g.rng, g.cfg.Spawn.Radius)
		g.spawnNPC(pos)
	}
}

// spawnFish creates the components every fish carries.
func (g *Game) spawnFish(pos r3.Vec, rot components.Orientation, grp components.Group) ecs.Entity {
	g.nextFishID++
	fish := components.Fish{ID: g.nextFishID}
	p := components.Position{Vec: pos}
	vel := components.Velocity{}
	sep := components.Separation{}
	return g.baseMapper.NewEntity(&fish, &p, &rot, &vel, &grp, &sep)
}

// spawnNPC creates a free-swimming fish with a random heading in the plane,
// outside any group.
func (g *Game) spawnNPC(pos r3.Vec) ecs.Entity {
	rot := components.IdentityOrientation()
	rot.LookTo(systems.RandomDirection(g.rng), components.WorldUp, g.cfg.Physics.Epsilon)
	e := g.spawnFish(pos, rot, components.Ungrouped())
	g.npcMapper.Add(e,
		&components.Forceable{},
		&components.Friction{},
		&components.Cohesion{},
		&components.Alignment{},
		&components.Wander{},
	)
	return e
}

// spawnPlayer creates the steerable fish that owns group 0.
// Its velocity comes from steering only, so it is not forceable and never wanders.
func (g *Game) spawnPlayer(pos r3.Vec) ecs.Entity {
	e := g.spawnFish(pos, components.IdentityOrientation(), components.InGroup(components.PlayerGroupID))
	g.playerMapper.Add(e,
		&components.Cohesion{},
		&components.Alignment{},
		&components.Steerable{},
		&components.Tracked{},
		&components.Player{},
	)
	return e
}

// SpawnNPC adds a fish at the given position. Used by tests and tools that
// need a hand-placed school.
func (g *Game) SpawnNPC(pos r3.Vec) ecs.Entity {
	return g.spawnNPC(pos)
}

// FishCount returns the number of fish, the player included.
func (g *Game) FishCount() int {
	n := 0
	query := g.viewFilter.Query()
	for query.Next() {
		n++
	}
	return n
}
