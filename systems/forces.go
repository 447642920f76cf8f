package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
)

// ForceParams holds the runtime-tunable constants of the force, movement and
// grouping systems.
type ForceParams struct {
	MaxSpeed              float64
	Friction              float64
	Cohesion              float64
	SeparationStrength    float64
	SeparationRadius      float64
	Alignment             float64
	Wander                float64
	SuppressGroupedWander bool // Grouped fish do not wander
	Grouped               bool    // Aggregate per group instead of over the whole population
	GroupDistance         float64 // Proximity threshold; contact sensors use half of it
	Epsilon               float64
}

// ForceParamsFromConfig extracts force constants from a loaded config.
func ForceParamsFromConfig(cfg *config.Config) ForceParams {
	return ForceParams{
		MaxSpeed:              cfg.Forces.MaxSpeed,
		Friction:              cfg.Forces.Friction,
		Cohesion:              cfg.Forces.Cohesion,
		SeparationStrength:    cfg.Forces.SeparationStrength,
		SeparationRadius:      cfg.Forces.SeparationRadius,
		Alignment:             cfg.Forces.Alignment,
		Wander:                cfg.Forces.Wander,
		SuppressGroupedWander: cfg.Forces.SuppressGroupedWander,
		Grouped:               cfg.Grouping.Enabled,
		GroupDistance:         cfg.Grouping.GroupDistance,
		Epsilon:               cfg.Physics.Epsilon,
	}
}

// groupAggregate accumulates position and velocity sums for one group.
type groupAggregate struct {
	sumPos r3.Vec
	sumVel r3.Vec
	count  int
}

func (a *groupAggregate) centroid() r3.Vec {
	return r3.Scale(1/float64(a.count), a.sumPos)
}

func (a *groupAggregate) meanVelocity() r3.Vec {
	return r3.Scale(1/float64(a.count), a.sumVel)
}

// separationBody is a participant in the pairwise separation pass.
type separationBody struct {
	e     ecs.Entity
	pos   r3.Vec
	force r3.Vec
}

// ForceSystem computes the per-tick force components stored on each agent.
type ForceSystem struct {
	params ForceParams
	rng    *rand.Rand

	friction   ecs.Filter2[components.Velocity, components.Friction]
	cohesion   ecs.Filter2[components.Position, components.Cohesion]
	alignment  ecs.Filter2[components.Velocity, components.Alignment]
	separation ecs.Filter2[components.Position, components.Separation]
	wander     ecs.Filter1[components.Wander]
	members    ecs.Filter3[components.Position, components.Velocity, components.Group]

	groupMap *ecs.Map[components.Group]
	sepMap   *ecs.Map[components.Separation]

	groups map[components.GroupID]*groupAggregate
	bodies []separationBody
}

// NewForceSystem creates a new force system.
func NewForceSystem(w *ecs.World, params ForceParams, rng *rand.Rand) *ForceSystem {
	return &ForceSystem{
		params:     params,
		rng:        rng,
		friction:   *ecs.NewFilter2[components.Velocity, components.Friction](w),
		cohesion:   *ecs.NewFilter2[components.Position, components.Cohesion](w),
		alignment:  *ecs.NewFilter2[components.Velocity, components.Alignment](w),
		separation: *ecs.NewFilter2[components.Position, components.Separation](w),
		wander:     *ecs.NewFilter1[components.Wander](w),
		members:    *ecs.NewFilter3[components.Position, components.Velocity, components.Group](w),
		groupMap:   ecs.NewMap[components.Group](w),
		sepMap:     ecs.NewMap[components.Separation](w),
		groups:     make(map[components.GroupID]*groupAggregate),
	}
}

// Params returns the current force constants.
func (s *ForceSystem) Params() ForceParams {
	return s.params
}

// SetParams replaces the force constants; takes effect on the next Update.
func (s *ForceSystem) SetParams(p ForceParams) {
	s.params = p
}

// Update recomputes every force component from the current positions and velocities.
func (s *ForceSystem) Update() {
	s.updateFriction()
	if s.params.Grouped {
		s.aggregateGroups()
		s.updateGroupCohesion()
		s.updateGroupAlignment()
	} else {
		s.updateGlobalCohesion()
		s.updateGlobalAlignment()
	}
	s.updateSeparation()
	s.updateWander()
}

func (s *ForceSystem) updateFriction() {
	query := s.friction.Query()
	for query.Next() {
		vel, fric := query.Get()
		fric.Force = r3.Scale(-s.params.Friction, vel.Vec)
	}
}

// aggregateGroups builds per-group sums over every assigned agent.
func (s *ForceSystem) aggregateGroups() {
	for _, agg := range s.groups {
		*agg = groupAggregate{}
	}

	query := s.members.Query()
	for query.Next() {
		pos, vel, grp := query.Get()
		if !grp.Assigned {
			continue
		}
		agg, ok := s.groups[grp.ID]
		if !ok {
			agg = &groupAggregate{}
			s.groups[grp.ID] = agg
		}
		agg.sumPos = r3.Add(agg.sumPos, pos.Vec)
		agg.sumVel = r3.Add(agg.sumVel, vel.Vec)
		agg.count++
	}

	// Ids vanish after merges; drop their slots so the map tracks live groups.
	for id, agg := range s.groups {
		if agg.count == 0 {
			delete(s.groups, id)
		}
	}
}

// groupOf returns the aggregate for the agent's group, or nil when ungrouped.
func (s *ForceSystem) groupOf(e ecs.Entity) *groupAggregate {
	if !s.groupMap.Has(e) {
		return nil
	}
	grp := s.groupMap.Get(e)
	if !grp.Assigned {
		return nil
	}
	agg := s.groups[grp.ID]
	if agg == nil || agg.count == 0 {
		return nil
	}
	return agg
}

func (s *ForceSystem) updateGroupCohesion() {
	query := s.cohesion.Query()
	for query.Next() {
		pos, coh := query.Get()
		agg := s.groupOf(query.Entity())
		if agg == nil {
			coh.Force = r3.Vec{}
			continue
		}
		coh.Force = r3.Scale(s.params.Cohesion, r3.Sub(agg.centroid(), pos.Vec))
	}
}

func (s *ForceSystem) updateGroupAlignment() {
	query := s.alignment.Query()
	for query.Next() {
		_, ali := query.Get()
		agg := s.groupOf(query.Entity())
		if agg == nil {
			ali.Force = r3.Vec{}
			continue
		}
		ali.Force = r3.Scale(s.params.Alignment, agg.meanVelocity())
	}
}

func (s *ForceSystem) updateGlobalCohesion() {
	var sum r3.Vec
	count := 0
	query := s.cohesion.Query()
	for query.Next() {
		pos, _ := query.Get()
		sum = r3.Add(sum, pos.Vec)
		count++
	}
	if count == 0 {
		return
	}
	center := r3.Scale(1/float64(count), sum)

	query = s.cohesion.Query()
	for query.Next() {
		pos, coh := query.Get()
		coh.Force = r3.Scale(s.params.Cohesion, r3.Sub(center, pos.Vec))
	}
}

func (s *ForceSystem) updateGlobalAlignment() {
	var sum r3.Vec
	count := 0
	query := s.alignment.Query()
	for query.Next() {
		vel, _ := query.Get()
		sum = r3.Add(sum, vel.Vec)
		count++
	}
	if count == 0 {
		return
	}
	force := r3.Scale(s.params.Alignment/float64(count), sum)

	query = s.alignment.Query()
	for query.Next() {
		_, ali := query.Get()
		ali.Force = force
	}
}

// updateSeparation applies inverse-cube repulsion over all unordered pairs.
// In the grouped variant only fish that belong to a group take part.
func (s *ForceSystem) updateSeparation() {
	s.bodies = s.bodies[:0]
	query := s.separation.Query()
	for query.Next() {
		pos, sep := query.Get()
		sep.Force = r3.Vec{}
		e := query.Entity()
		if s.params.Grouped && !s.isGrouped(e) {
			continue
		}
		s.bodies = append(s.bodies, separationBody{e: e, pos: pos.Vec})
	}

	radius := s.params.SeparationRadius
	for i := 0; i < len(s.bodies); i++ {
		a := &s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := &s.bodies[j]
			delta := r3.Sub(a.pos, b.pos)
			dist := r3.Norm(delta)
			if dist <= s.params.Epsilon {
				continue
			}
			r := dist / radius
			impulse := r3.Scale(s.params.SeparationStrength/(r*r*r), delta)
			a.force = r3.Add(a.force, impulse)
			b.force = r3.Sub(b.force, impulse)
		}
	}

	for i := range s.bodies {
		s.sepMap.Get(s.bodies[i].e).Force = s.bodies[i].force
	}
}

func (s *ForceSystem) updateWander() {
	query := s.wander.Query()
	for query.Next() {
		wan := query.Get()
		if s.params.SuppressGroupedWander && s.isGrouped(query.Entity()) {
			wan.Force = r3.Vec{}
			continue
		}
		magnitude := s.params.Wander * RandomUnit(s.rng)
		wan.Force = r3.Scale(magnitude, RandomDirection(s.rng))
	}
}

func (s *ForceSystem) isGrouped(e ecs.Entity) bool {
	return s.groupMap.Has(e) && s.groupMap.Get(e).Assigned
}
