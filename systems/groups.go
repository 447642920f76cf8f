package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

// GroupsMerged records that two schools touched this tick.
type GroupsMerged struct {
	A, B components.GroupID
}

// ContactStarted reports that two agents' sensor volumes began to overlap.
type ContactStarted struct {
	A, B ecs.Entity
}

// GroupingStats counts grouping activity since the last TakeStats.
type GroupingStats struct {
	Formed     int // Fresh groups created from two ungrouped fish
	Propagated int // Ungrouped fish that joined an existing group
	Merges     int // Merge events resolved
	Joins      int // Join signals for the player's group
	Contacts   int // Contact events accepted
}

type groupBody struct {
	e   ecs.Entity
	pos r3.Vec
}

// GroupingEngine assigns fish to schools as they meet and merges schools
// that touch. Lower ids always win a merge, so the player's group (id 0)
// absorbs everything it touches.
type GroupingEngine struct {
	world      *ecs.World
	distanceSq float64
	nextID     components.GroupID

	filter   ecs.Filter2[components.Position, components.Group]
	groups   ecs.Filter1[components.Group]
	groupMap *ecs.Map[components.Group]

	merges   []GroupsMerged
	entering map[components.GroupID]struct{} // Schools already counted as joining the player's this batch
	joined   int
	stats  GroupingStats
	bodies []groupBody
}

// NewGroupingEngine creates a grouping engine. Fresh ids start at 1.
func NewGroupingEngine(w *ecs.World, groupDistance float64) *GroupingEngine {
	return &GroupingEngine{
		world:      w,
		distanceSq: groupDistance * groupDistance,
		nextID:     components.PlayerGroupID + 1,
		entering:   make(map[components.GroupID]struct{}),
		filter:     *ecs.NewFilter2[components.Position, components.Group](w),
		groups:     *ecs.NewFilter1[components.Group](w),
		groupMap:   ecs.NewMap[components.Group](w),
	}
}

// SetGroupDistance changes the proximity threshold.
func (e *GroupingEngine) SetGroupDistance(d float64) {
	e.distanceSq = d * d
}

// NextGroupID allocates a group id that has never been handed out.
func (e *GroupingEngine) NextGroupID() components.GroupID {
	id := e.nextID
	e.nextID++
	return id
}

// DetectProximity resolves every unordered pair of grouped-capable agents
// within the group distance.
func (e *GroupingEngine) DetectProximity() {
	e.bodies = e.bodies[:0]
	query := e.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		e.bodies = append(e.bodies, groupBody{e: query.Entity(), pos: pos.Vec})
	}

	for i := 0; i < len(e.bodies); i++ {
		for j := i + 1; j < len(e.bodies); j++ {
			if r3.Norm2(r3.Sub(e.bodies[i].pos, e.bodies[j].pos)) > e.distanceSq {
				continue
			}
			e.ResolvePair(e.groupMap.Get(e.bodies[i].e), e.groupMap.Get(e.bodies[j].e))
		}
	}
}

// ApplyContacts resolves contact-started events. Events naming dead agents,
// agents without group membership, or the same agent twice are ignored.
func (e *GroupingEngine) ApplyContacts(events []ContactStarted) {
	for _, ev := range events {
		if ev.A == ev.B {
			continue
		}
		if !e.world.Alive(ev.A) || !e.world.Alive(ev.B) {
			continue
		}
		if !e.groupMap.Has(ev.A) || !e.groupMap.Has(ev.B) {
			continue
		}
		e.stats.Contacts++
		e.ResolvePair(e.groupMap.Get(ev.A), e.groupMap.Get(ev.B))
	}
}

// ResolvePair applies the pairing rule to two agents that met.
// Ungrouped agents are assigned immediately; two different groups are only
// recorded for the merge pass.
func (e *GroupingEngine) ResolvePair(a, b *components.Group) {
	switch {
	case !a.Assigned && !b.Assigned:
		id := e.NextGroupID()
		*a = components.InGroup(id)
		*b = components.InGroup(id)
		e.stats.Formed++
		slog.Debug("group formed", "group", id)
	case a.Assigned && !b.Assigned:
		e.propagate(a.ID, b)
	case !a.Assigned && b.Assigned:
		e.propagate(b.ID, a)
	case a.ID != b.ID:
		e.merges = append(e.merges, GroupsMerged{A: a.ID, B: b.ID})
		if a.ID == components.PlayerGroupID {
			e.schoolJoins(b.ID)
		} else if b.ID == components.PlayerGroupID {
			e.schoolJoins(a.ID)
		}
	}
}

func (e *GroupingEngine) propagate(id components.GroupID, dst *components.Group) {
	*dst = components.InGroup(id)
	e.stats.Propagated++
	if id == components.PlayerGroupID {
		e.signalJoin()
	}
}

// schoolJoins signals a join once per school, however many of its members
// touch the player's school before the merge pass.
func (e *GroupingEngine) schoolJoins(id components.GroupID) {
	if _, seen := e.entering[id]; seen {
		return
	}
	e.entering[id] = struct{}{}
	e.signalJoin()
}

func (e *GroupingEngine) signalJoin() {
	e.joined++
	e.stats.Joins++
	slog.Debug("joined player group")
}

// PendingMerges returns the merges recorded since the last ResolveMerges.
func (e *GroupingEngine) PendingMerges() []GroupsMerged {
	return e.merges
}

// ResolveMerges relabels every agent whose group merged this tick and
// clears the batch. Chains of merges collapse to the lowest id in one pass.
// Returns the number of agents relabeled.
func (e *GroupingEngine) ResolveMerges() int {
	if len(e.merges) == 0 {
		return 0
	}

	parent := make(map[components.GroupID]components.GroupID, len(e.merges)*2)
	var find func(id components.GroupID) components.GroupID
	find = func(id components.GroupID) components.GroupID {
		p, ok := parent[id]
		if !ok || p == id {
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	for _, m := range e.merges {
		ra, rb := find(m.A), find(m.B)
		switch {
		case ra < rb:
			parent[rb] = ra
		case rb < ra:
			parent[ra] = rb
		}
		slog.Debug("groups merged", "a", m.A, "b", m.B)
	}

	relabeled := 0
	query := e.groups.Query()
	for query.Next() {
		grp := query.Get()
		if !grp.Assigned {
			continue
		}
		if root := find(grp.ID); root != grp.ID {
			grp.ID = root
			relabeled++
		}
	}

	e.stats.Merges += len(e.merges)
	e.merges = e.merges[:0]
	clear(e.entering)
	return relabeled
}

// TakeJoined returns how many entrants joined the player's group since the
// last call, and clears the count. An entrant is one ungrouped fish or one
// whole school merging in.
func (e *GroupingEngine) TakeJoined() int {
	n := e.joined
	e.joined = 0
	return n
}

// TakeStats returns the activity counters and resets them.
func (e *GroupingEngine) TakeStats() GroupingStats {
	s := e.stats
	e.stats = GroupingStats{}
	return s
}
