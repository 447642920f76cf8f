package components

// GroupID identifies a school of fish.
type GroupID uint32

// PlayerGroupID is the group the player belongs to from spawn.
// It is the lowest possible id, so merges never relabel it.
const PlayerGroupID GroupID = 0

// Group records which school an agent belongs to, if any.
// An agent with Assigned=false is ungrouped. Once assigned, the id only
// ever changes to a lower one through a merge.
type Group struct {
	ID       GroupID
	Assigned bool
}

// Ungrouped returns the membership of a fish that has not joined a school.
func Ungrouped() Group {
	return Group{}
}

// InGroup returns membership of the given school.
func InGroup(id GroupID) Group {
	return Group{ID: id, Assigned: true}
}

// IsPlayerGroup reports whether the agent belongs to the player's school.
func (g Group) IsPlayerGroup() bool {
	return g.Assigned && g.ID == PlayerGroupID
}
