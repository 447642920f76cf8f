package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
)

// TrackSystem widens the camera frame to cover fish that joined the player's school.
type TrackSystem struct {
	filter     ecs.Filter2[components.Group, components.Fish]
	trackedMap *ecs.Map[components.Tracked]
	zoomMap    *ecs.Map[components.TrackedZoomOnly]
	pending    []ecs.Entity
}

// NewTrackSystem creates a new track system.
func NewTrackSystem(w *ecs.World) *TrackSystem {
	return &TrackSystem{
		filter:     *ecs.NewFilter2[components.Group, components.Fish](w),
		trackedMap: ecs.NewMap[components.Tracked](w),
		zoomMap:    ecs.NewMap[components.TrackedZoomOnly](w),
	}
}

// Update marks untracked members of the player's group as zoom-only tracked.
// Returns how many fish were newly marked.
func (s *TrackSystem) Update() int {
	s.pending = s.pending[:0]
	query := s.filter.Query()
	for query.Next() {
		grp, _ := query.Get()
		if !grp.IsPlayerGroup() {
			continue
		}
		e := query.Entity()
		if s.trackedMap.Has(e) || s.zoomMap.Has(e) {
			continue
		}
		s.pending = append(s.pending, e)
	}

	// Component adds are structural changes, so they wait until the query is done.
	for _, e := range s.pending {
		s.zoomMap.Add(e, &components.TrackedZoomOnly{})
	}
	return len(s.pending)
}
