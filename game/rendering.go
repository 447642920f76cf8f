package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/systems"
)

// AgentView is the presentation state of one fish.
type AgentView struct {
	ID             uint32  `json:"id"`
	Position       r3.Vec  `json:"position"`
	Forward        r3.Vec  `json:"forward"`
	Speed          float64 `json:"speed"`
	AnimationSpeed float64 `json:"animation_speed"`
	GroupID        uint32  `json:"group_id"`
	Grouped        bool    `json:"grouped"`
	Player         bool    `json:"player"`
}

// Frame is a read-only snapshot of everything a renderer needs for one frame.
type Frame struct {
	Tick            int32       `json:"tick"`
	SimTime         float64     `json:"sim_time"`
	Agents          []AgentView `json:"agents"`
	CameraPosition  r3.Vec      `json:"camera_position"`
	CameraTarget    r3.Vec      `json:"camera_target"`
	Target          *r3.Vec     `json:"target,omitempty"`
	Joined          bool        `json:"joined"`
	Groups          int         `json:"groups"`
	PlayerGroupSize int         `json:"player_group_size"`
	Ungrouped       int         `json:"ungrouped"`
}

// Frame captures the current world state for presentation.
func (g *Game) Frame() Frame {
	f := Frame{
		Tick:           g.tick,
		SimTime:        g.simTime,
		CameraPosition: g.camera.Position,
		CameraTarget:   g.camera.Target,
		Joined:         g.joined,
	}
	if g.target != nil {
		t := *g.target
		f.Target = &t
	}

	groups := make(map[components.GroupID]struct{})
	query := g.viewFilter.Query()
	for query.Next() {
		fish, pos, rot, vel, grp := query.Get()
		e := query.Entity()

		view := AgentView{
			ID:             fish.ID,
			Position:       pos.Vec,
			Forward:        rot.Forward(),
			Speed:          r3.Norm(vel.Vec),
			AnimationSpeed: systems.AnimationSpeed(vel.Vec),
			GroupID:        uint32(grp.ID),
			Grouped:        grp.Assigned,
			Player:         g.playerMap.Has(e),
		}
		f.Agents = append(f.Agents, view)

		if !grp.Assigned {
			f.Ungrouped++
			continue
		}
		groups[grp.ID] = struct{}{}
		if grp.IsPlayerGroup() {
			f.PlayerGroupSize++
		}
	}
	f.Groups = len(groups)
	return f
}
