package game

import (
	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/telemetry"
)

// Update advances the simulation by one graphical frame. frameTime is the
// wall-clock frame duration; it is clamped to physics.max_dt and split over
// the configured steps per update.
func (g *Game) Update(frameTime float64) {
	if g.paused {
		return
	}
	dt := min(frameTime, g.cfg.Physics.MaxDT)
	if dt <= 0 {
		return
	}
	dt /= float64(g.stepsPerUpdate)
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step(dt)
	}
}

// UpdateHeadless runs one simulation step with the fixed physics dt.
func (g *Game) UpdateHeadless() {
	g.Step(g.cfg.Physics.DT)
}

// Step runs a single tick of the pipeline with the given dt.
func (g *Game) Step(dt float64) {
	g.perfCollector.StartTick()

	// 1. Steering toward the pointer target
	g.perfCollector.StartPhase(telemetry.PhaseSteering)
	g.steering.Update(g.target)

	// 2. Grouping input
	g.perfCollector.StartPhase(telemetry.PhaseGrouping)
	g.updateGrouping()

	// 3. Merge resolution
	g.perfCollector.StartPhase(telemetry.PhaseMerge)
	g.grouping.ResolveMerges()

	// 4. Camera tracking of the player's school
	g.perfCollector.StartPhase(telemetry.PhaseTrack)
	g.track.Update()

	// 5. Force aggregation
	g.perfCollector.StartPhase(telemetry.PhaseForces)
	g.forces.Update()

	// 6. Integration
	g.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	g.movement.ApplyForces(dt)
	g.movement.Move(dt)

	// 7. Camera retarget
	g.perfCollector.StartPhase(telemetry.PhaseCamera)
	g.updateCamera()

	// 8. Join cue and telemetry
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.updateJoinCue()
	g.collector.RecordGrouping(g.grouping.TakeStats())

	g.tick++
	g.simTime += dt
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateGrouping feeds this tick's encounters to the grouping engine.
// Externally injected contacts are applied in either mode.
func (g *Game) updateGrouping() {
	if g.cfg.Grouping.Enabled {
		switch g.cfg.Grouping.Mode {
		case config.ModeContacts:
			g.pendingContacts = append(g.pendingContacts, g.contacts.Detect()...)
		default:
			g.grouping.DetectProximity()
		}
	}
	if len(g.pendingContacts) > 0 {
		g.grouping.ApplyContacts(g.pendingContacts)
		g.pendingContacts = g.pendingContacts[:0]
	}
}

// updateCamera eases the camera toward the tracked school. The camera holds
// its position while nothing is tracked.
func (g *Game) updateCamera() {
	g.trackedPos = g.trackedPos[:0]
	query := g.trackedFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		g.trackedPos = append(g.trackedPos, pos.Vec)
	}

	g.zoomOnlyPos = g.zoomOnlyPos[:0]
	zquery := g.zoomOnlyFilter.Query()
	for zquery.Next() {
		pos, _ := zquery.Get()
		g.zoomOnlyPos = append(g.zoomOnlyPos, pos.Vec)
	}

	framing, ok := camera.Frame(g.trackedPos, g.zoomOnlyPos)
	if !ok {
		return
	}
	g.camera.Update(framing)
}

// updateJoinCue plays one cue per tick in which any fish joined the player's group.
func (g *Game) updateJoinCue() {
	g.joined = g.grouping.TakeJoined() > 0
	if !g.joined {
		return
	}
	if g.cue != nil && g.cue.Play() {
		g.cues++
		g.collector.RecordCue()
	}
}
