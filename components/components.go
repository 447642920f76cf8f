// Package components defines ECS components for the simulation.
package components

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Position represents an agent's world position.
type Position struct {
	r3.Vec
}

// Velocity represents an agent's velocity. Agents carrying it are moveable.
type Velocity struct {
	r3.Vec
}

// Forceable marks agents whose velocity is integrated from stored forces.
// The player lacks it; its velocity is owned by manual steering.
type Forceable struct{}

// Friction holds the drag force computed this tick.
type Friction struct {
	Force r3.Vec
}

// Cohesion holds the pull toward the group centroid computed this tick.
type Cohesion struct {
	Force r3.Vec
}

// Separation holds the accumulated pairwise repulsion computed this tick.
type Separation struct {
	Force r3.Vec
}

// Alignment holds the pull toward the group's mean velocity computed this tick.
type Alignment struct {
	Force r3.Vec
}

// Wander holds the random drift force computed this tick.
type Wander struct {
	Force r3.Vec
}

// Player marks the user-controlled fish.
type Player struct{}

// Steerable marks agents whose velocity follows the pointer target.
type Steerable struct{}

// Tracked marks agents the camera centres on.
type Tracked struct{}

// TrackedZoomOnly marks agents that widen the camera frame without moving its centre.
type TrackedZoomOnly struct{}

// Fish holds a stable per-agent identifier for presentation and telemetry.
type Fish struct {
	ID uint32
}
