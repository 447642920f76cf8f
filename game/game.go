// Package game owns the fish world, spawns the school, and runs the tick pipeline.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Spawn bundles; base components are shared by the player and NPCs
	baseMapper *ecs.Map6[
		components.Fish,
		components.Position,
		components.Orientation,
		components.Velocity,
		components.Group,
		components.Separation,
	]
	npcMapper *ecs.Map5[
		components.Forceable,
		components.Friction,
		components.Cohesion,
		components.Alignment,
		components.Wander,
	]
	playerMapper *ecs.Map5[
		components.Cohesion,
		components.Alignment,
		components.Steerable,
		components.Tracked,
		components.Player,
	]

	// Queries for presentation and telemetry
	viewFilter     *ecs.Filter5[components.Fish, components.Position, components.Orientation, components.Velocity, components.Group]
	trackedFilter  *ecs.Filter2[components.Position, components.Tracked]
	zoomOnlyFilter *ecs.Filter2[components.Position, components.TrackedZoomOnly]
	playerMap      *ecs.Map[components.Player]
	posMap         *ecs.Map[components.Position]

	// Systems, in tick order
	steering *systems.SteeringSystem
	grouping *systems.GroupingEngine
	contacts *systems.ContactDetector
	track    *systems.TrackSystem
	forces   *systems.ForceSystem
	movement *systems.MovementSystem
	camera   *camera.Camera

	// External contact events waiting for the next grouping phase
	pendingContacts []systems.ContactStarted

	// Steering target; nil means the player holds still
	target *r3.Vec

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	cue CuePlayer

	// State
	player         ecs.Entity
	tick           int32
	simTime        float64
	paused         bool
	headless       bool
	stepsPerUpdate int
	nextFishID     uint32
	joined         bool // A fish joined the player's group on the last tick
	cues           int

	// Scratch buffers reused every tick
	trackedPos  []r3.Vec
	zoomOnlyPos []r3.Vec
}

// NewGame creates a game with default options.
func NewGame() *Game {
	return NewGameWithOptions(DefaultOptions())
}

// NewGameWithOptions creates a new game instance with the specified options.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		cfg:            cfg,
		world:          world,
		rng:            rng,
		seed:           opts.Seed,
		headless:       opts.Headless,
		stepsPerUpdate: stepsPerUpdate,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		cue:            opts.Cue,

		baseMapper: ecs.NewMap6[
			components.Fish,
			components.Position,
			components.Orientation,
			components.Velocity,
			components.Group,
			components.Separation,
		](world),
		npcMapper: ecs.NewMap5[
			components.Forceable,
			components.Friction,
			components.Cohesion,
			components.Alignment,
			components.Wander,
		](world),
		playerMapper: ecs.NewMap5[
			components.Cohesion,
			components.Alignment,
			components.Steerable,
			components.Tracked,
			components.Player,
		](world),

		viewFilter:     ecs.NewFilter5[components.Fish, components.Position, components.Orientation, components.Velocity, components.Group](world),
		trackedFilter:  ecs.NewFilter2[components.Position, components.Tracked](world),
		zoomOnlyFilter: ecs.NewFilter2[components.Position, components.TrackedZoomOnly](world),
		playerMap:      ecs.NewMap[components.Player](world),
		posMap:         ecs.NewMap[components.Position](world),
	}

	g.steering = systems.NewSteeringSystem(world, cfg.Steering.MaxSpeed)
	g.grouping = systems.NewGroupingEngine(world, cfg.Grouping.GroupDistance)
	g.contacts = systems.NewContactDetector(world, cfg.Derived.SensorRadius)
	g.track = systems.NewTrackSystem(world)
	g.forces = systems.NewForceSystem(world, systems.ForceParamsFromConfig(cfg), rng)
	g.movement = systems.NewMovementSystem(world, cfg.Forces.MaxSpeed, cfg.Physics.Epsilon)

	g.camera = camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.Camera.StartDistance)
	g.camera.DistanceScale = cfg.Camera.DistanceScale
	g.camera.MinDistance = cfg.Camera.MinDistance
	g.camera.Lerp = cfg.Camera.Lerp
	g.camera.MinZoom = cfg.Camera.MinZoom
	g.camera.MaxZoom = cfg.Camera.MaxZoom
	g.camera.SetZoom(cfg.Camera.Zoom)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.spawnInitialPopulation()

	return g
}

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// World returns the ECS world.
func (g *Game) World() *ecs.World {
	return g.world
}

// Camera returns the framing camera.
func (g *Game) Camera() *camera.Camera {
	return g.camera
}

// Player returns the player entity.
func (g *Game) Player() ecs.Entity {
	return g.player
}

// PlayerPosition returns the player's current position.
func (g *Game) PlayerPosition() r3.Vec {
	if !g.world.Alive(g.player) {
		return r3.Vec{}
	}
	return g.posMap.Get(g.player).Vec
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns the simulated seconds elapsed.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// TogglePause flips the paused state.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// StepsPerUpdate returns how many steps run per graphical frame.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the steps per graphical frame, clamped to 1-10.
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(1, min(n, 10))
}

// SetTarget sets the steering target. Nil stops the player.
func (g *Game) SetTarget(target *r3.Vec) {
	if target == nil {
		g.target = nil
		return
	}
	t := *target
	g.target = &t
}

// Target returns the current steering target, if any.
func (g *Game) Target() (r3.Vec, bool) {
	if g.target == nil {
		return r3.Vec{}, false
	}
	return *g.target, true
}

// PointerTarget casts the pointer ray through a viewport point onto the
// steering plane and returns the hit.
func (g *Game) PointerTarget(sx, sy float64) (r3.Vec, bool) {
	origin, dir := g.camera.Ray(sx, sy)
	return systems.CursorOnPlane(systems.Ray{Origin: origin, Direction: dir}, g.cfg.Steering.PlaneZ, g.cfg.Physics.Epsilon)
}

// InjectContacts queues contact events from an external collision source.
// They are applied in the grouping phase of the next tick.
func (g *Game) InjectContacts(events ...systems.ContactStarted) {
	g.pendingContacts = append(g.pendingContacts, events...)
}

// ForceParams returns the force constants in use.
func (g *Game) ForceParams() systems.ForceParams {
	return g.forces.Params()
}

// SetForceParams replaces the tunable constants at runtime. A non-positive
// group distance keeps the current one.
func (g *Game) SetForceParams(p systems.ForceParams) {
	prev := g.forces.Params()
	if p.GroupDistance <= 0 {
		p.GroupDistance = prev.GroupDistance
	}
	if p.GroupDistance != prev.GroupDistance {
		g.grouping.SetGroupDistance(p.GroupDistance)
		g.contacts.SetSensorRadius(p.GroupDistance / 2)
	}
	g.forces.SetParams(p)
	g.movement.SetMaxSpeed(p.MaxSpeed)
}

// Joined reports whether a fish joined the player's group on the last tick.
func (g *Game) Joined() bool {
	return g.joined
}

// CuesPlayed returns how many join cues have been started.
func (g *Game) CuesPlayed() int {
	return g.cues
}

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame marks a rendered frame for FPS tracking.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Unload flushes and closes output files.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
