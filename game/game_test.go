package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// testConfig loads the embedded defaults and applies mutate before deriving values.
func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
		if err := cfg.Prepare(); err != nil {
			t.Fatalf("preparing config: %v", err)
		}
	}
	return cfg
}

func noNPCs(cfg *config.Config) {
	cfg.Spawn.NPCCount = 0
}

type countingCue struct {
	plays int
}

func (c *countingCue) Play() bool {
	c.plays++
	return true
}

func findPlayer(t *testing.T, f Frame) AgentView {
	t.Helper()
	for _, a := range f.Agents {
		if a.Player {
			return a
		}
	}
	t.Fatal("no player in frame")
	return AgentView{}
}

func TestNewGameSpawnsPopulation(t *testing.T) {
	cfg := testConfig(t, nil)
	g := NewGameWithOptions(Options{Config: cfg, Seed: 1, Headless: true})
	defer g.Unload()

	f := g.Frame()
	if len(f.Agents) != cfg.Spawn.NPCCount+1 {
		t.Fatalf("expected %d fish, got %d", cfg.Spawn.NPCCount+1, len(f.Agents))
	}

	players := 0
	for _, a := range f.Agents {
		if a.Player {
			players++
			if !a.Grouped || a.GroupID != uint32(components.PlayerGroupID) {
				t.Errorf("player should start in group 0, got grouped=%v id=%d", a.Grouped, a.GroupID)
			}
			if a.Position != (r3.Vec{}) {
				t.Errorf("player should spawn at the origin, got %v", a.Position)
			}
			continue
		}
		if a.Grouped {
			t.Errorf("fish %d should start ungrouped", a.ID)
		}
		if r3.Norm(a.Position) > cfg.Spawn.Radius {
			t.Errorf("fish %d spawned outside the disc at %v", a.ID, a.Position)
		}
	}
	if players != 1 {
		t.Errorf("expected exactly one player, got %d", players)
	}
	if f.PlayerGroupSize != 1 || f.Ungrouped != cfg.Spawn.NPCCount {
		t.Errorf("unexpected group summary: player %d ungrouped %d", f.PlayerGroupSize, f.Ungrouped)
	}
}

func TestSpawnHeadings(t *testing.T) {
	cfg := testConfig(t, nil)
	g := NewGameWithOptions(Options{Config: cfg, Seed: 3, Headless: true})
	defer g.Unload()

	headings := make(map[[2]float64]bool)
	for _, a := range g.Frame().Agents {
		if a.Player {
			if a.Forward != (r3.Vec{Z: -1}) {
				t.Errorf("player should keep the identity heading, got %v", a.Forward)
			}
			continue
		}
		if math.Abs(a.Forward.Z) > 1e-9 {
			t.Errorf("fish %d heading %v leaves the plane", a.ID, a.Forward)
		}
		if math.Abs(r3.Norm(a.Forward)-1) > 1e-9 {
			t.Errorf("fish %d heading %v is not unit length", a.ID, a.Forward)
		}
		headings[[2]float64{math.Round(a.Forward.X * 1e6), math.Round(a.Forward.Y * 1e6)}] = true
	}
	if cfg.Spawn.NPCCount > 1 && len(headings) < cfg.Spawn.NPCCount/2 {
		t.Errorf("expected varied headings, got %d distinct among %d fish", len(headings), cfg.Spawn.NPCCount)
	}
}

func TestSteeringMovesPlayer(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg, Headless: true})

	g.SetTarget(&r3.Vec{X: 10})
	dt := cfg.Physics.DT
	g.Step(dt)

	p := findPlayer(t, g.Frame())
	if math.Abs(p.Position.X-10*dt) > 1e-9 || p.Position.Y != 0 {
		t.Errorf("expected player at (%v, 0), got %v", 10*dt, p.Position)
	}
	if math.Abs(p.Speed-10) > 1e-9 {
		t.Errorf("expected speed 10, got %v", p.Speed)
	}
	if math.Abs(p.Forward.X-1) > 1e-9 {
		t.Errorf("expected player facing +X, got %v", p.Forward)
	}

	// Far target: speed clamps to the steering max
	g.SetTarget(&r3.Vec{X: 1000, Y: 1000})
	g.Step(dt)
	p = findPlayer(t, g.Frame())
	if math.Abs(p.Speed-cfg.Steering.MaxSpeed) > 1e-9 {
		t.Errorf("expected steering speed %v, got %v", cfg.Steering.MaxSpeed, p.Speed)
	}

	// No target: player stops
	g.SetTarget(nil)
	g.Step(dt)
	if p = findPlayer(t, g.Frame()); p.Speed != 0 {
		t.Errorf("expected player to stop, got speed %v", p.Speed)
	}
}

func TestJoinPlaysOneCuePerTick(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	cue := &countingCue{}
	g := NewGameWithOptions(Options{Config: cfg, Headless: true, Cue: cue})

	// Two fish within group distance of the player join on the same tick
	g.SpawnNPC(r3.Vec{X: 5})
	g.SpawnNPC(r3.Vec{Y: -5})

	g.UpdateHeadless()
	if !g.Joined() {
		t.Fatal("expected a join on the first tick")
	}
	if cue.plays != 1 {
		t.Errorf("expected one cue for the tick, got %d", cue.plays)
	}
	if f := g.Frame(); f.PlayerGroupSize != 3 {
		t.Errorf("expected player school of 3, got %d", f.PlayerGroupSize)
	}

	// Already joined: no further cues
	g.UpdateHeadless()
	if g.Joined() || cue.plays != 1 {
		t.Errorf("expected no cue on the second tick, joined=%v plays=%d", g.Joined(), cue.plays)
	}
	if g.CuesPlayed() != 1 {
		t.Errorf("CuesPlayed = %d, want 1", g.CuesPlayed())
	}
}

func TestCameraFollowsPlayerSchool(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg, Headless: true})
	g.SpawnNPC(r3.Vec{X: 8})

	for i := 0; i < 120; i++ {
		g.UpdateHeadless()
	}

	cam := g.Camera()
	player := g.PlayerPosition()
	if math.Abs(cam.Position.X-player.X) > 1e-3 || math.Abs(cam.Position.Y-player.Y) > 1e-3 {
		t.Errorf("camera should pan over the player %v, got %v", player, cam.Position)
	}
	if cam.Position.Z < cfg.Camera.MinDistance-1e-6 {
		t.Errorf("camera below minimum distance: %v", cam.Position.Z)
	}
	if cam.Target.Z != 0 || cam.Target.X != cam.Position.X || cam.Target.Y != cam.Position.Y {
		t.Errorf("camera target should sit below the camera, got %v", cam.Target)
	}
}

func TestContactsMode(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Spawn.NPCCount = 0
		c.Grouping.Mode = config.ModeContacts
	})
	g := NewGameWithOptions(Options{Config: cfg, Headless: true})
	g.SpawnNPC(r3.Vec{X: 3})
	g.SpawnNPC(r3.Vec{X: 500})

	g.UpdateHeadless()
	f := g.Frame()
	if f.PlayerGroupSize != 2 {
		t.Errorf("expected overlapping fish to join the player, school size %d", f.PlayerGroupSize)
	}
	if f.Ungrouped != 1 {
		t.Errorf("expected the distant fish to stay alone, ungrouped %d", f.Ungrouped)
	}
}

func TestInjectContactsIgnoresDeadEntities(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg, Headless: true})
	a := g.SpawnNPC(r3.Vec{X: 1000})
	b := g.SpawnNPC(r3.Vec{X: 2000})
	g.World().RemoveEntity(b)

	g.InjectContacts(systems.ContactStarted{A: a, B: b})
	g.UpdateHeadless()
	if f := g.Frame(); f.Groups != 1 || f.Ungrouped != 1 {
		t.Fatalf("contact with a removed fish should be ignored, groups %d ungrouped %d", f.Groups, f.Ungrouped)
	}

	// Contacts need no proximity
	g.InjectContacts(systems.ContactStarted{A: a, B: g.Player()})
	g.UpdateHeadless()
	if f := g.Frame(); f.PlayerGroupSize != 2 {
		t.Errorf("expected injected contact to join the player, school size %d", f.PlayerGroupSize)
	}
}

func TestInvariantsOverLongRun(t *testing.T) {
	cfg := testConfig(t, nil)
	g := NewGameWithOptions(Options{Config: cfg, Seed: 7, Headless: true})

	lastGroup := make(map[uint32]AgentView)
	for i := 0; i < 600; i++ {
		if i%120 == 0 {
			g.SetTarget(&r3.Vec{X: float64(i%240) - 60, Y: 30})
		}
		g.UpdateHeadless()

		for _, a := range g.Frame().Agents {
			limit := cfg.Forces.MaxSpeed
			if a.Player {
				limit = cfg.Steering.MaxSpeed
				if !a.Grouped || a.GroupID != 0 {
					t.Fatalf("tick %d: player left group 0", g.Tick())
				}
			}
			if a.Speed > limit+1e-9 {
				t.Fatalf("tick %d: fish %d speed %v exceeds %v", g.Tick(), a.ID, a.Speed, limit)
			}

			prev, seen := lastGroup[a.ID]
			if seen && prev.Grouped {
				if !a.Grouped {
					t.Fatalf("tick %d: fish %d left its group", g.Tick(), a.ID)
				}
				if a.GroupID > prev.GroupID {
					t.Fatalf("tick %d: fish %d group id rose %d -> %d", g.Tick(), a.ID, prev.GroupID, a.GroupID)
				}
			}
			lastGroup[a.ID] = a
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	cfg := testConfig(t, nil)
	run := func() Frame {
		g := NewGameWithOptions(Options{Config: cfg, Seed: 99, Headless: true})
		for i := 0; i < 180; i++ {
			g.UpdateHeadless()
		}
		return g.Frame()
	}

	a, b := run(), run()
	if len(a.Agents) != len(b.Agents) {
		t.Fatalf("agent counts differ: %d vs %d", len(a.Agents), len(b.Agents))
	}
	for i := range a.Agents {
		if a.Agents[i] != b.Agents[i] {
			t.Fatalf("agent %d differs: %+v vs %+v", i, a.Agents[i], b.Agents[i])
		}
	}
}

func TestUpdateClampsFrameTime(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg, StepsPerUpdate: 2})

	g.Update(5.0)
	if g.Tick() != 2 {
		t.Errorf("expected 2 steps, got %d", g.Tick())
	}
	if math.Abs(g.SimTime()-cfg.Physics.MaxDT) > 1e-9 {
		t.Errorf("expected sim time clamped to %v, got %v", cfg.Physics.MaxDT, g.SimTime())
	}

	g.TogglePause()
	g.Update(0.016)
	if g.Tick() != 2 {
		t.Error("paused game should not advance")
	}
}

func TestPointerTargetCenter(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg})

	hit, ok := g.PointerTarget(float64(cfg.Screen.Width)/2, float64(cfg.Screen.Height)/2)
	if !ok {
		t.Fatal("expected the center ray to hit the plane")
	}
	if r3.Norm(hit) > 1e-9 {
		t.Errorf("expected hit at origin, got %v", hit)
	}
}

func TestTelemetryWindows(t *testing.T) {
	cfg := testConfig(t, nil)
	dir := filepath.Join(t.TempDir(), "out")

	var windows []telemetry.WindowStats
	g := NewGameWithOptions(Options{
		Config:         cfg,
		Headless:       true,
		StatsWindowSec: 0.5,
		OutputDir:      dir,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})

	for i := 0; i < 90; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	if len(windows) < 2 {
		t.Fatalf("expected at least 2 windows, got %d", len(windows))
	}
	if windows[0].Agents != cfg.Spawn.NPCCount+1 {
		t.Errorf("window agents = %d, want %d", windows[0].Agents, cfg.Spawn.NPCCount+1)
	}
	if windows[1].WindowStartTick != windows[0].WindowEndTick {
		t.Error("windows should be contiguous")
	}

	for _, name := range []string{telemetry.TelemetryFile, telemetry.PerfFile, telemetry.ConfigFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s in output dir: %v", name, err)
		}
	}
}

func TestSetForceParams(t *testing.T) {
	cfg := testConfig(t, noNPCs)
	g := NewGameWithOptions(Options{Config: cfg, Headless: true})
	g.SpawnNPC(r3.Vec{X: 100})

	p := g.ForceParams()
	p.Wander = 0
	p.MaxSpeed = 0
	g.SetForceParams(p)

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}
	for _, a := range g.Frame().Agents {
		if !a.Player && a.Speed != 0 {
			t.Errorf("max speed 0 should hold fish still, got %v", a.Speed)
		}
	}
}

func TestSetForceParamsGroupDistance(t *testing.T) {
	for _, mode := range []string{config.ModeProximity, config.ModeContacts} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Spawn.NPCCount = 0
				c.Grouping.Mode = mode
			})
			g := NewGameWithOptions(Options{Config: cfg, Headless: true})
			g.SpawnNPC(r3.Vec{X: 100})
			g.SpawnNPC(r3.Vec{X: 115})

			g.UpdateHeadless()
			if f := g.Frame(); f.Ungrouped != 2 {
				t.Fatalf("fish 15 apart should stay alone at distance %v, ungrouped %d", cfg.Grouping.GroupDistance, f.Ungrouped)
			}

			p := g.ForceParams()
			p.GroupDistance = 20
			g.SetForceParams(p)
			g.UpdateHeadless()
			if f := g.Frame(); f.Ungrouped != 0 {
				t.Errorf("fish 15 apart should group at distance 20, ungrouped %d", f.Ungrouped)
			}

			p.GroupDistance = 0
			g.SetForceParams(p)
			if got := g.ForceParams().GroupDistance; got != 20 {
				t.Errorf("non-positive distance should keep 20, got %v", got)
			}
		})
	}
}
