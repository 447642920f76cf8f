// Package renderer draws the school in 3D with raylib and maps window input
// onto the game.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/game"
)

// Fish body dimensions in world units.
const (
	fishLength   = 1.6
	fishRadius   = 0.35
	tailLength   = 0.7
	tailSwing    = 0.35 // Peak sideways tail offset
	tailFreqBase = 6.0  // Tail beats per second at animation speed 1
)

var (
	colorPlayer = rl.Color{R: 255, G: 204, B: 64, A: 255}
	colorSchool = rl.Color{R: 255, G: 150, B: 90, A: 255}
	colorAlone  = rl.Color{R: 170, G: 185, B: 195, A: 255}
	colorTarget = rl.Color{R: 255, G: 80, B: 80, A: 255}
	colorGrid   = rl.Color{R: 120, G: 170, B: 190, A: 40}
)

// Layers selects the optional parts of the scene.
type Layers struct {
	GroupColors bool
	Wakes       bool
	Grid        bool
	Target      bool
	Headings    bool
	GroupRadius bool
}

// GroupColor returns the display color for a fish's group.
// Other schools get evenly spread hues keyed by group id.
func GroupColor(a game.AgentView) rl.Color {
	switch {
	case a.Player:
		return colorPlayer
	case !a.Grouped:
		return colorAlone
	case a.GroupID == 0:
		return colorSchool
	}
	hue := math.Mod(float64(a.GroupID)*137.508, 360)
	return rl.ColorFromHSV(float32(hue), 0.55, 0.95)
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// CameraFor builds the raylib camera for a frame. The world is Z-up and the
// camera looks straight down, so screen up is +Y.
func CameraFor(f game.Frame, fovY float64) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(f.CameraPosition),
		Target:     vec3(f.CameraTarget),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       float32(fovY),
		Projection: rl.CameraPerspective,
	}
}

// Scene draws frames with wakes and the background.
type Scene struct {
	background *BackgroundRenderer
	wakes      *WakeBuffer
	colors     map[uint32]rl.Color // Last color per fish id, for wakes

	FovY          float64
	MinDistance   float64 // Camera height treated as the surface for shading
	GroupDistance float64
}

// NewScene creates a scene for the given screen size.
func NewScene(screenW, screenH int32) *Scene {
	return &Scene{
		background:  NewBackgroundRenderer(screenW, screenH),
		wakes:       NewWakeBuffer(DefaultWakeLength),
		colors:      make(map[uint32]rl.Color),
		FovY:        45,
		MinDistance: 50,
	}
}

// Resize updates the screen dimensions.
func (s *Scene) Resize(screenW, screenH int32) {
	s.background.Resize(screenW, screenH)
}

// Draw renders one frame. Call between BeginDrawing and EndDrawing.
func (s *Scene) Draw(f game.Frame, layers Layers) {
	camDist := f.CameraPosition.Z - f.CameraTarget.Z
	s.background.Draw(camDist, s.MinDistance)

	s.wakes.Record(f)
	clear(s.colors)
	for _, a := range f.Agents {
		s.colors[a.ID] = s.agentColor(a, layers)
	}

	rl.BeginMode3D(CameraFor(f, s.FovY))

	if layers.Grid {
		drawGrid(f.CameraTarget, camDist)
	}
	if layers.Wakes {
		s.wakes.Draw(func(id uint32) rl.Color { return s.colors[id] })
	}

	var player *game.AgentView
	for i := range f.Agents {
		a := &f.Agents[i]
		if a.Player {
			player = a
		}
		drawFish(*a, f.SimTime, s.colors[a.ID])
		if layers.Headings {
			tip := r3.Add(a.Position, r3.Scale(fishLength*2, a.Forward))
			rl.DrawLine3D(vec3(a.Position), vec3(tip), rl.Green)
		}
	}

	if layers.GroupRadius && player != nil && s.GroupDistance > 0 {
		rl.DrawCircle3D(vec3(player.Position), float32(s.GroupDistance), rl.Vector3{X: 1}, 0, rl.Fade(colorPlayer, 0.5))
	}
	if layers.Target && f.Target != nil {
		drawTarget(*f.Target)
	}

	rl.EndMode3D()
}

func (s *Scene) agentColor(a game.AgentView, layers Layers) rl.Color {
	if !layers.GroupColors && !a.Player {
		return colorAlone
	}
	return GroupColor(a)
}

// tailOffset returns the sideways tail displacement at time t.
func tailOffset(animationSpeed, t float64) float64 {
	return tailSwing * math.Sin(2*math.Pi*tailFreqBase*animationSpeed*t)
}

// drawFish draws a tapered body along the heading and a beating tail.
func drawFish(a game.AgentView, t float64, color rl.Color) {
	fwd := a.Forward
	if r3.Norm2(fwd) == 0 {
		fwd = r3.Vec{X: 1}
	}
	head := r3.Add(a.Position, r3.Scale(fishLength/2, fwd))
	tail := r3.Sub(a.Position, r3.Scale(fishLength/2, fwd))

	rl.DrawCylinderEx(vec3(tail), vec3(head), fishRadius*0.4, fishRadius, 8, color)
	rl.DrawSphere(vec3(head), fishRadius, color)

	// Tail swings in the ground plane, perpendicular to the heading
	side := r3.Unit(r3.Cross(r3.Vec{Z: 1}, fwd))
	if math.IsNaN(side.X) {
		side = r3.Vec{Y: 1}
	}
	fin := r3.Add(r3.Sub(tail, r3.Scale(tailLength, fwd)), r3.Scale(tailOffset(a.AnimationSpeed, t), side))
	rl.DrawLine3D(vec3(tail), vec3(fin), color)
}

func drawTarget(p r3.Vec) {
	c := vec3(p)
	rl.DrawCircle3D(c, 1.2, rl.Vector3{X: 1}, 0, colorTarget)
	rl.DrawLine3D(rl.Vector3{X: c.X - 0.8, Y: c.Y, Z: c.Z}, rl.Vector3{X: c.X + 0.8, Y: c.Y, Z: c.Z}, colorTarget)
	rl.DrawLine3D(rl.Vector3{X: c.X, Y: c.Y - 0.8, Z: c.Z}, rl.Vector3{X: c.X, Y: c.Y + 0.8, Z: c.Z}, colorTarget)
}

// gridSpacing picks a line spacing that keeps roughly twenty lines across
// the view at the given camera height.
func gridSpacing(camDist float64) float64 {
	if camDist <= 0 {
		return 1
	}
	raw := camDist / 20
	step := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5} {
		if step*m >= raw {
			return step * m
		}
	}
	return step * 10
}

// drawGrid draws the steering plane as a line grid around center.
func drawGrid(center r3.Vec, camDist float64) {
	spacing := gridSpacing(camDist)
	half := 30 * spacing
	cx := math.Round(center.X/spacing) * spacing
	cy := math.Round(center.Y/spacing) * spacing
	for i := -30; i <= 30; i++ {
		off := float64(i) * spacing
		rl.DrawLine3D(
			vec3(r3.Vec{X: cx + off, Y: cy - half}),
			vec3(r3.Vec{X: cx + off, Y: cy + half}),
			colorGrid,
		)
		rl.DrawLine3D(
			vec3(r3.Vec{X: cx - half, Y: cy + off}),
			vec3(r3.Vec{X: cx + half, Y: cy + off}),
			colorGrid,
		)
	}
}
