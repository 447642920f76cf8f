package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/game"
)

// Controller maps raylib window input onto the game.
type Controller struct {
	game          *game.Game
	width, height int32
	steering      bool
}

// NewController creates a controller for a window of the given size.
func NewController(g *game.Game, width, height int32) *Controller {
	return &Controller{game: g, width: width, height: height}
}

// Resized reports whether the window size changed since the last call and
// propagates the new size to the game camera.
func (c *Controller) Resized() (w, h int32, changed bool) {
	if !rl.IsWindowResized() {
		return c.width, c.height, false
	}
	w, h = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == c.width && h == c.height {
		return w, h, false
	}
	c.width, c.height = w, h
	c.game.Camera().Resize(float64(w), float64(h))
	return w, h, true
}

// Update processes one frame of input. blockPointer is true when the cursor
// is over a UI panel and must not steer.
func (c *Controller) Update(blockPointer bool) {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		c.game.TogglePause()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		c.game.SetStepsPerUpdate(c.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		c.game.SetStepsPerUpdate(c.game.StepsPerUpdate() + 1)
	}

	c.handleSteering(blockPointer)
	c.handleZoom()
}

// handleSteering points the player at the cursor while the left button is held.
func (c *Controller) handleSteering(blockPointer bool) {
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && (c.steering || !blockPointer) {
		mouse := rl.GetMousePosition()
		if target, ok := c.game.PointerTarget(float64(mouse.X), float64(mouse.Y)); ok {
			c.game.SetTarget(&target)
			c.steering = true
			return
		}
	}
	if c.steering {
		c.game.SetTarget(nil)
		c.steering = false
	}
}

func (c *Controller) handleZoom() {
	cam := c.game.Camera()

	// Wheel up brings the camera closer
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.ZoomBy(1 - float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
