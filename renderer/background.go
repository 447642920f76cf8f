package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BackgroundRenderer paints the open water behind the scene as a vertical
// gradient that darkens as the camera climbs away from the school.
type BackgroundRenderer struct {
	screenW, screenH int32
	surface, deep    rl.Color
}

// NewBackgroundRenderer creates a background for the given screen size.
func NewBackgroundRenderer(screenW, screenH int32) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		surface: rl.Color{R: 24, G: 92, B: 124, A: 255},
		deep:    rl.Color{R: 4, G: 18, B: 34, A: 255},
	}
}

// Resize updates the screen dimensions.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// depthFactor maps camera height to [0, 1]; 0 is close to the school.
func depthFactor(cameraDistance, minDistance float64) float32 {
	if minDistance <= 0 || cameraDistance <= minDistance {
		return 0
	}
	// Each doubling of height darkens by a quarter
	f := math.Log2(cameraDistance/minDistance) / 4
	return float32(math.Min(f, 1))
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// Draw fills the screen. Call before BeginMode3D.
func (b *BackgroundRenderer) Draw(cameraDistance, minDistance float64) {
	t := depthFactor(cameraDistance, minDistance)
	top := lerpColor(b.surface, b.deep, t*0.6)
	bottom := lerpColor(b.surface, b.deep, 0.5+t*0.5)
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, top, bottom)
}
