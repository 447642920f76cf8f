// Package camera provides the framing camera that follows the player's school.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Defaults for a freshly created camera.
const (
	DefaultDistanceScale = 2.44948974278 // sqrt(6)
	DefaultMinDistance   = 50.0
	DefaultLerp          = 0.5
	DefaultFovY          = 45.0 // degrees
)

// Camera looks straight down the -Z axis at the school it frames.
// Each update eases its position toward a goal above the tracked centroid,
// high enough to fit the furthest tracked fish.
type Camera struct {
	Position r3.Vec
	Target   r3.Vec

	// Zoom scales the framing distance (1.0 = fit the school exactly)
	Zoom             float64
	MinZoom, MaxZoom float64

	DistanceScale float64
	MinDistance   float64
	Lerp          float64 // Fraction of the remaining distance covered per update

	// FovY is the vertical field of view in degrees
	FovY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64
}

// New creates a camera above the origin at the given height.
func New(viewportW, viewportH, startDistance float64) *Camera {
	return &Camera{
		Position:      r3.Vec{Z: startDistance},
		Zoom:          1.0,
		MinZoom:       0.25,
		MaxZoom:       4.0,
		DistanceScale: DefaultDistanceScale,
		MinDistance:   DefaultMinDistance,
		Lerp:          DefaultLerp,
		FovY:          DefaultFovY,
		ViewportW:     viewportW,
		ViewportH:     viewportH,
	}
}

// Framing summarises what the camera should fit in view.
type Framing struct {
	Centroid r3.Vec
	Furthest float64 // Largest distance from the centroid to any tracked fish
}

// Frame computes the centroid of tracked and the furthest distance from it
// over tracked and zoomOnly together. Returns false when tracked is empty.
func Frame(tracked, zoomOnly []r3.Vec) (Framing, bool) {
	if len(tracked) == 0 {
		return Framing{}, false
	}

	var sum r3.Vec
	for _, p := range tracked {
		sum = r3.Add(sum, p)
	}
	centroid := r3.Scale(1/float64(len(tracked)), sum)

	furthest := 0.0
	for _, set := range [][]r3.Vec{tracked, zoomOnly} {
		for _, p := range set {
			if d := r3.Norm(r3.Sub(p, centroid)); d > furthest {
				furthest = d
			}
		}
	}
	return Framing{Centroid: centroid, Furthest: furthest}, true
}

// Goal returns the position the camera eases toward for the given framing.
func (c *Camera) Goal(f Framing) r3.Vec {
	dist := c.Zoom * c.DistanceScale * f.Furthest
	if dist < c.MinDistance {
		dist = c.MinDistance
	}
	return r3.Vec{X: f.Centroid.X, Y: f.Centroid.Y, Z: dist}
}

// Update moves the camera part of the way toward the framing goal.
func (c *Camera) Update(f Framing) {
	goal := c.Goal(f)
	c.Position = r3.Add(c.Position, r3.Scale(c.Lerp, r3.Sub(goal, c.Position)))
	c.Target = r3.Vec{X: c.Position.X, Y: c.Position.Y}
}

// Distance returns the camera height above the ground plane.
func (c *Camera) Distance() float64 {
	return c.Position.Z
}

// halfHeight returns half the visible world height at the ground plane.
func (c *Camera) halfHeight() float64 {
	return c.Position.Z * math.Tan(c.FovY*math.Pi/360)
}

// WorldToScreen projects a ground-plane point onto the viewport.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64) {
	scale := (c.ViewportH / 2) / c.halfHeight()
	sx = c.ViewportW/2 + (p.X-c.Position.X)*scale
	sy = c.ViewportH/2 - (p.Y-c.Position.Y)*scale
	return sx, sy
}

// ScreenToWorld converts a viewport point to the ground-plane point under it.
func (c *Camera) ScreenToWorld(sx, sy float64) r3.Vec {
	scale := c.halfHeight() / (c.ViewportH / 2)
	return r3.Vec{
		X: c.Position.X + (sx-c.ViewportW/2)*scale,
		Y: c.Position.Y - (sy-c.ViewportH/2)*scale,
	}
}

// Ray returns the origin and direction of the pointer ray through a viewport point.
func (c *Camera) Ray(sx, sy float64) (origin, dir r3.Vec) {
	tanHalf := math.Tan(c.FovY * math.Pi / 360)
	return c.Position, r3.Vec{
		X: (sx - c.ViewportW/2) / (c.ViewportH / 2) * tanHalf,
		Y: -(sy - c.ViewportH/2) / (c.ViewportH / 2) * tanHalf,
		Z: -1,
	}
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset restores the default zoom.
func (c *Camera) Reset() {
	c.Zoom = 1.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
