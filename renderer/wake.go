package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/game"
)

// DefaultWakeLength is how many past positions each wake keeps.
const DefaultWakeLength = 24

// wake is a ring of recent positions for one fish.
type wake struct {
	points []r3.Vec
	head   int // Index of the newest point
	n      int
	seen   int32 // Tick the fish was last recorded
}

// WakeBuffer keeps short position histories keyed by fish id.
type WakeBuffer struct {
	length int
	wakes  map[uint32]*wake
}

// NewWakeBuffer creates a buffer that remembers length positions per fish.
func NewWakeBuffer(length int) *WakeBuffer {
	if length < 2 {
		length = 2
	}
	return &WakeBuffer{length: length, wakes: make(map[uint32]*wake)}
}

// Record appends every agent's position and forgets fish missing from f.
func (b *WakeBuffer) Record(f game.Frame) {
	for _, a := range f.Agents {
		w, ok := b.wakes[a.ID]
		if !ok {
			w = &wake{points: make([]r3.Vec, b.length), head: -1}
			b.wakes[a.ID] = w
		}
		// Paused frames repeat the last position
		if w.n > 0 && w.points[w.head] == a.Position {
			w.seen = f.Tick
			continue
		}
		w.head = (w.head + 1) % b.length
		w.points[w.head] = a.Position
		if w.n < b.length {
			w.n++
		}
		w.seen = f.Tick
	}
	for id, w := range b.wakes {
		if w.seen != f.Tick {
			delete(b.wakes, id)
		}
	}
}

// Points returns the wake of a fish, newest first.
func (b *WakeBuffer) Points(id uint32) []r3.Vec {
	w, ok := b.wakes[id]
	if !ok {
		return nil
	}
	out := make([]r3.Vec, w.n)
	for i := 0; i < w.n; i++ {
		out[i] = w.points[(w.head-i+b.length)%b.length]
	}
	return out
}

// Len returns how many fish have a wake.
func (b *WakeBuffer) Len() int {
	return len(b.wakes)
}

// Reset forgets every wake.
func (b *WakeBuffer) Reset() {
	clear(b.wakes)
}

// wakeFade returns the alpha multiplier for segment i of n.
// Quadratic falloff toward the tail.
func wakeFade(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	f := 1 - float32(i+1)/float32(n)
	return f * f
}

// Draw renders every wake as fading segments with additive blending.
// Must be called inside BeginMode3D.
func (b *WakeBuffer) Draw(tint func(id uint32) rl.Color) {
	rl.BeginBlendMode(rl.BlendAdditive)
	for id, w := range b.wakes {
		if w.n < 2 {
			continue
		}
		base := tint(id)
		for i := 0; i < w.n-1; i++ {
			alpha := float32(base.A) * 0.6 * wakeFade(i, w.n)
			if alpha < 1 {
				continue
			}
			from := w.points[(w.head-i+b.length)%b.length]
			to := w.points[(w.head-i-1+b.length)%b.length]
			c := base
			c.A = uint8(alpha)
			rl.DrawLine3D(vec3(from), vec3(to), c)
		}
	}
	rl.EndBlendMode()
}
