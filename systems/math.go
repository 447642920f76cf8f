package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ClampLength scales v down so its length does not exceed maxLen.
// Vectors already within bounds are returned unchanged.
func ClampLength(v r3.Vec, maxLen float64) r3.Vec {
	n2 := r3.Norm2(v)
	if n2 <= maxLen*maxLen {
		return v
	}
	return r3.Scale(maxLen/r3.Norm(v), v)
}

// AnimationSpeed returns the swim animation playback speed for a velocity.
func AnimationSpeed(v r3.Vec) float64 {
	return 1 + r3.Norm(v)
}

// flat drops the Z component.
func flat(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y}
}
