package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// RandomUnit returns a value uniformly distributed in [0, 1).
func RandomUnit(rng *rand.Rand) float64 {
	return rng.Float64()
}

// RandomDirection returns a unit vector in the XY plane with a uniformly random angle.
func RandomDirection(rng *rand.Rand) r3.Vec {
	a := 2 * math.Pi * rng.Float64()
	return r3.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// RandomInDisc returns a point uniformly distributed in the XY disc of the given radius.
func RandomInDisc(rng *rand.Rand, radius float64) r3.Vec {
	r := radius * math.Sqrt(rng.Float64())
	return r3.Scale(r, RandomDirection(rng))
}
