package components

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// WorldUp is the fixed up axis used when orienting agents.
var WorldUp = r3.Vec{Z: 1}

// Orientation is an agent's rotation stored as an orthonormal basis.
// Back points opposite to the facing direction.
type Orientation struct {
	Right, Up, Back r3.Vec
}

// IdentityOrientation returns the unrotated basis.
func IdentityOrientation() Orientation {
	return Orientation{
		Right: r3.Vec{X: 1},
		Up:    r3.Vec{Y: 1},
		Back:  r3.Vec{Z: 1},
	}
}

// Forward returns the facing direction.
func (o Orientation) Forward() r3.Vec {
	return r3.Scale(-1, o.Back)
}

// LookTo orients the basis to face dir with the given up vector.
// Returns false and leaves the basis unchanged when dir is zero or parallel to up.
func (o *Orientation) LookTo(dir, up r3.Vec, epsilon float64) bool {
	if r3.Norm(dir) <= epsilon {
		return false
	}
	back := r3.Unit(r3.Scale(-1, dir))
	right := r3.Cross(up, back)
	if r3.Norm(right) <= epsilon {
		return false
	}
	right = r3.Unit(right)
	o.Right = right
	o.Up = r3.Cross(back, right)
	o.Back = back
	return true
}

// Quat converts the basis to a unit quaternion.
func (o Orientation) Quat() quat.Number {
	// Rotation matrix columns are Right, Up, Back.
	m00, m01, m02 := o.Right.X, o.Up.X, o.Back.X
	m10, m11, m12 := o.Right.Y, o.Up.Y, o.Back.Y
	m20, m21, m22 := o.Right.Z, o.Up.Z, o.Back.Z

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return quat.Scale(1/quat.Abs(q), q)
}
