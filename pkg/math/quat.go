package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part, which is
// also the order they are serialized in.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFrom64 narrows a mathgl quaternion.
func QuatFrom64(q mgl64.Quat) Quat {
	return Quat{
		X: float32(q.V[0]),
		Y: float32(q.V[1]),
		Z: float32(q.V[2]),
		W: float32(q.W),
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// FlipZ negates the Z component, giving the (x, y, -z, w) layout the engine
// expects alongside Z-negated translations.
func (q Quat) FlipZ() Quat {
	return Quat{X: q.X, Y: q.Y, Z: -q.Z, W: q.W}
}
