// Package math provides the float32 value types written into exported assets.
//
// Host data arrives in double precision (mathgl mgl64); everything that crosses
// into the container is narrowed to these types first.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec3From64 narrows a double precision vector.
func Vec3From64(v mgl64.Vec3) Vec3 {
	return Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// FlipZ negates the Z component, converting between right and left handed
// coordinate systems.
func (v Vec3) FlipZ() Vec3 {
	return Vec3{v.X, v.Y, -v.Z}
}

// To64 widens the vector to double precision.
func (v Vec3) To64() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Bits returns the IEEE-754 bit patterns of the components.
func (v Vec3) Bits() [3]uint32 {
	return [3]uint32{math.Float32bits(v.X), math.Float32bits(v.Y), math.Float32bits(v.Z)}
}

// Compare orders vectors lexicographically by X, Y, Z.
// It returns -1, 0 or +1.
func (v Vec3) Compare(other Vec3) int {
	if c := compare(v.X, other.X); c != 0 {
		return c
	}
	if c := compare(v.Y, other.Y); c != 0 {
		return c
	}
	return compare(v.Z, other.Z)
}

func compare(a, b float32) int {
	switch {
	case a < b:
		return -1
	case b < a:
		return 1
	default:
		return 0
	}
}
