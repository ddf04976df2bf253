package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// FlipV mirrors a texture coordinate vertically (v -> 1 - v).
func (v Vec2) FlipV() Vec2 {
	return Vec2{v.X, 1 - v.Y}
}

// Bits returns the IEEE-754 bit patterns of the components.
func (v Vec2) Bits() [2]uint32 {
	return [2]uint32{math.Float32bits(v.X), math.Float32bits(v.Y)}
}

// Compare orders vectors lexicographically by X, Y.
func (v Vec2) Compare(other Vec2) int {
	if c := compare(v.X, other.X); c != 0 {
		return c
	}
	return compare(v.Y, other.Y)
}
