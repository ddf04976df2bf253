// Package anim samples animated transforms onto a shared time base and
// writes the Animation chunk.
package anim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/redux-exporter/pkg/math"
)

const (
	// FPS is the rate written to the container.
	FPS = 30
	// Intervals is the number of equal steps each keyed range is split into.
	Intervals = 30
)

// SampleTimes returns the times at which a transform is sampled. A
// transform without keys is sampled once at time 0. Otherwise the range
// spanned by its keys is split into Intervals equal steps; both ends are
// included and the last sample is exactly the last key time.
func SampleTimes(keyTimes []float64) []float64 {
	if len(keyTimes) == 0 {
		return []float64{0}
	}
	start, end := keyTimes[0], keyTimes[0]
	for _, t := range keyTimes[1:] {
		start = min(start, t)
		end = max(end, t)
	}
	if start == end {
		return []float64{start}
	}

	step := (end - start) / Intervals
	times := make([]float64, Intervals+1)
	for i := range Intervals {
		times[i] = start + float64(i)*step
	}
	times[Intervals] = end
	return times
}

// Decompose splits an affine matrix into translation, rotation and scale in
// the engine's convention: Z of translation and rotation is negated. A
// mirroring matrix gets a negative X scale.
func Decompose(m mgl64.Mat4) (translation math.Vec3, rotation math.Quat, scale math.Vec3) {
	var s mgl64.Vec3
	var rot mgl64.Mat4
	for i := range 3 {
		col := m.Col(i).Vec3()
		s[i] = col.Len()
		if s[i] == 0 {
			col = mgl64.Vec3{}
			col[i] = 1
		} else {
			col = col.Mul(1 / s[i])
		}
		rot.SetCol(i, col.Vec4(0))
	}
	if m.Mat3().Det() < 0 {
		s[0] = -s[0]
		rot.SetCol(0, rot.Col(0).Mul(-1))
	}
	rot.Set(3, 3, 1)

	q := mgl64.Mat4ToQuat(rot).Normalize()
	translation = math.Vec3From64(m.Col(3).Vec3()).FlipZ()
	rotation = math.QuatFrom64(q).FlipZ()
	scale = math.Vec3From64(s)
	return translation, rotation, scale
}
