package memscene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

// CameraData describes a camera shape in object space. A zero Right is
// derived from ViewDir x Up.
type CameraData struct {
	Eye     mgl64.Vec3
	ViewDir mgl64.Vec3
	Up      mgl64.Vec3
	Right   mgl64.Vec3
	Aspect  float64
	HFov    float64 // radians
	VFov    float64 // radians
	Near    float64
	Far     float64
}

// DefaultCamera returns a perspective camera at the origin looking down -Z.
func DefaultCamera() CameraData {
	return CameraData{
		ViewDir: mgl64.Vec3{0, 0, -1},
		Up:      mgl64.Vec3{0, 1, 0},
		Aspect:  1.5,
		HFov:    mgl64.DegToRad(54.43),
		VFov:    mgl64.DegToRad(37.85),
		Near:    0.1,
		Far:     10000,
	}
}

// Camera is a camera shape node.
type Camera struct {
	node
	data CameraData
}

// Camera returns the sampled camera values, named after the shape node.
func (c *Camera) Camera() (scene.Camera, error) {
	right := c.data.Right
	if right == (mgl64.Vec3{}) {
		right = c.data.ViewDir.Cross(c.data.Up)
	}
	return scene.Camera{
		Name:    c.name,
		Eye:     c.data.Eye,
		ViewDir: c.data.ViewDir,
		Up:      c.data.Up,
		Right:   right,
		Aspect:  c.data.Aspect,
		HFov:    c.data.HFov,
		VFov:    c.data.VFov,
		Near:    c.data.Near,
		Far:     c.data.Far,
	}, nil
}
