package exporter

import (
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
)

// cameraBody is the fixed-size tail of a Camera chunk.
type cameraBody struct {
	Eye, ViewDir, Up, Right       math.Vec3
	Aspect, HFov, VFov, Near, Far float32
}

// writeCamera queries c and writes its Camera chunk. Vectors have Z
// negated. Nothing is written when the query fails.
func writeCamera(w *chunkio.Writer, c scene.CameraNode) error {
	cam, err := c.Camera()
	if err != nil {
		return scene.Query("camera", c.FullPathName(), err)
	}
	name := cam.Name
	if name == "" {
		name = scene.StripPipes(c.FullPathName())
	}

	body := cameraBody{
		Eye:     math.Vec3From64(cam.Eye).FlipZ(),
		ViewDir: math.Vec3From64(cam.ViewDir).FlipZ(),
		Up:      math.Vec3From64(cam.Up).FlipZ(),
		Right:   math.Vec3From64(cam.Right).FlipZ(),
		Aspect:  float32(cam.Aspect),
		HFov:    float32(cam.HFov),
		VFov:    float32(cam.VFov),
		Near:    float32(cam.Near),
		Far:     float32(cam.Far),
	}
	return w.Chunk(rdx.TagCamera, func() error {
		if err := w.WriteString(name); err != nil {
			return err
		}
		return w.WriteValue(body)
	})
}
