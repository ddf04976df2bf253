package anim

import (
	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
)

// animationHeader is the fixed-size start of the Animation chunk.
type animationHeader struct {
	FPS        uint32
	Start, End float32
	TrackCount uint32
}

// Write emits the Animation chunk. Tracks are written in name order. A
// track with a single keyframe is written as the identity pose at that
// keyframe's time.
func (a *Animation) Write(w *chunkio.Writer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	return w.Chunk(rdx.TagAnimation, func() error {
		header := animationHeader{
			FPS:        FPS,
			Start:      float32(a.Start),
			End:        float32(a.End),
			TrackCount: uint32(len(a.tracks)),
		}
		if err := w.WriteValue(header); err != nil {
			return err
		}

		for _, name := range a.Names() {
			keys := a.tracks[name]
			if err := w.WriteString(name); err != nil {
				return err
			}
			if err := w.WriteUint32(uint32(len(keys))); err != nil {
				return err
			}

			if len(keys) == 1 {
				log.Debug("Exporting track as static", zap.String("track", name))
				static := rdx.Key{
					Time:     float32(keys[0].Time),
					Rotation: math.QuatIdentity(),
					Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
				}
				if err := w.WriteValue(static); err != nil {
					return err
				}
				continue
			}

			out := make([]rdx.Key, len(keys))
			for i, k := range keys {
				t, r, s := Decompose(k.Matrix)
				out[i] = rdx.Key{Time: float32(k.Time), Translation: t, Rotation: r, Scale: s}
			}
			if err := w.WriteValue(out); err != nil {
				return err
			}
		}
		return nil
	})
}
