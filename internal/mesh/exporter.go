package mesh

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/internal/material"
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
	"github.com/Faultbox/redux-exporter/pkg/miniball"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
	"github.com/Faultbox/redux-exporter/pkg/vcache"
)

// Animated reports whether a transform, by pipe-stripped path name, has
// more than one keyframe.
type Animated interface {
	IsAnimated(name string) bool
}

// Sink receives every sub-mesh exactly as it is written to the container.
type Sink interface {
	AddMesh(name, parent, materialName string, shader scene.Shader, g *Geometry) error
}

// Options tunes mesh export.
type Options struct {
	OptimizeVertexCache bool
	// CacheSize is the simulated FIFO depth. Zero means
	// vcache.DefaultCacheSize.
	CacheSize int
}

// Exporter writes Mesh chunks for the meshes of one export run.
type Exporter struct {
	w         *chunkio.Writer
	animated  Animated
	names     *Names
	materials *material.Library
	sink      Sink
	log       *zap.Logger
	opts      Options
}

// NewExporter creates a mesh exporter writing into w. Sub-mesh names are
// drawn from names and material uses recorded in materials.
func NewExporter(w *chunkio.Writer, animated Animated, names *Names, materials *material.Library, log *zap.Logger, opts Options) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = vcache.DefaultCacheSize
	}
	return &Exporter{
		w:         w,
		animated:  animated,
		names:     names,
		materials: materials,
		log:       log,
		opts:      opts,
	}
}

// SetSink registers a consumer for written sub-meshes.
func (e *Exporter) SetSink(s Sink) {
	e.sink = s
}

// Export reduces one mesh and writes a Mesh chunk per non-empty sub-mesh.
// Host query failures are returned as *scene.QueryError; any other error
// means the container may be incomplete.
func (e *Exporter) Export(mesh scene.Mesh) error {
	fullPath := mesh.FullPathName()
	path := scene.StripPipes(fullPath)
	parentName := ""
	if p := mesh.Parent(); p != nil {
		parentName = scene.StripPipes(p.FullPathName())
	}
	log := e.log.With(zap.String("mesh", path))

	space := scene.World
	if e.animated != nil && e.animated.IsAnimated(parentName) {
		space = scene.Object
	}

	points, err := mesh.Points(space)
	if err != nil {
		return scene.Query("points", fullPath, err)
	}
	normals, err := mesh.Normals(space)
	if err != nil {
		return scene.Query("normals", fullPath, err)
	}
	uvSets, err := mesh.UVSets()
	if err != nil {
		return scene.Query("uv sets", fullPath, err)
	}
	skin, err := mesh.Skin()
	if err != nil {
		return scene.Query("skin", fullPath, err)
	}
	if err := checkSkin(skin); err != nil {
		return scene.Query("skin", fullPath, err)
	}
	polys, err := mesh.Polygons()
	if err != nil {
		return scene.Query("polygons", fullPath, err)
	}
	shaders, faceShader, err := mesh.Shaders()
	if err != nil {
		return scene.Query("shaders", fullPath, err)
	}

	subs, unassigned, err := Partition(polys, shaders, faceShader)
	if err != nil {
		if errors.Is(err, ErrShaderIndex) {
			return scene.Query("shaders", fullPath, err)
		}
		return fmt.Errorf("mesh %s: %w", path, err)
	}
	if unassigned > 0 {
		log.Warn("Faces without shader left out", zap.Int("faces", unassigned))
	}

	found := false
	for _, sub := range subs {
		if sub.TriangleCount() > 0 {
			found = true
			break
		}
	}
	if !found {
		log.Info("Skipping mesh, no triangles found")
		return nil
	}

	raw := NewRaw(points, normals, uvSets)
	opposite := mesh.Opposite()
	log.Debug("Exporting mesh",
		zap.Stringer("space", space),
		zap.Bool("opposite", opposite),
		zap.Int("submeshes", len(subs)))

	index := 0
	for _, sub := range subs {
		if sub.TriangleCount() == 0 {
			continue
		}
		name := e.names.Unique(scene.Sanitize(fmt.Sprintf("%s_%d", path, index)))
		index++

		materialName := e.materials.Add(name, sub.Shader)
		g := Reduce(raw, sub, opposite)
		if !g.finite() {
			log.Warn("Sub-mesh has non-finite vertex data", zap.String("submesh", name))
		}
		log.Info("Vertex count",
			zap.String("submesh", name),
			zap.Int("before", sub.VertexCount()),
			zap.Int("after", len(g.Vertices)))

		e.optimize(log.With(zap.String("submesh", name)), g)

		if err := e.writeMesh(name, parentName, g, skin); err != nil {
			return fmt.Errorf("writing mesh %s: %w", name, err)
		}
		if e.sink != nil {
			if err := e.sink.AddMesh(name, parentName, materialName, sub.Shader, g); err != nil {
				return fmt.Errorf("mesh sink %s: %w", name, err)
			}
		}
	}
	return nil
}

// optimize reorders g's triangles for the vertex cache. Failure keeps the
// original order.
func (e *Exporter) optimize(log *zap.Logger, g *Geometry) {
	before := vcache.MissCount(g.Indices, e.opts.CacheSize)
	if !e.opts.OptimizeVertexCache {
		log.Debug("Vertex cache optimization disabled", zap.Int("misses", before))
		return
	}
	if err := vcache.OptimizeCache(g.Indices, len(g.Vertices), e.opts.CacheSize); err != nil {
		log.Warn("Vertex cache optimization failed", zap.Error(err))
		return
	}
	after := vcache.MissCount(g.Indices, e.opts.CacheSize)
	log.Info("Vertex cache misses", zap.Int("before", before), zap.Int("after", after))
}

func (e *Exporter) writeMesh(name, parent string, g *Geometry, skin *scene.Skin) error {
	w := e.w
	return w.Chunk(rdx.TagMesh, func() error {
		if err := w.WriteString(name); err != nil {
			return err
		}
		if err := w.WriteString(parent); err != nil {
			return err
		}

		decl := rdx.Declaration(g.HasUV)
		if err := w.WriteInt32(int32(len(decl))); err != nil {
			return err
		}
		for _, el := range decl {
			if err := w.WriteString(el.Semantic); err != nil {
				return err
			}
			fields := [4]int32{el.SemanticIndex, int32(el.Format), el.InputSlot, el.Offset}
			if err := w.WriteValue(fields); err != nil {
				return err
			}
		}

		if err := writeBuffer(w, len(g.Vertices), rdx.Stride(decl), g.Floats()); err != nil {
			return err
		}
		if err := writeBuffer(w, len(g.Indices), 4, g.Indices); err != nil {
			return err
		}

		sphere := miniball.Compute(g.Positions())
		if err := w.WriteValue(math.Vec3From64(sphere.Center)); err != nil {
			return err
		}
		if err := w.WriteFloat32(float32(sphere.Radius)); err != nil {
			return err
		}

		if skin != nil {
			return writeSkin(w, skin, g)
		}
		return nil
	})
}

func writeBuffer(w *chunkio.Writer, count int, stride int32, data any) error {
	if err := w.WriteInt32(int32(count)); err != nil {
		return err
	}
	if err := w.WriteInt32(stride); err != nil {
		return err
	}
	return w.WriteValue(data)
}

// checkSkin rejects weight rows naming more bones than the skin has joints.
func checkSkin(skin *scene.Skin) error {
	if skin == nil {
		return nil
	}
	for point, row := range skin.Weights {
		if len(row) > len(skin.Joints) {
			return fmt.Errorf("point %d has %d weights for %d joints", point, len(row), len(skin.Joints))
		}
	}
	return nil
}

// writeSkin emits the nested Skin chunk. Influences follow the first raw
// point behind each output vertex; zero weights are left out.
func writeSkin(w *chunkio.Writer, skin *scene.Skin, g *Geometry) error {
	return w.Chunk(rdx.TagSkin, func() error {
		if err := w.WriteUint32(uint32(len(skin.Joints))); err != nil {
			return err
		}
		for _, j := range skin.Joints {
			if err := w.WriteString(j); err != nil {
				return err
			}
		}
		if err := w.WriteUint32(uint32(len(g.Vertices))); err != nil {
			return err
		}
		for _, point := range g.Points {
			var influences []rdx.Influence
			if point >= 0 && point < len(skin.Weights) {
				for bone, weight := range skin.Weights[point] {
					if weight == 0 {
						continue
					}
					influences = append(influences, rdx.Influence{Bone: uint32(bone), Weight: float32(weight)})
				}
			}
			if err := w.WriteUint32(uint32(len(influences))); err != nil {
				return err
			}
			if len(influences) > 0 {
				if err := w.WriteValue(influences); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
