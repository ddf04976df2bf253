package memscene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

var ErrSingularMatrix = errors.New("singular world matrix")

// Face is one polygon of a MeshData.
type Face struct {
	Vertices []int
	Normals  []int
	UVs      []int // into the first UV set; empty when unmapped
	Shader   int   // into MeshData.Shaders; negative for none
}

// MeshData is the raw content of a mesh shape. Points and normals are in
// object space.
type MeshData struct {
	Points   []mgl64.Vec3
	Normals  []mgl64.Vec3
	UVSets   [][]mgl64.Vec2
	Faces    []Face
	Shaders  []scene.Shader
	Opposite bool
	Skin     *scene.Skin
}

// Mesh is a mesh shape node.
type Mesh struct {
	node
	data MeshData
}

// Parent returns the owning transform. A mesh created directly under the
// world has no parent and returns nil.
func (m *Mesh) Parent() scene.Node {
	if m.parent == nil {
		return nil
	}
	return m.parent
}

func (m *Mesh) world() mgl64.Mat4 {
	if m.parent == nil {
		return mgl64.Ident4()
	}
	return m.parent.worldAt(m.parent.scene.clock.now)
}

// Points returns the mesh points in the requested space.
func (m *Mesh) Points(space scene.Space) ([]mgl64.Vec3, error) {
	out := make([]mgl64.Vec3, len(m.data.Points))
	if space == scene.Object {
		copy(out, m.data.Points)
		return out, nil
	}
	w := m.world()
	for i, p := range m.data.Points {
		out[i] = mgl64.TransformCoordinate(p, w)
	}
	return out, nil
}

// Normals returns the mesh normals in the requested space. World space
// normals go through the inverse transpose of the world matrix.
func (m *Mesh) Normals(space scene.Space) ([]mgl64.Vec3, error) {
	out := make([]mgl64.Vec3, len(m.data.Normals))
	if space == scene.Object {
		copy(out, m.data.Normals)
		return out, nil
	}
	linear := m.world().Mat3()
	if linear.Det() == 0 {
		return nil, ErrSingularMatrix
	}
	nm := linear.Inv().Transpose()
	for i, n := range m.data.Normals {
		out[i] = nm.Mul3x1(n).Normalize()
	}
	return out, nil
}

// UVSets returns copies of every UV set.
func (m *Mesh) UVSets() ([][]mgl64.Vec2, error) {
	out := make([][]mgl64.Vec2, len(m.data.UVSets))
	for i, set := range m.data.UVSets {
		out[i] = append([]mgl64.Vec2(nil), set...)
	}
	return out, nil
}

// Polygons returns every face with a fan triangulation.
func (m *Mesh) Polygons() ([]scene.Polygon, error) {
	out := make([]scene.Polygon, len(m.data.Faces))
	for i, f := range m.data.Faces {
		if err := m.checkFace(f); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		p := scene.Polygon{
			Vertices: append([]int(nil), f.Vertices...),
			Normals:  append([]int(nil), f.Normals...),
			UVs:      append([]int(nil), f.UVs...),
		}
		for k := 1; k+1 < len(f.Vertices); k++ {
			p.Triangles = append(p.Triangles, f.Vertices[0], f.Vertices[k], f.Vertices[k+1])
		}
		out[i] = p
	}
	return out, nil
}

func (m *Mesh) checkFace(f Face) error {
	if len(f.Normals) != len(f.Vertices) {
		return fmt.Errorf("%d normals for %d corners", len(f.Normals), len(f.Vertices))
	}
	if len(f.UVs) != 0 && len(f.UVs) != len(f.Vertices) {
		return fmt.Errorf("%d uvs for %d corners", len(f.UVs), len(f.Vertices))
	}
	for _, v := range f.Vertices {
		if v < 0 || v >= len(m.data.Points) {
			return fmt.Errorf("%w: point %d", ErrBadIndex, v)
		}
	}
	for _, n := range f.Normals {
		if n < 0 || n >= len(m.data.Normals) {
			return fmt.Errorf("%w: normal %d", ErrBadIndex, n)
		}
	}
	if len(f.UVs) > 0 {
		if len(m.data.UVSets) == 0 {
			return fmt.Errorf("%w: face has uvs but mesh has no uv set", ErrBadIndex)
		}
		for _, uv := range f.UVs {
			if uv < 0 || uv >= len(m.data.UVSets[0]) {
				return fmt.Errorf("%w: uv %d", ErrBadIndex, uv)
			}
		}
	}
	return nil
}

// Shaders returns the connected shaders and the per-face assignment.
func (m *Mesh) Shaders() ([]scene.Shader, []int, error) {
	faceShader := make([]int, len(m.data.Faces))
	for i, f := range m.data.Faces {
		if f.Shader >= len(m.data.Shaders) {
			return nil, nil, fmt.Errorf("face %d: %w: shader %d", i, ErrBadIndex, f.Shader)
		}
		faceShader[i] = f.Shader
	}
	return append([]scene.Shader(nil), m.data.Shaders...), faceShader, nil
}

// Opposite reports the orientation flag.
func (m *Mesh) Opposite() bool {
	return m.data.Opposite
}

// Skin returns the skin cluster, or nil.
func (m *Mesh) Skin() (*scene.Skin, error) {
	if m.data.Skin == nil {
		return nil, nil
	}
	s := &scene.Skin{Joints: append([]string(nil), m.data.Skin.Joints...)}
	for _, row := range m.data.Skin.Weights {
		s.Weights = append(s.Weights, append([]float64(nil), row...))
	}
	return s, nil
}
