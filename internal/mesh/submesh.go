// Package mesh reduces host polygon meshes to indexed, deduplicated vertex
// and index buffers and writes them as Mesh chunks.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

var (
	ErrTriangulation = errors.New("triangulation index not found in polygon")
	ErrShaderIndex   = errors.New("shader index out of range")
)

// ref is an optional index into a raw attribute array.
type ref struct {
	index int
	ok    bool
}

// vertex is one polygon corner as indices into the raw mesh arrays.
type vertex struct {
	position int
	normal   ref
	uv       ref
}

// Triangle holds three indices into a sub-mesh's vertex list.
type Triangle [3]uint32

// SubMesh is the share of a mesh drawn with one shader.
type SubMesh struct {
	Shader    scene.Shader
	vertices  []vertex
	triangles []Triangle
}

// TriangleCount returns the number of triangles in the sub-mesh.
func (s *SubMesh) TriangleCount() int {
	return len(s.triangles)
}

// VertexCount returns the number of corners before deduplication.
func (s *SubMesh) VertexCount() int {
	return len(s.vertices)
}

// Triangulate converts the host triangulation of a polygon, given as mesh
// point indices, into indices of the polygon's own corners. Each index
// resolves to the first corner using that point.
func Triangulate(p scene.Polygon) ([]Triangle, error) {
	if len(p.Triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrTriangulation, len(p.Triangles))
	}
	tris := make([]Triangle, 0, len(p.Triangles)/3)
	for i := 0; i < len(p.Triangles); i += 3 {
		var tri Triangle
		for j := 0; j < 3; j++ {
			point := p.Triangles[i+j]
			local := -1
			for k, v := range p.Vertices {
				if v == point {
					local = k
					break
				}
			}
			if local < 0 {
				return nil, fmt.Errorf("%w: point %d", ErrTriangulation, point)
			}
			tri[j] = uint32(local)
		}
		tris = append(tris, tri)
	}
	return tris, nil
}

// Partition splits polygons into one sub-mesh per connected shader.
// faceShader gives each polygon's shader; faces with a negative index have
// no shader and are left out. The returned count is the number of such
// faces. Only the first UV set is referenced.
func Partition(polys []scene.Polygon, shaders []scene.Shader, faceShader []int) ([]*SubMesh, int, error) {
	if len(faceShader) != len(polys) {
		return nil, 0, fmt.Errorf("%w: %d assignments for %d faces", ErrShaderIndex, len(faceShader), len(polys))
	}

	subs := make([]*SubMesh, len(shaders))
	for i := range shaders {
		subs[i] = &SubMesh{Shader: shaders[i]}
	}

	unassigned := 0
	for f, p := range polys {
		si := faceShader[f]
		if si < 0 {
			unassigned++
			continue
		}
		if si >= len(subs) {
			return nil, 0, fmt.Errorf("%w: face %d uses shader %d of %d", ErrShaderIndex, f, si, len(subs))
		}
		if err := subs[si].add(p); err != nil {
			return nil, 0, fmt.Errorf("face %d: %w", f, err)
		}
	}
	return subs, unassigned, nil
}

// add appends a polygon's corners and triangles, offsetting the polygon
// local triangle indices by the corners already present.
func (s *SubMesh) add(p scene.Polygon) error {
	tris, err := Triangulate(p)
	if err != nil {
		return err
	}

	offset := uint32(len(s.vertices))
	for _, tri := range tris {
		s.triangles = append(s.triangles, Triangle{tri[0] + offset, tri[1] + offset, tri[2] + offset})
	}

	for k, v := range p.Vertices {
		corner := vertex{position: v}
		if k < len(p.Normals) {
			corner.normal = ref{index: p.Normals[k], ok: true}
		}
		if k < len(p.UVs) {
			corner.uv = ref{index: p.UVs[k], ok: true}
		}
		s.vertices = append(s.vertices, corner)
	}
	return nil
}
