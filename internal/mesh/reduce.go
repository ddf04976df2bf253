package mesh

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/redux-exporter/pkg/math"
)

// SuperVertex is an output vertex. Vertices are merged only when every
// component has the same bit pattern.
type SuperVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// Compare orders vertices lexicographically by position, normal, then UV.
func (v SuperVertex) Compare(other SuperVertex) int {
	if c := v.Position.Compare(other.Position); c != 0 {
		return c
	}
	if c := v.Normal.Compare(other.Normal); c != 0 {
		return c
	}
	return v.UV.Compare(other.UV)
}

// key is the exact bit pattern of a vertex.
type key [8]uint32

func (v SuperVertex) key() key {
	p, n, uv := v.Position.Bits(), v.Normal.Bits(), v.UV.Bits()
	return key{p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1]}
}

// Raw holds a mesh's attribute arrays converted to the engine convention:
// Z negated on positions and normals, V flipped on texture coordinates.
type Raw struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2 // first UV set
	HasUV     bool        // the mesh has at least one UV set
}

// NewRaw converts host arrays. Only the first UV set is kept.
func NewRaw(points, normals []mgl64.Vec3, uvSets [][]mgl64.Vec2) *Raw {
	r := &Raw{
		Positions: make([]math.Vec3, len(points)),
		Normals:   make([]math.Vec3, len(normals)),
		HasUV:     len(uvSets) > 0,
	}
	for i, p := range points {
		r.Positions[i] = math.Vec3From64(p).FlipZ()
	}
	for i, n := range normals {
		r.Normals[i] = math.Vec3From64(n).FlipZ()
	}
	if r.HasUV {
		r.UVs = make([]math.Vec2, len(uvSets[0]))
		for i, uv := range uvSets[0] {
			r.UVs[i] = math.Vec2{X: float32(uv[0]), Y: float32(uv[1])}.FlipV()
		}
	}
	return r
}

// Geometry is a reduced sub-mesh ready to be written.
type Geometry struct {
	Vertices []SuperVertex
	Indices  []uint32
	// Points holds, per output vertex, the raw point index of the first
	// corner that produced it.
	Points []int
	HasUV  bool
}

// Reduce merges the sub-mesh corners into unique vertices and builds the
// index list. Corner indices that fall outside the raw arrays read as zero.
// When opposite is set normals are negated and the triangle winding is
// kept; otherwise the winding is reversed.
func Reduce(raw *Raw, sub *SubMesh, opposite bool) *Geometry {
	normalScale := float32(1)
	if opposite {
		normalScale = -1
	}

	g := &Geometry{
		Vertices: make([]SuperVertex, 0, len(sub.vertices)),
		HasUV:    raw.HasUV,
	}
	remap := make([]uint32, len(sub.vertices))
	seen := make(map[key]uint32, len(sub.vertices))

	for i, c := range sub.vertices {
		var sv SuperVertex
		if c.position >= 0 && c.position < len(raw.Positions) {
			sv.Position = raw.Positions[c.position]
		}
		if c.normal.ok && c.normal.index >= 0 && c.normal.index < len(raw.Normals) {
			sv.Normal = raw.Normals[c.normal.index].Scale(normalScale)
		}
		if c.uv.ok && c.uv.index >= 0 && c.uv.index < len(raw.UVs) {
			sv.UV = raw.UVs[c.uv.index]
		}

		k := sv.key()
		idx, ok := seen[k]
		if !ok {
			idx = uint32(len(g.Vertices))
			seen[k] = idx
			g.Vertices = append(g.Vertices, sv)
			g.Points = append(g.Points, c.position)
		}
		remap[i] = idx
	}

	g.Indices = make([]uint32, 0, len(sub.triangles)*3)
	for _, t := range sub.triangles {
		if opposite {
			g.Indices = append(g.Indices, remap[t[0]], remap[t[1]], remap[t[2]])
		} else {
			g.Indices = append(g.Indices, remap[t[2]], remap[t[1]], remap[t[0]])
		}
	}
	return g
}

// Floats packs the vertices in declaration order: position, normal and,
// when present, UV.
func (g *Geometry) Floats() []float32 {
	stride := 6
	if g.HasUV {
		stride = 8
	}
	out := make([]float32, 0, len(g.Vertices)*stride)
	for _, v := range g.Vertices {
		out = append(out, v.Position.X, v.Position.Y, v.Position.Z, v.Normal.X, v.Normal.Y, v.Normal.Z)
		if g.HasUV {
			out = append(out, v.UV.X, v.UV.Y)
		}
	}
	return out
}

// Positions returns the vertex positions in double precision.
func (g *Geometry) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(g.Vertices))
	for i, v := range g.Vertices {
		out[i] = v.Position.To64()
	}
	return out
}

// finite reports whether every component of the geometry is a number.
func (g *Geometry) finite() bool {
	for _, f := range g.Floats() {
		if stdmath.IsNaN(float64(f)) || stdmath.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}
