// Package rdx defines the records of the exported asset container and
// decodes them back from a file.
//
// Top-level chunks appear in a fixed order: Hierarchy, Animation, zero or
// more Mesh chunks, zero or more Camera chunks.
package rdx

import (
	"errors"
	"fmt"

	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
)

// Chunk tags.
const (
	TagHierarchy chunkio.Tag = 1
	TagAnimation chunkio.Tag = 2
	TagMesh      chunkio.Tag = 3
	TagCamera    chunkio.Tag = 4
	TagSkin      chunkio.Tag = 5 // nested inside Mesh
)

// TagName returns a human-readable chunk tag name.
func TagName(tag chunkio.Tag) string {
	switch tag {
	case TagHierarchy:
		return "Hierarchy"
	case TagAnimation:
		return "Animation"
	case TagMesh:
		return "Mesh"
	case TagCamera:
		return "Camera"
	case TagSkin:
		return "Skin"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(tag))
	}
}

// Format is the wire format of a vertex element. Values match the DXGI
// enumeration used by the engine's input layouts.
type Format int32

const (
	FormatR32G32B32Float Format = 6
	FormatR32G32Float    Format = 16
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatR32G32B32Float:
		return "R32G32B32_FLOAT"
	case FormatR32G32Float:
		return "R32G32_FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(f))
	}
}

// Size returns the byte size of one element of the format.
func (f Format) Size() int32 {
	switch f {
	case FormatR32G32B32Float:
		return 12
	case FormatR32G32Float:
		return 8
	default:
		return 0
	}
}

// Semantic names used in vertex declarations.
const (
	SemanticPosition = "POSITION"
	SemanticNormal   = "NORMAL"
	SemanticTexCoord = "TEXCOORD"
)

// Element describes one vertex attribute in a declaration.
type Element struct {
	Semantic      string
	SemanticIndex int32
	Format        Format
	InputSlot     int32
	Offset        int32
}

// Declaration returns the vertex layout written for sub-meshes: position and
// normal, plus one texture coordinate channel when hasUV is set.
func Declaration(hasUV bool) []Element {
	decl := []Element{
		{Semantic: SemanticPosition, Format: FormatR32G32B32Float, Offset: 0},
		{Semantic: SemanticNormal, Format: FormatR32G32B32Float, Offset: 12},
	}
	if hasUV {
		decl = append(decl, Element{Semantic: SemanticTexCoord, Format: FormatR32G32Float, Offset: 24})
	}
	return decl
}

// Stride returns the vertex size implied by a declaration.
func Stride(decl []Element) int32 {
	var stride int32
	for _, e := range decl {
		if end := e.Offset + e.Format.Size(); end > stride {
			stride = end
		}
	}
	return stride
}

// Decoding errors.
var (
	ErrUnexpectedChunk = errors.New("unexpected chunk")
	ErrMissingChunk    = errors.New("missing required chunk")
	ErrBadLayout       = errors.New("inconsistent buffer layout")
)

// Node is one entry of the exported transform hierarchy.
type Node struct {
	Name     string
	Children []*Node
}

// Count returns the number of nodes in the subtree, including n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Key is one decomposed keyframe.
type Key struct {
	Time        float32
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// Track holds the keyframes of one transform.
type Track struct {
	Name string
	Keys []Key
}

// Animation is the decoded Animation chunk.
type Animation struct {
	FPS    uint32
	Start  float32 // seconds
	End    float32 // seconds
	Tracks []Track
}

// Track returns the track with the given name, or nil.
func (a *Animation) Track(name string) *Track {
	for i := range a.Tracks {
		if a.Tracks[i].Name == name {
			return &a.Tracks[i]
		}
	}
	return nil
}

// Influence binds a vertex to a joint.
type Influence struct {
	Bone   uint32
	Weight float32
}

// Skin is the optional skinning block of a mesh.
type Skin struct {
	Joints     []string
	Influences [][]Influence // per output vertex
}

// Mesh is one decoded Mesh chunk (a single sub-mesh).
type Mesh struct {
	Name         string
	Parent       string
	Elements     []Element
	VertexCount  int32
	VertexStride int32
	Vertices     []byte
	IndexCount   int32
	IndexStride  int32
	Indices      []byte
	Center       math.Vec3
	Radius       float32
	Skin         *Skin
}

// Camera is one decoded Camera chunk.
type Camera struct {
	Name    string
	Eye     math.Vec3
	ViewDir math.Vec3
	Up      math.Vec3
	Right   math.Vec3
	Aspect  float32
	HFov    float32
	VFov    float32
	Near    float32
	Far     float32
}

// File is a fully decoded container.
type File struct {
	Compression chunkio.Compression
	Hierarchy   *Node
	Animation   *Animation
	Meshes      []*Mesh
	Cameras     []*Camera
}

// Mesh returns the mesh with the given name, or nil.
func (f *File) Mesh(name string) *Mesh {
	for _, m := range f.Meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}
