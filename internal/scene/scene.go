// Package scene defines the queries the exporter makes against a host
// authoring application's scene graph.
//
// A host binding implements these interfaces over its own handles. The
// exporter never keeps host handles beyond a single export run and only
// copies names and sampled values out of them.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Space selects the coordinate system geometry is sampled in.
type Space int

const (
	Object Space = iota
	World
)

// String returns the space name.
func (s Space) String() string {
	switch s {
	case Object:
		return "object"
	case World:
		return "world"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}

// Node is a DAG node. Full path names use '|' separators, as in "|group1|pCube1".
type Node interface {
	FullPathName() string
	Children() []Node
}

// Transform is a node that carries a local transformation and may be animated.
type Transform interface {
	Node

	// KeyTimes returns the time, in seconds, of every key on every animation
	// curve driving the transform's attributes. The result is unordered and
	// may contain duplicates. An unanimated transform returns no times.
	KeyTimes() ([]float64, error)

	// WorldMatrix evaluates the inclusive world matrix at the clock's
	// current time.
	WorldMatrix() (mgl64.Mat4, error)
}

// Polygon is one face of a mesh.
type Polygon struct {
	// Vertices are mesh point indices, one per corner.
	Vertices []int
	// Normals are indices into the mesh normal array, one per corner.
	Normals []int
	// UVs are indices into the first UV set, one per corner. Empty when the
	// face has no texture mapping.
	UVs []int
	// Triangles is the host triangulation of the face as mesh point
	// indices, three per triangle.
	Triangles []int
}

// Skin is the skin cluster bound to a mesh.
type Skin struct {
	Joints []string
	// Weights holds one row per mesh point, one column per joint.
	Weights [][]float64
}

// Mesh is a polygonal shape node.
type Mesh interface {
	Node

	// Parent returns the transform the shape hangs under.
	Parent() Node

	Points(space Space) ([]mgl64.Vec3, error)
	Normals(space Space) ([]mgl64.Vec3, error)

	// UVSets returns every UV set of the mesh, the default set first.
	UVSets() ([][]mgl64.Vec2, error)

	Polygons() ([]Polygon, error)

	// Shaders returns the shaders connected to the mesh and, for every
	// polygon, the index of its shader. A negative index marks a face
	// without a shader.
	Shaders() (shaders []Shader, faceShader []int, err error)

	// Opposite reports the mesh's "opposite" orientation attribute.
	Opposite() bool

	// Skin returns the bound skin cluster, or nil when the mesh is not
	// skinned.
	Skin() (*Skin, error)
}

// Camera holds the values sampled from a camera shape in object space.
type Camera struct {
	Name    string
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

// CameraNode is a camera shape node.
type CameraNode interface {
	Node
	Camera() (Camera, error)
}

// Clock is the host's playback time cursor. It is process-wide state:
// setting it changes what WorldMatrix returns for every transform.
type Clock interface {
	Now() float64
	Set(seconds float64) error
}

// Scene is a host scene graph. Enumerations are depth-first.
type Scene interface {
	// Root returns the DAG world node. Its own name is never exported.
	Root() Node
	Transforms() []Transform
	Meshes() []Mesh
	Cameras() []CameraNode
	Clock() Clock
}
