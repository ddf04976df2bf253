// Package memscene is an in-memory scene host. Scenes are built from Go
// values or loaded from a YAML description and satisfy scene.Scene.
package memscene

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

var (
	ErrBadTime  = errors.New("invalid time")
	ErrBadIndex = errors.New("index out of range")
)

// Clock is the scene's playback cursor.
type Clock struct {
	now float64
}

// Now returns the current time in seconds.
func (c *Clock) Now() float64 {
	return c.now
}

// Set moves the cursor.
func (c *Clock) Set(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: %v", ErrBadTime, seconds)
	}
	c.now = seconds
	return nil
}

// node carries the DAG bookkeeping shared by every node type.
type node struct {
	name     string
	parent   *Transform
	children []scene.Node
}

// Name returns the short node name.
func (n *node) Name() string {
	return n.name
}

// FullPathName returns the '|' separated path from the world.
func (n *node) FullPathName() string {
	if n.parent == nil {
		return "|" + n.name
	}
	return n.parent.FullPathName() + "|" + n.name
}

// Children returns the child nodes in creation order.
func (n *node) Children() []scene.Node {
	return slices.Clone(n.children)
}

// world is the DAG root.
type world struct {
	node
}

func (w *world) FullPathName() string {
	return ""
}

// Scene is an in-memory scene graph.
type Scene struct {
	root  world
	clock Clock
}

// New returns an empty scene with the clock at time 0.
func New() *Scene {
	return &Scene{}
}

func (s *Scene) attach(parent *Transform, n scene.Node) {
	if parent == nil {
		s.root.children = append(s.root.children, n)
		return
	}
	parent.children = append(parent.children, n)
}

// AddTransform creates a transform under parent, or under the world when
// parent is nil. It starts at the identity pose with no keys.
func (s *Scene) AddTransform(parent *Transform, name string) *Transform {
	t := &Transform{
		node:  node{name: name, parent: parent},
		scene: s,
		Scale: [3]float64{1, 1, 1},
		Keys:  make(map[Channel][]Key),
	}
	s.attach(parent, t)
	return t
}

// AddMesh creates a mesh shape under parent.
func (s *Scene) AddMesh(parent *Transform, name string, data MeshData) *Mesh {
	m := &Mesh{node: node{name: name, parent: parent}, data: data}
	s.attach(parent, m)
	return m
}

// AddCamera creates a camera shape under parent.
func (s *Scene) AddCamera(parent *Transform, name string, data CameraData) *Camera {
	c := &Camera{node: node{name: name, parent: parent}, data: data}
	s.attach(parent, c)
	return c
}

// Root returns the world node.
func (s *Scene) Root() scene.Node {
	return &s.root
}

// Clock returns the scene's time cursor.
func (s *Scene) Clock() scene.Clock {
	return &s.clock
}

// walk visits every node depth-first in creation order.
func (s *Scene) walk(fn func(scene.Node)) {
	var visit func(n scene.Node)
	visit = func(n scene.Node) {
		fn(n)
		for _, c := range n.Children() {
			visit(c)
		}
	}
	for _, c := range s.root.children {
		visit(c)
	}
}

// Transforms returns every transform depth-first.
func (s *Scene) Transforms() []scene.Transform {
	var out []scene.Transform
	s.walk(func(n scene.Node) {
		if t, ok := n.(*Transform); ok {
			out = append(out, t)
		}
	})
	return out
}

// Meshes returns every mesh shape depth-first.
func (s *Scene) Meshes() []scene.Mesh {
	var out []scene.Mesh
	s.walk(func(n scene.Node) {
		if m, ok := n.(*Mesh); ok {
			out = append(out, m)
		}
	})
	return out
}

// Cameras returns every camera shape depth-first.
func (s *Scene) Cameras() []scene.CameraNode {
	var out []scene.CameraNode
	s.walk(func(n scene.Node) {
		if c, ok := n.(*Camera); ok {
			out = append(out, c)
		}
	})
	return out
}
