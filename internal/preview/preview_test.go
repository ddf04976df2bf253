package preview

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/redux-exporter/internal/mesh"
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/pkg/math"
)

func triangle(uv bool) *mesh.Geometry {
	return &mesh.Geometry{
		Vertices: []mesh.SuperVertex{
			{Position: math.Vec3{X: 0}, Normal: math.Vec3{Z: -1}, UV: math.Vec2{X: 0, Y: 1}},
			{Position: math.Vec3{X: 1}, Normal: math.Vec3{Z: -1}, UV: math.Vec2{X: 1, Y: 1}},
			{Position: math.Vec3{Y: 1}, Normal: math.Vec3{Z: -1}, UV: math.Vec2{X: 0, Y: 0}},
		},
		Indices: []uint32{2, 1, 0},
		Points:  []int{0, 1, 2},
		HasUV:   uv,
	}
}

func TestWriter_AddMesh(t *testing.T) {
	red := scene.Shader{Name: "red", Kind: scene.Lambert, Color: mgl64.Vec4{1, 0, 0, 1}}
	p := New(zaptest.NewLogger(t))

	if err := p.AddMesh("a_0", "a", "red", red, triangle(true)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddMesh("a_1", "a", "red", red, triangle(false)); err != nil {
		t.Fatal(err)
	}
	if err := p.AddMesh("loose_0", "", "Unknown", scene.Shader{Name: "x"}, triangle(false)); err != nil {
		t.Fatal(err)
	}

	doc := p.doc
	if p.Len() != 3 {
		t.Fatalf("expected 3 meshes, got %d", p.Len())
	}
	if len(doc.Materials) != 2 {
		t.Errorf("expected 2 materials, got %d", len(doc.Materials))
	}
	// one group node, three mesh nodes
	if len(doc.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(doc.Nodes))
	}
	if len(doc.Scenes[0].Nodes) != 2 {
		t.Errorf("expected 2 root nodes, got %v", doc.Scenes[0].Nodes)
	}
	group := doc.Nodes[doc.Scenes[0].Nodes[0]]
	if group.Name != "a" || len(group.Children) != 2 {
		t.Errorf("group node: %+v", group)
	}

	if _, ok := doc.Meshes[0].Primitives[0].Attributes["TEXCOORD_0"]; !ok {
		t.Error("expected TEXCOORD_0 on the mapped mesh")
	}
	if _, ok := doc.Meshes[1].Primitives[0].Attributes["TEXCOORD_0"]; ok {
		t.Error("unexpected TEXCOORD_0 on the unmapped mesh")
	}
	if c := doc.Materials[0].PBRMetallicRoughness.BaseColorFactor; c == nil || c[0] != 1 || c[3] != 1 {
		t.Errorf("base color: %v", c)
	}
}

func TestWriter_Empty(t *testing.T) {
	p := New(nil)
	if err := p.AddMesh("x", "", "m", scene.Shader{}, &mesh.Geometry{}); err == nil {
		t.Error("expected error for empty geometry")
	}
}

func TestWriter_Save(t *testing.T) {
	p := New(zaptest.NewLogger(t))
	if err := p.AddMesh("tri_0", "tri", "red", scene.Shader{Name: "red", Kind: scene.Phong}, triangle(true)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("missing binary glTF magic")
	}

	path := filepath.Join(t.TempDir(), "scene.glb")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(doc.Meshes) != 1 || doc.Meshes[0].Name != "tri_0" {
		t.Errorf("unexpected meshes after reload: %d", len(doc.Meshes))
	}
}
