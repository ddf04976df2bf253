package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/redux-exporter/internal/config"
	"github.com/Faultbox/redux-exporter/internal/material"
	"github.com/Faultbox/redux-exporter/internal/mesh"
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/internal/scene/memscene"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
)

const sceneYAML = `
shaders:
  - name: brick
    type: lambert
    color: [0.8, 0.3, 0.2, 1]
    texture: C:\textures\brick.png
  - name: chrome
    type: phong
    color: [0.9, 0.9, 0.9, 1]
  - name: ramp1
    type: rampShader
nodes:
  - name: group1
    children:
      - name: pCube1
        translate: [0, 2, 0]
        keys:
          tx: [[0, 0], [1, 5]]
        mesh:
          points: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
          normals: [[0, 0, 1]]
          uv_sets: [[[0, 0], [1, 0], [1, 1], [0, 1]]]
          faces:
            - vertices: [0, 1, 2, 3]
              normals: [0, 0, 0, 0]
              uvs: [0, 1, 2, 3]
              shader: brick
  - name: pPlane1
    translate: [0, 0, 3]
    mesh:
      points: [[0, 0, 0], [1, 0, 0], [1, 0, 1], [0, 0, 1]]
      normals: [[0, 1, 0]]
      faces:
        - vertices: [0, 1, 2]
          normals: [0, 0, 0]
          shader: chrome
        - vertices: [0, 2, 3]
          normals: [0, 0, 0]
          shader: ramp1
  - name: camera1
    camera:
      eye: [0, 1, 10]
      view_dir: [0, 0, -1]
      hfov: 60
      vfov: 40
      aspect: 1.5
      near: 0.1
      far: 1000
`

func testOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	return opts
}

func TestExport_EmptyScene(t *testing.T) {
	s := memscene.New()
	s.AddCamera(nil, "persp", memscene.CameraData{
		Eye:     mgl64.Vec3{1, 2, 3},
		ViewDir: mgl64.Vec3{0, 0, -1},
		Up:      mgl64.Vec3{0, 1, 0},
		Aspect:  1.5,
		HFov:    1,
		VFov:    0.75,
		Near:    0.1,
		Far:     100,
	})

	base := filepath.Join(t.TempDir(), "empty")
	res, err := Export(s, base, testOptions(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Tracks != 0 || res.Meshes != 0 || res.Cameras != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	data, err := os.ReadFile(base + ".rdx")
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:4]) != chunkio.Magic {
		t.Errorf("bad magic %q", data[:4])
	}
	if len(data) != res.Bytes {
		t.Errorf("result reports %d bytes, file has %d", res.Bytes, len(data))
	}

	f, err := rdx.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Compression != chunkio.CompressionZlib {
		t.Errorf("compression: got %v", f.Compression)
	}
	if f.Hierarchy.Name != RootName || len(f.Hierarchy.Children) != 1 || f.Hierarchy.Children[0].Name != "persp" {
		t.Errorf("hierarchy: %+v", f.Hierarchy)
	}
	if len(f.Animation.Tracks) != 0 || f.Animation.FPS != 30 {
		t.Errorf("animation: %+v", f.Animation)
	}
	if len(f.Meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(f.Meshes))
	}
	if len(f.Cameras) != 1 {
		t.Fatalf("expected 1 camera, got %d", len(f.Cameras))
	}
	cam := f.Cameras[0]
	if cam.Name != "persp" {
		t.Errorf("camera name: %q", cam.Name)
	}
	if cam.Eye != (math.Vec3{X: 1, Y: 2, Z: -3}) || cam.ViewDir != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("camera vectors: eye=%v view=%v", cam.Eye, cam.ViewDir)
	}
	// right = view x up = (1, 0, 0)
	if cam.Right != (math.Vec3{X: 1}) {
		t.Errorf("camera right: %v", cam.Right)
	}
	if cam.Aspect != 1.5 || cam.HFov != 1 || cam.Far != 100 {
		t.Errorf("camera lens: %+v", cam)
	}

	// Material files are written even without materials.
	for _, path := range material.Python.Files(base) {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
}

func TestExport_Scene(t *testing.T) {
	s, err := memscene.Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	base := filepath.Join(dir, "out", "level1")
	opts := testOptions(t)
	opts.Compression = chunkio.CompressionNone
	opts.Preview = true
	res, err := Export(s, base, opts)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := rdx.DecodeFile(res.Container)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}

	var top []string
	for _, n := range f.Hierarchy.Children {
		top = append(top, n.Name)
	}
	if !slices.Equal(top, []string{"group1", "pPlane1", "camera1"}) {
		t.Errorf("hierarchy children: %v", top)
	}

	// group1, group1|pCube1, pPlane1, camera1
	if len(f.Animation.Tracks) != 4 || res.Tracks != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(f.Animation.Tracks))
	}
	cube := f.Animation.Track("group1|pCube1")
	if cube == nil || len(cube.Keys) != 31 {
		t.Fatalf("cube track: %+v", cube)
	}
	if f.Animation.Start != 0 || f.Animation.End != 1 {
		t.Errorf("animation range: [%v, %v]", f.Animation.Start, f.Animation.End)
	}

	if len(f.Meshes) != 3 || res.Meshes != 3 {
		t.Fatalf("expected 3 mesh chunks, got %d", len(f.Meshes))
	}
	cubeMesh := f.Mesh("group1|pCube1|pCube1Shape_0")
	if cubeMesh == nil {
		t.Fatalf("cube mesh missing, have %q %q %q", f.Meshes[0].Name, f.Meshes[1].Name, f.Meshes[2].Name)
	}
	if cubeMesh.Parent != "group1|pCube1" || !cubeMesh.HasUV() {
		t.Errorf("cube mesh: parent=%q uv=%v", cubeMesh.Parent, cubeMesh.HasUV())
	}
	// Animated parent: object space, so the translate is not baked in.
	if p := cubeMesh.Positions()[2]; p.Y != 1 {
		t.Errorf("cube position: %v", p)
	}

	plane := f.Mesh("pPlane1|pPlane1Shape_0")
	if plane == nil {
		t.Fatal("plane mesh missing")
	}
	// Static parent: world space, Z negated.
	if p := plane.Positions()[0]; p.Z != -3 {
		t.Errorf("plane position: %v", p)
	}
	if plane.HasUV() {
		t.Error("plane has no uv sets")
	}

	if len(f.Cameras) != 1 || f.Cameras[0].Eye.Z != -10 {
		t.Errorf("cameras: %+v", f.Cameras)
	}

	// Exportable materials exclude the unknown ramp shader.
	if res.Materials != 2 {
		t.Errorf("expected 2 materials, got %d", res.Materials)
	}
	mats, err := os.ReadFile(base + "_materials.py")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"class brick", "class chrome", "brick.png"} {
		if !strings.Contains(string(mats), want) {
			t.Errorf("materials file missing %q", want)
		}
	}
	if strings.Contains(string(mats), "Unknown") {
		t.Error("unknown material written to materials file")
	}
	sceneFile, err := os.ReadFile(base + "_scene.py")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(sceneFile), "Unknown") {
		t.Error("unknown material missing from scene connections")
	}

	if _, err := os.Stat(base + ".glb"); err != nil {
		t.Errorf("preview not written: %v", err)
	}
	if len(res.Files) != 3 {
		t.Errorf("expected 3 side files, got %v", res.Files)
	}
}

func TestExport_DocumentFormats(t *testing.T) {
	for _, format := range []material.Format{material.JSON, material.YAML, material.TOML} {
		t.Run(format.String(), func(t *testing.T) {
			s, err := memscene.Parse([]byte(sceneYAML))
			if err != nil {
				t.Fatal(err)
			}
			base := filepath.Join(t.TempDir(), "scene")
			opts := testOptions(t)
			opts.MaterialFormat = format
			res, err := Export(s, base, opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Files) != 1 {
				t.Fatalf("expected one material file, got %v", res.Files)
			}
			data, err := os.ReadFile(res.Files[0])
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "blinn_effect") {
				t.Errorf("default effect missing from %s", res.Files[0])
			}
		})
	}
}

type brokenMesh struct {
	scene.Mesh
}

func (brokenMesh) Normals(scene.Space) ([]mgl64.Vec3, error) {
	return nil, errors.New("normals unavailable")
}

type badTriangulation struct {
	scene.Mesh
}

func (badTriangulation) Polygons() ([]scene.Polygon, error) {
	return []scene.Polygon{{
		Vertices:  []int{0, 1, 2},
		Normals:   []int{0, 0, 0},
		Triangles: []int{0, 1, 3},
	}}, nil
}

// wrapped substitutes meshes of an existing scene.
type wrapped struct {
	*memscene.Scene
	wrap func(i int, m scene.Mesh) scene.Mesh
}

func (w wrapped) Meshes() []scene.Mesh {
	meshes := w.Scene.Meshes()
	for i, m := range meshes {
		meshes[i] = w.wrap(i, m)
	}
	return meshes
}

func TestExport_SkipsFailedQuery(t *testing.T) {
	s, err := memscene.Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	ws := wrapped{s, func(i int, m scene.Mesh) scene.Mesh {
		if i == 0 {
			return brokenMesh{m}
		}
		return m
	}}

	base := filepath.Join(t.TempDir(), "skip")
	res, err := Export(ws, base, testOptions(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !slices.Equal(res.Skipped, []string{"|group1|pCube1|pCube1Shape"}) {
		t.Errorf("skipped: %v", res.Skipped)
	}

	f, err := rdx.DecodeFile(res.Container)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Meshes) != 2 {
		t.Errorf("expected 2 meshes from the remaining plane, got %d", len(f.Meshes))
	}
	if len(f.Cameras) != 1 {
		t.Errorf("cameras after skipped mesh: %d", len(f.Cameras))
	}
}

func TestExport_AbortsOnTriangulation(t *testing.T) {
	s, err := memscene.Parse([]byte(sceneYAML))
	if err != nil {
		t.Fatal(err)
	}
	ws := wrapped{s, func(i int, m scene.Mesh) scene.Mesh {
		return badTriangulation{m}
	}}

	base := filepath.Join(t.TempDir(), "abort")
	_, err = Export(ws, base, testOptions(t))
	if !errors.Is(err, mesh.ErrTriangulation) {
		t.Fatalf("expected ErrTriangulation, got %v", err)
	}
	if _, err := os.Stat(base + ".rdx"); !os.IsNotExist(err) {
		t.Error("container written after aborted export")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Compression = "none"
	cfg.Export.MaterialFormat = "yaml"
	cfg.Export.Preview = true

	opts, err := OptionsFromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Compression != chunkio.CompressionNone || opts.MaterialFormat != material.YAML || !opts.Preview {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Extension != "rdx" || opts.CacheSize != 16 || opts.DefaultEffect != "blinn_effect" {
		t.Errorf("defaults not carried: %+v", opts)
	}

	cfg.Export.Compression = "lzma"
	if _, err := OptionsFromConfig(cfg, nil); err == nil {
		t.Error("expected error for unknown compression")
	}
}
