package memscene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

// Document is the YAML scene description.
type Document struct {
	// Time is the initial clock time in seconds.
	Time    float64        `yaml:"time"`
	Shaders []ShaderDoc    `yaml:"shaders"`
	Nodes   []TransformDoc `yaml:"nodes"`
}

// ShaderDoc is a shading network entry. Type is lambert, blinn or phong;
// anything else loads as an unknown shader.
type ShaderDoc struct {
	Name          string     `yaml:"name"`
	Type          string     `yaml:"type"`
	Color         mgl64.Vec4 `yaml:"color"`
	Transparency  mgl64.Vec4 `yaml:"transparency"`
	Ambient       mgl64.Vec4 `yaml:"ambient"`
	Incandescence mgl64.Vec4 `yaml:"incandescence"`
	Texture       string     `yaml:"texture"`
}

// TransformDoc is a transform node with optional shapes and children.
type TransformDoc struct {
	Name      string                  `yaml:"name"`
	Translate *mgl64.Vec3             `yaml:"translate"`
	Rotate    *mgl64.Vec3             `yaml:"rotate"`
	Scale     *mgl64.Vec3             `yaml:"scale"`
	Keys      map[string][][2]float64 `yaml:"keys"` // channel -> [time, value]
	Mesh      *MeshDoc                `yaml:"mesh"`
	Camera    *CameraDoc              `yaml:"camera"`
	Children  []TransformDoc          `yaml:"children"`
}

// MeshDoc is a mesh shape.
type MeshDoc struct {
	Name     string         `yaml:"name"`
	Points   []mgl64.Vec3   `yaml:"points"`
	Normals  []mgl64.Vec3   `yaml:"normals"`
	UVSets   [][]mgl64.Vec2 `yaml:"uv_sets"`
	Faces    []FaceDoc      `yaml:"faces"`
	Opposite bool           `yaml:"opposite"`
	Skin     *SkinDoc       `yaml:"skin"`
}

// FaceDoc is a polygon. Shader names an entry of Document.Shaders.
type FaceDoc struct {
	Vertices []int  `yaml:"vertices"`
	Normals  []int  `yaml:"normals"`
	UVs      []int  `yaml:"uvs"`
	Shader   string `yaml:"shader"`
}

// SkinDoc binds mesh points to joints.
type SkinDoc struct {
	Joints  []string    `yaml:"joints"`
	Weights [][]float64 `yaml:"weights"`
}

// CameraDoc is a camera shape. Angles are in degrees.
type CameraDoc struct {
	Name    string      `yaml:"name"`
	Eye     mgl64.Vec3  `yaml:"eye"`
	ViewDir *mgl64.Vec3 `yaml:"view_dir"`
	Up      *mgl64.Vec3 `yaml:"up"`
	Aspect  float64     `yaml:"aspect"`
	HFov    float64     `yaml:"hfov"`
	VFov    float64     `yaml:"vfov"`
	Near    float64     `yaml:"near"`
	Far     float64     `yaml:"far"`
}

// Load reads a YAML scene description from path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from a YAML description.
func Parse(data []byte) (*Scene, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return Build(&doc)
}

// Build creates a scene from a decoded document.
func Build(doc *Document) (*Scene, error) {
	b := builder{scene: New(), shaders: make(map[string]scene.Shader)}
	for _, sd := range doc.Shaders {
		if sd.Name == "" {
			return nil, fmt.Errorf("shader without name")
		}
		if _, dup := b.shaders[sd.Name]; dup {
			return nil, fmt.Errorf("duplicate shader %q", sd.Name)
		}
		b.shaders[sd.Name] = scene.Shader{
			Name:          sd.Name,
			Kind:          scene.ParseShaderKind(sd.Type),
			Color:         sd.Color,
			Transparency:  sd.Transparency,
			Ambient:       sd.Ambient,
			Incandescence: sd.Incandescence,
			Texture:       sd.Texture,
		}
	}

	for i := range doc.Nodes {
		if err := b.transform(nil, &doc.Nodes[i]); err != nil {
			return nil, err
		}
	}
	if err := b.scene.clock.Set(doc.Time); err != nil {
		return nil, err
	}
	return b.scene, nil
}

type builder struct {
	scene   *Scene
	shaders map[string]scene.Shader
}

func (b *builder) transform(parent *Transform, td *TransformDoc) error {
	if td.Name == "" {
		return fmt.Errorf("transform without name")
	}
	t := b.scene.AddTransform(parent, td.Name)
	if td.Translate != nil {
		t.Translate = *td.Translate
	}
	if td.Rotate != nil {
		t.Rotate = *td.Rotate
	}
	if td.Scale != nil {
		t.Scale = *td.Scale
	}
	for name, pairs := range td.Keys {
		c, err := ParseChannel(name)
		if err != nil {
			return fmt.Errorf("transform %q: %w", td.Name, err)
		}
		keys := make([]Key, len(pairs))
		for i, p := range pairs {
			keys[i] = Key{Time: p[0], Value: p[1]}
		}
		t.SetKeys(c, keys...)
	}

	if td.Mesh != nil {
		data, err := b.mesh(td.Mesh)
		if err != nil {
			return fmt.Errorf("mesh under %q: %w", td.Name, err)
		}
		name := td.Mesh.Name
		if name == "" {
			name = td.Name + "Shape"
		}
		b.scene.AddMesh(t, name, data)
	}

	if td.Camera != nil {
		name := td.Camera.Name
		if name == "" {
			name = td.Name + "Shape"
		}
		b.scene.AddCamera(t, name, cameraData(td.Camera))
	}

	for i := range td.Children {
		if err := b.transform(t, &td.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) mesh(md *MeshDoc) (MeshData, error) {
	data := MeshData{
		Points:   md.Points,
		Normals:  md.Normals,
		UVSets:   md.UVSets,
		Opposite: md.Opposite,
	}
	if md.Skin != nil {
		data.Skin = &scene.Skin{Joints: md.Skin.Joints, Weights: md.Skin.Weights}
	}

	// Connected shaders in order of first use.
	slot := make(map[string]int)
	for i, fd := range md.Faces {
		f := Face{Vertices: fd.Vertices, Normals: fd.Normals, UVs: fd.UVs, Shader: -1}
		if len(f.Normals) == 0 {
			// Per-point normals when the face does not name its own.
			f.Normals = fd.Vertices
		}
		if fd.Shader != "" {
			idx, ok := slot[fd.Shader]
			if !ok {
				sh, known := b.shaders[fd.Shader]
				if !known {
					return MeshData{}, fmt.Errorf("face %d: unknown shader %q", i, fd.Shader)
				}
				idx = len(data.Shaders)
				slot[fd.Shader] = idx
				data.Shaders = append(data.Shaders, sh)
			}
			f.Shader = idx
		}
		data.Faces = append(data.Faces, f)
	}
	return data, nil
}

func cameraData(cd *CameraDoc) CameraData {
	data := DefaultCamera()
	data.Eye = cd.Eye
	if cd.ViewDir != nil {
		data.ViewDir = *cd.ViewDir
	}
	if cd.Up != nil {
		data.Up = *cd.Up
	}
	if cd.Aspect != 0 {
		data.Aspect = cd.Aspect
	}
	if cd.HFov != 0 {
		data.HFov = mgl64.DegToRad(cd.HFov)
	}
	if cd.VFov != 0 {
		data.VFov = mgl64.DegToRad(cd.VFov)
	}
	if cd.Near != 0 {
		data.Near = cd.Near
	}
	if cd.Far != 0 {
		data.Far = cd.Far
	}
	return data
}
