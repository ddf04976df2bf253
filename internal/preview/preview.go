// Package preview mirrors exported sub-meshes into a binary glTF document
// so an export can be inspected in any glTF viewer.
package preview

import (
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/internal/material"
	"github.com/Faultbox/redux-exporter/internal/mesh"
	"github.com/Faultbox/redux-exporter/internal/scene"
)

// Writer collects meshes into a glTF document. It implements mesh.Sink.
type Writer struct {
	doc       *gltf.Document
	materials map[string]uint32
	parents   map[string]uint32
	log       *zap.Logger
}

// New returns an empty preview document.
func New(log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		doc:       gltf.NewDocument(),
		materials: make(map[string]uint32),
		parents:   make(map[string]uint32),
		log:       log,
	}
}

var _ mesh.Sink = (*Writer)(nil)

// AddMesh appends one sub-mesh as a glTF mesh with a single triangle
// primitive. Meshes sharing a parent hang under one group node.
func (p *Writer) AddMesh(name, parent, materialName string, shader scene.Shader, g *mesh.Geometry) error {
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return fmt.Errorf("preview: mesh %s has no geometry", name)
	}

	positions := make([][3]float32, len(g.Vertices))
	normals := make([][3]float32, len(g.Vertices))
	for i, v := range g.Vertices {
		positions[i] = [3]float32{v.Position.X, v.Position.Y, v.Position.Z}
		normals[i] = [3]float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(p.doc, positions),
		"NORMAL":   modeler.WriteNormal(p.doc, normals),
	}
	if g.HasUV {
		uvs := make([][2]float32, len(g.Vertices))
		for i, v := range g.Vertices {
			uvs[i] = [2]float32{v.UV.X, v.UV.Y}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(p.doc, uvs)
	}
	indices := modeler.WriteIndices(p.doc, g.Indices)

	p.doc.Meshes = append(p.doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: attributes,
			Material:   gltf.Index(p.material(materialName, shader)),
		}},
	})
	meshIndex := uint32(len(p.doc.Meshes) - 1)

	node := uint32(len(p.doc.Nodes))
	p.doc.Nodes = append(p.doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(meshIndex),
	})
	if parent == "" {
		p.doc.Scenes[0].Nodes = append(p.doc.Scenes[0].Nodes, node)
	} else {
		group := p.group(parent)
		p.doc.Nodes[group].Children = append(p.doc.Nodes[group].Children, node)
	}

	p.log.Debug("Added preview mesh",
		zap.String("mesh", name),
		zap.Int("vertices", len(g.Vertices)),
		zap.Int("indices", len(g.Indices)))
	return nil
}

// material returns the index of the glTF material named name, creating it
// from the shader's base color on first use.
func (p *Writer) material(name string, shader scene.Shader) uint32 {
	if idx, ok := p.materials[name]; ok {
		return idx
	}

	alpha := 1 - material.Grayscale(shader.Transparency)
	color := &[4]float32{
		float32(shader.Color[0]),
		float32(shader.Color[1]),
		float32(shader.Color[2]),
		float32(alpha),
	}
	if !shader.Known() {
		color = &[4]float32{0.5, 0.5, 0.5, 1}
	}

	idx := uint32(len(p.doc.Materials))
	p.doc.Materials = append(p.doc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
		},
	})
	p.materials[name] = idx
	return idx
}

// group returns the node standing in for a parent transform.
func (p *Writer) group(parent string) uint32 {
	if idx, ok := p.parents[parent]; ok {
		return idx
	}
	idx := uint32(len(p.doc.Nodes))
	p.doc.Nodes = append(p.doc.Nodes, &gltf.Node{Name: parent})
	p.doc.Scenes[0].Nodes = append(p.doc.Scenes[0].Nodes, idx)
	p.parents[parent] = idx
	return idx
}

// Len returns the number of meshes added.
func (p *Writer) Len() int {
	return len(p.doc.Meshes)
}

// Encode writes the document as binary glTF.
func (p *Writer) Encode(w io.Writer) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(p.doc); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}

// Save writes the document to path as a .glb file.
func (p *Writer) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing preview: %w", cerr)
		}
	}()

	if err := p.Encode(f); err != nil {
		return err
	}
	p.log.Info("Wrote preview", zap.String("path", path), zap.Int("meshes", p.Len()))
	return nil
}
