package material

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Material value names understood by the engine.
const (
	ValueTransparency = "transparency"
	ValueAmbient      = "ambient_color"
	ValueDiffuse      = "diffuse_color"
	ValueEmissive     = "emissive_color"
	ValueTexture      = "diffuse_texture"
)

// Document is the single-file description written by the JSON, YAML and
// TOML formats.
type Document struct {
	Materials           []MaterialDoc   `json:"materials" yaml:"materials" toml:"materials"`
	MaterialConnections []ConnectionDoc `json:"material_connections" yaml:"material_connections" toml:"material_connections"`
	EffectConnections   []EffectDoc     `json:"effect_connections" yaml:"effect_connections" toml:"effect_connections"`
}

// MaterialDoc describes one material.
type MaterialDoc struct {
	Name      string     `json:"name" yaml:"name" toml:"name"`
	Technique string     `json:"technique" yaml:"technique" toml:"technique"`
	Values    []ValueDoc `json:"values" yaml:"values" toml:"values"`
}

// ValueDoc is one typed material parameter. Type is float, color or texture.
type ValueDoc struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Type  string `json:"type" yaml:"type" toml:"type"`
	Value any    `json:"value" yaml:"value" toml:"value"`
}

// ConnectionDoc binds a mesh to a material.
type ConnectionDoc struct {
	Mesh     string `json:"mesh" yaml:"mesh" toml:"mesh"`
	Material string `json:"material" yaml:"material" toml:"material"`
}

// EffectDoc binds materials to an engine effect.
type EffectDoc struct {
	Effect    string   `json:"effect" yaml:"effect" toml:"effect"`
	Materials []string `json:"materials" yaml:"materials" toml:"materials"`
}

// NewDocument builds the description of lib with every material bound to
// effect.
func NewDocument(lib *Library, effect string) *Document {
	doc := &Document{
		Materials:           []MaterialDoc{},
		MaterialConnections: []ConnectionDoc{},
		EffectConnections: []EffectDoc{{
			Effect:    effect,
			Materials: lib.MaterialNames(),
		}},
	}

	for _, m := range lib.Exportable() {
		sh := &m.Shader
		md := MaterialDoc{
			Name:      m.Name,
			Technique: Technique(sh),
			Values: []ValueDoc{
				{Name: ValueTransparency, Type: "float", Value: Grayscale(sh.Transparency)},
				{Name: ValueAmbient, Type: "color", Value: sh.Ambient[:]},
				{Name: ValueDiffuse, Type: "color", Value: sh.Color[:]},
				{Name: ValueEmissive, Type: "color", Value: sh.Incandescence[:]},
			},
		}
		if tex := TextureFile(sh); tex != "" {
			md.Values = append(md.Values, ValueDoc{Name: ValueTexture, Type: "texture", Value: tex})
		}
		doc.Materials = append(doc.Materials, md)
	}

	for _, c := range lib.Connections() {
		doc.MaterialConnections = append(doc.MaterialConnections, ConnectionDoc{Mesh: c.Mesh, Material: c.Material})
	}
	return doc
}

// Encode writes the document in format f. Python is not a document format.
func (d *Document) Encode(w io.Writer, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(d)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(d)
	default:
		return fmt.Errorf("%s is not a document format", f)
	}
}
