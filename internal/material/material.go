// Package material collects the materials referenced by exported meshes and
// writes the auxiliary material and scene linkage files.
package material

import (
	"path"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

// UnknownName is the material name given to unsupported shader types.
const UnknownName = "Unknown"

// Name returns the exported material name for a shader.
func Name(sh *scene.Shader) string {
	if !sh.Known() {
		return UnknownName
	}
	return scene.Sanitize(sh.Name)
}

// Technique names the engine shader family for a material: Diffuse for
// Lambert, Specular for Blinn and Phong, with a Texture suffix when a file
// texture drives the color.
func Technique(sh *scene.Shader) string {
	base := "Diffuse"
	if sh.Kind == scene.Blinn || sh.Kind == scene.Phong {
		base = "Specular"
	}
	if sh.Texture != "" && sh.Known() {
		base += "Texture"
	}
	return base
}

// Grayscale converts an RGB color to luminance.
func Grayscale(c mgl64.Vec4) float64 {
	return c[0]*0.3 + c[1]*0.59 + c[2]*0.11
}

// TextureFile returns the base file name of the shader's texture, or empty.
// Both slash styles are accepted since texture paths come from the host.
func TextureFile(sh *scene.Shader) string {
	if sh.Texture == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(sh.Texture, `\`, "/"))
}

// Material is one exported material.
type Material struct {
	Name   string
	Shader scene.Shader
}

// Connection binds an exported mesh to a material.
type Connection struct {
	Mesh     string
	Material string
}

// Library accumulates the material tables of one export run.
type Library struct {
	materials []Material
	seen      map[string]bool
	meshes    map[string][]string // material name -> mesh names
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		seen:   make(map[string]bool),
		meshes: make(map[string][]string),
	}
}

// Add records that mesh uses shader and returns the material name. The
// first shader seen under a name defines the material.
func (l *Library) Add(mesh string, sh scene.Shader) string {
	name := Name(&sh)
	l.meshes[name] = append(l.meshes[name], mesh)
	if !l.seen[name] {
		l.seen[name] = true
		l.materials = append(l.materials, Material{Name: name, Shader: sh})
	}
	return name
}

// Exportable returns the materials that can be described in a material
// file: those backed by a known shader type.
func (l *Library) Exportable() []Material {
	var out []Material
	for _, m := range l.materials {
		if m.Shader.Known() {
			out = append(out, m)
		}
	}
	return out
}

// MaterialNames returns every referenced material name, sorted.
func (l *Library) MaterialNames() []string {
	names := make([]string, 0, len(l.meshes))
	for name := range l.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Connections returns mesh/material pairs grouped by material name in
// sorted order, meshes in the order they were added.
func (l *Library) Connections() []Connection {
	var out []Connection
	for _, name := range l.MaterialNames() {
		for _, mesh := range l.meshes[name] {
			out = append(out, Connection{Mesh: mesh, Material: name})
		}
	}
	return out
}

// Len returns the number of distinct materials.
func (l *Library) Len() int {
	return len(l.materials)
}
