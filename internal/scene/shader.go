package scene

import "github.com/go-gl/mathgl/mgl64"

// ShaderKind is the closed set of surface shader types the exporter knows.
type ShaderKind int

const (
	UnknownShader ShaderKind = iota
	Lambert
	Blinn
	Phong
)

// String returns the shader kind name.
func (k ShaderKind) String() string {
	switch k {
	case Lambert:
		return "lambert"
	case Blinn:
		return "blinn"
	case Phong:
		return "phong"
	default:
		return "unknown"
	}
}

// ParseShaderKind maps a host node type name to a kind. Anything
// unrecognized is UnknownShader.
func ParseShaderKind(name string) ShaderKind {
	switch name {
	case "lambert":
		return Lambert
	case "blinn":
		return Blinn
	case "phong":
		return Phong
	default:
		return UnknownShader
	}
}

// Shader is a surface shader with the properties every known kind shares.
// Colors are RGBA.
type Shader struct {
	Name          string
	Kind          ShaderKind
	Color         mgl64.Vec4
	Transparency  mgl64.Vec4
	Ambient       mgl64.Vec4
	Incandescence mgl64.Vec4
	// Texture is the path of a file texture connected to the color input,
	// or empty.
	Texture string
}

// Known reports whether the shader is one of Lambert, Blinn or Phong.
func (s *Shader) Known() bool {
	return s.Kind != UnknownShader
}
