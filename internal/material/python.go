package material

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

// WritePythonMaterials writes one class per exportable material.
func WritePythonMaterials(w io.Writer, lib *Library) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "import dx_ext as dx\n\n")
	for _, m := range lib.Exportable() {
		sh := &m.Shader
		fmt.Fprintf(bw, "class %s():\n", m.Name)
		fmt.Fprintf(bw, "\tdef __init__(self): \n\t\tself.name = \"%s\"\n", m.Name)
		fmt.Fprintf(bw, "\t\tself.values = [\n")
		fmt.Fprintf(bw, "\t\t\t(\"%s\", %f),\n", ValueTransparency, Grayscale(sh.Transparency))
		writePythonColor(bw, ValueAmbient, sh.Ambient)
		writePythonColor(bw, ValueDiffuse, sh.Color)
		writePythonColor(bw, ValueEmissive, sh.Incandescence)
		if tex := TextureFile(sh); tex != "" {
			fmt.Fprintf(bw, "\t\t\t(\"%s\", \"%s\"),\n", ValueTexture, tex)
		}
		fmt.Fprintf(bw, "\t\t]\n")
	}
	return bw.Flush()
}

func writePythonColor(w io.Writer, name string, c mgl64.Vec4) {
	fmt.Fprintf(w, "\t\t\t(\"%s\", dx.Color(%f, %f, %f, %f)),\n", name, c[0], c[1], c[2], c[3])
}

// WritePythonScene writes the mesh/material pairs and binds every referenced
// material to effect.
func WritePythonScene(w io.Writer, lib *Library, effect string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "material_connections = [\n")
	for _, c := range lib.Connections() {
		fmt.Fprintf(bw, "\t(\"%s\",\"%s\"),\n", c.Mesh, c.Material)
	}
	fmt.Fprintf(bw, "]\n")

	fmt.Fprintf(bw, "effect_connections = [(\"%s\", [\n\t", effect)
	for _, name := range lib.MaterialNames() {
		fmt.Fprintf(bw, "\"%s\", \n\t", name)
	}
	fmt.Fprintf(bw, "])]\n")
	return bw.Flush()
}
