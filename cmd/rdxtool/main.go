// rdxtool is a CLI utility for inspecting .rdx containers.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
	"github.com/Faultbox/redux-exporter/pkg/rdx"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = withFile(args, "info", cmdInfo)
	case "tree":
		err = withFile(args, "tree", cmdTree)
	case "nodes":
		err = withFile(args, "nodes", cmdNodes)
	case "dump":
		err = withFile(args, "dump", cmdDump)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rdxtool - .rdx container utility

Usage:
  rdxtool <command> <file.rdx>

Commands:
  info <file.rdx>    Show header and record counts
  tree <file.rdx>    Show the chunk layout with payload sizes
  nodes <file.rdx>   Show the exported node hierarchy
  dump <file.rdx>    Dump every decoded record

Examples:
  rdxtool info level1.rdx
  rdxtool tree level1.rdx`)
}

func withFile(args []string, name string, fn func(w io.Writer, data []byte) error) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rdxtool %s <file.rdx>", name)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", args[0])
	return fn(os.Stdout, data)
}

func cmdInfo(w io.Writer, data []byte) error {
	cf, err := chunkio.Parse(data)
	if err != nil {
		return err
	}
	f, err := rdx.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Size:        %d bytes\n", len(data))
	fmt.Fprintf(w, "Version:     %d\n", cf.Header.Version)
	fmt.Fprintf(w, "Compression: %s\n", cf.Header.Compression)
	fmt.Fprintf(w, "Body:        %d bytes\n", len(cf.Body))
	fmt.Fprintln(w)

	var vertices, triangles, skinned int
	for _, m := range f.Meshes {
		vertices += int(m.VertexCount)
		triangles += int(m.IndexCount) / 3
		if m.Skin != nil {
			skinned++
		}
	}
	fmt.Fprintf(w, "Nodes:       %d\n", f.Hierarchy.Count()-1)
	fmt.Fprintf(w, "Tracks:      %d (%d fps, %.3fs - %.3fs)\n",
		len(f.Animation.Tracks), f.Animation.FPS, f.Animation.Start, f.Animation.End)
	fmt.Fprintf(w, "Meshes:      %d (%d skinned)\n", len(f.Meshes), skinned)
	fmt.Fprintf(w, "Vertices:    %d\n", vertices)
	fmt.Fprintf(w, "Triangles:   %d\n", triangles)
	fmt.Fprintf(w, "Cameras:     %d\n", len(f.Cameras))
	return nil
}

func cmdTree(w io.Writer, data []byte) error {
	cf, err := chunkio.Parse(data)
	if err != nil {
		return err
	}
	chunks, err := chunkio.ReadChunks(cf.Body)
	if err != nil {
		return err
	}
	f, err := rdx.Decode(data)
	if err != nil {
		return err
	}

	meshIndex, cameraIndex := 0, 0
	for _, c := range chunks {
		label := ""
		switch c.Tag {
		case rdx.TagMesh:
			if meshIndex < len(f.Meshes) {
				label = f.Meshes[meshIndex].Name
			}
		case rdx.TagCamera:
			if cameraIndex < len(f.Cameras) {
				label = f.Cameras[cameraIndex].Name
			}
		}
		fmt.Fprintf(w, "@%-8d %-10s %8d bytes  %s\n", c.Offset, rdx.TagName(c.Tag), len(c.Payload), label)

		switch c.Tag {
		case rdx.TagMesh:
			m := f.Meshes[meshIndex]
			fmt.Fprintf(w, "           vertices %d x %d, indices %d x %d, sphere r=%.3f\n",
				m.VertexCount, m.VertexStride, m.IndexCount, m.IndexStride, m.Radius)
			if m.Skin != nil {
				fmt.Fprintf(w, "           %-10s %d joints\n", rdx.TagName(rdx.TagSkin), len(m.Skin.Joints))
			}
			meshIndex++
		case rdx.TagCamera:
			cameraIndex++
		}
	}
	return nil
}

func cmdNodes(w io.Writer, data []byte) error {
	f, err := rdx.Decode(data)
	if err != nil {
		return err
	}
	printNode(w, f.Hierarchy, 0)
	return nil
}

func printNode(w io.Writer, n *rdx.Node, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n.Name)
	for _, c := range n.Children {
		printNode(w, c, depth+1)
	}
}

// meshView is a decoded mesh with its buffers unpacked.
type meshView struct {
	Name      string
	Parent    string
	Elements  []rdx.Element
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
	Center    math.Vec3
	Radius    float32
	Skin      *rdx.Skin
}

func cmdDump(w io.Writer, data []byte) error {
	f, err := rdx.Decode(data)
	if err != nil {
		return err
	}

	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(w, f.Hierarchy)
	cfg.Fdump(w, f.Animation)
	for _, m := range f.Meshes {
		indices, err := m.IndexList()
		if err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name, err)
		}
		cfg.Fdump(w, meshView{
			Name:      m.Name,
			Parent:    m.Parent,
			Elements:  m.Elements,
			Positions: m.Positions(),
			Normals:   m.Normals(),
			UVs:       m.UVs(),
			Indices:   indices,
			Center:    m.Center,
			Radius:    m.Radius,
			Skin:      m.Skin,
		})
	}
	for _, c := range f.Cameras {
		cfg.Fdump(w, c)
	}
	return nil
}
