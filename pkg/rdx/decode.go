package rdx

import (
	"encoding/binary"
	"fmt"
	stdmath "math"
	"os"

	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/math"
)

// Decode parses a complete container.
func Decode(data []byte) (*File, error) {
	cf, err := chunkio.Parse(data)
	if err != nil {
		return nil, err
	}
	chunks, err := chunkio.ReadChunks(cf.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}

	f := &File{Compression: cf.Header.Compression}

	// stage tracks the fixed top-level order:
	// 0 hierarchy, 1 animation, 2 meshes, 3 cameras
	stage := 0
	for i, c := range chunks {
		switch c.Tag {
		case TagHierarchy:
			if stage != 0 {
				return nil, fmt.Errorf("%w: Hierarchy at position %d", ErrUnexpectedChunk, i)
			}
			f.Hierarchy, err = decodeHierarchy(c.Payload)
			stage = 1
		case TagAnimation:
			if stage != 1 {
				return nil, fmt.Errorf("%w: Animation at position %d", ErrUnexpectedChunk, i)
			}
			f.Animation, err = decodeAnimation(c.Payload)
			stage = 2
		case TagMesh:
			if stage != 2 {
				return nil, fmt.Errorf("%w: Mesh at position %d", ErrUnexpectedChunk, i)
			}
			var m *Mesh
			m, err = decodeMesh(c.Payload)
			f.Meshes = append(f.Meshes, m)
		case TagCamera:
			if stage < 2 {
				return nil, fmt.Errorf("%w: Camera at position %d", ErrUnexpectedChunk, i)
			}
			stage = 3
			var cam *Camera
			cam, err = decodeCamera(c.Payload)
			f.Cameras = append(f.Cameras, cam)
		default:
			return nil, fmt.Errorf("%w: %s at position %d", ErrUnexpectedChunk, TagName(c.Tag), i)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s chunk %d: %w", TagName(c.Tag), i, err)
		}
	}

	if f.Hierarchy == nil {
		return nil, fmt.Errorf("%w: Hierarchy", ErrMissingChunk)
	}
	if f.Animation == nil {
		return nil, fmt.Errorf("%w: Animation", ErrMissingChunk)
	}
	return f, nil
}

// DecodeFile reads and decodes a container from disk.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	return Decode(data)
}

func decodeHierarchy(payload []byte) (*Node, error) {
	d := chunkio.NewDecoder(payload)
	root, err := decodeNode(d)
	if err != nil {
		return nil, err
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after hierarchy", d.Remaining())
	}
	return root, nil
}

func decodeNode(d *chunkio.Decoder) (*Node, error) {
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	n := &Node{Name: name}
	for i := uint32(0); i < count; i++ {
		child, err := decodeNode(d)
		if err != nil {
			return nil, fmt.Errorf("child %d of %q: %w", i, name, err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func decodeAnimation(payload []byte) (*Animation, error) {
	d := chunkio.NewDecoder(payload)
	a := &Animation{}
	var err error
	if a.FPS, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if a.Start, err = d.ReadFloat32(); err != nil {
		return nil, err
	}
	if a.End, err = d.ReadFloat32(); err != nil {
		return nil, err
	}
	trackCount, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}

	a.Tracks = make([]Track, 0, trackCount)
	for i := uint32(0); i < trackCount; i++ {
		var tr Track
		if tr.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		keyCount, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		tr.Keys = make([]Key, keyCount)
		for k := range tr.Keys {
			if err := d.ReadValue(&tr.Keys[k]); err != nil {
				return nil, fmt.Errorf("track %q key %d: %w", tr.Name, k, err)
			}
		}
		a.Tracks = append(a.Tracks, tr)
	}
	return a, nil
}

func decodeMesh(payload []byte) (*Mesh, error) {
	d := chunkio.NewDecoder(payload)
	m := &Mesh{}
	var err error

	if m.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Parent, err = d.ReadString(); err != nil {
		return nil, err
	}

	elementCount, err := d.ReadInt32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < elementCount; i++ {
		var e Element
		if e.Semantic, err = d.ReadString(); err != nil {
			return nil, err
		}
		var fields [4]int32
		if err := d.ReadValue(&fields); err != nil {
			return nil, err
		}
		e.SemanticIndex = fields[0]
		e.Format = Format(fields[1])
		e.InputSlot = fields[2]
		e.Offset = fields[3]
		m.Elements = append(m.Elements, e)
	}

	if m.VertexCount, m.VertexStride, m.Vertices, err = readBuffer(d); err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	if m.IndexCount, m.IndexStride, m.Indices, err = readBuffer(d); err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	if err := d.ReadValue(&m.Center); err != nil {
		return nil, err
	}
	if m.Radius, err = d.ReadFloat32(); err != nil {
		return nil, err
	}

	for d.Remaining() > 0 {
		c, err := d.ReadChunk()
		if err != nil {
			return nil, err
		}
		if c.Tag != TagSkin {
			return nil, fmt.Errorf("%w: %s inside Mesh", ErrUnexpectedChunk, TagName(c.Tag))
		}
		if m.Skin, err = decodeSkin(c.Payload); err != nil {
			return nil, fmt.Errorf("skin: %w", err)
		}
	}
	return m, nil
}

func readBuffer(d *chunkio.Decoder) (count, stride int32, data []byte, err error) {
	if count, err = d.ReadInt32(); err != nil {
		return
	}
	if stride, err = d.ReadInt32(); err != nil {
		return
	}
	if count < 0 || stride < 0 {
		err = fmt.Errorf("%w: count %d stride %d", ErrBadLayout, count, stride)
		return
	}
	data, err = d.ReadBytes(int(count) * int(stride))
	return
}

func decodeSkin(payload []byte) (*Skin, error) {
	d := chunkio.NewDecoder(payload)
	s := &Skin{}

	jointCount, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < jointCount; i++ {
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		s.Joints = append(s.Joints, name)
	}

	vertexCount, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	s.Influences = make([][]Influence, vertexCount)
	for v := range s.Influences {
		n, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		s.Influences[v] = make([]Influence, n)
		for k := range s.Influences[v] {
			if err := d.ReadValue(&s.Influences[v][k]); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func decodeCamera(payload []byte) (*Camera, error) {
	d := chunkio.NewDecoder(payload)
	c := &Camera{}
	var err error
	if c.Name, err = d.ReadString(); err != nil {
		return nil, err
	}

	var body struct {
		Eye, ViewDir, Up, Right       math.Vec3
		Aspect, HFov, VFov, Near, Far float32
	}
	if err := d.ReadValue(&body); err != nil {
		return nil, err
	}
	c.Eye, c.ViewDir, c.Up, c.Right = body.Eye, body.ViewDir, body.Up, body.Right
	c.Aspect, c.HFov, c.VFov, c.Near, c.Far = body.Aspect, body.HFov, body.VFov, body.Near, body.Far
	return c, nil
}

// element returns the declaration entry for a semantic, or nil.
func (m *Mesh) element(semantic string) *Element {
	for i := range m.Elements {
		if m.Elements[i].Semantic == semantic {
			return &m.Elements[i]
		}
	}
	return nil
}

// HasUV reports whether the vertex declaration carries texture coordinates.
func (m *Mesh) HasUV() bool {
	return m.element(SemanticTexCoord) != nil
}

func (m *Mesh) float(vertex int, offset int32) float32 {
	pos := vertex*int(m.VertexStride) + int(offset)
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(m.Vertices[pos:]))
}

func (m *Mesh) vec3s(semantic string) []math.Vec3 {
	e := m.element(semantic)
	if e == nil {
		return nil
	}
	out := make([]math.Vec3, m.VertexCount)
	for i := range out {
		out[i] = math.Vec3{
			X: m.float(i, e.Offset),
			Y: m.float(i, e.Offset+4),
			Z: m.float(i, e.Offset+8),
		}
	}
	return out
}

// Positions decodes the POSITION channel of the vertex buffer.
func (m *Mesh) Positions() []math.Vec3 {
	return m.vec3s(SemanticPosition)
}

// Normals decodes the NORMAL channel of the vertex buffer.
func (m *Mesh) Normals() []math.Vec3 {
	return m.vec3s(SemanticNormal)
}

// UVs decodes the TEXCOORD channel, or returns nil if absent.
func (m *Mesh) UVs() []math.Vec2 {
	e := m.element(SemanticTexCoord)
	if e == nil {
		return nil
	}
	out := make([]math.Vec2, m.VertexCount)
	for i := range out {
		out[i] = math.Vec2{X: m.float(i, e.Offset), Y: m.float(i, e.Offset+4)}
	}
	return out
}

// IndexList decodes the index buffer. Only 4-byte indices are supported.
func (m *Mesh) IndexList() ([]uint32, error) {
	if m.IndexStride != 4 {
		return nil, fmt.Errorf("%w: index stride %d", ErrBadLayout, m.IndexStride)
	}
	out := make([]uint32, m.IndexCount)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(m.Indices[i*4:])
	}
	return out, nil
}
