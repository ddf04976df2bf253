package chunkio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Header is the fixed prefix of a container file.
type Header struct {
	Magic       [4]byte
	Version     uint32
	Compression Compression
}

// File is a parsed container with its body decompressed.
type File struct {
	Header Header
	Body   []byte
}

// Chunk is one tagged chunk. Payload aliases the decoded body.
type Chunk struct {
	Tag     Tag
	Offset  int // offset of the chunk header within its parent
	Payload []byte
}

// Parse reads the header and returns the (decompressed) body.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}
	if string(data[:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	f := &File{}
	copy(f.Header.Magic[:], data[:4])
	f.Header.Version = binary.LittleEndian.Uint32(data[4:])
	f.Header.Compression = Compression(binary.LittleEndian.Uint32(data[8:]))

	if f.Header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Header.Version)
	}

	rest := data[HeaderSize:]
	switch f.Header.Compression {
	case CompressionNone:
		f.Body = rest
	case CompressionZlib:
		if len(rest) < 4 {
			return nil, ErrTruncated
		}
		size := binary.LittleEndian.Uint32(rest)
		zr, err := zlib.NewReader(bytes.NewReader(rest[4:]))
		if err != nil {
			return nil, fmt.Errorf("opening zlib stream: %w", err)
		}
		defer zr.Close()

		// The declared size is untrusted; read at most one byte past it.
		body, err := io.ReadAll(io.LimitReader(zr, int64(size)+1))
		if err != nil {
			return nil, fmt.Errorf("decompressing body: %w", err)
		}
		switch {
		case len(body) < int(size):
			return nil, fmt.Errorf("%w: body is %d bytes, header declares %d", ErrTruncated, len(body), size)
		case len(body) > int(size):
			return nil, fmt.Errorf("%w: header declares %d bytes", ErrSizeMismatch, size)
		}
		f.Body = body
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint32(f.Header.Compression))
	}

	return f, nil
}

// Decoder reads little-endian values and chunks from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Offset returns the current read position.
func (d *Decoder) Offset() int {
	return d.pos
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.pos, d.Remaining())
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadUint32 reads a little-endian uint32.
func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

// ReadFloat32 reads a little-endian IEEE-754 float.
func (d *Decoder) ReadFloat32() (float32, error) {
	v, err := d.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBytes reads n raw bytes. The result aliases the decoder's data.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	return d.take(n)
}

// ReadValue decodes a fixed-size value written with Writer.WriteValue.
func (d *Decoder) ReadValue(v any) error {
	size := binary.Size(v)
	if size < 0 {
		return fmt.Errorf("chunkio: %T has no fixed size", v)
	}
	b, err := d.take(size)
	if err != nil {
		return err
	}
	if _, err := binary.Decode(b, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("decoding %T: %w", v, err)
	}
	return nil
}

// ReadChunk reads the next chunk header and its payload.
func (d *Decoder) ReadChunk() (Chunk, error) {
	offset := d.pos
	tag, err := d.ReadUint32()
	if err != nil {
		return Chunk{}, err
	}
	length, err := d.ReadUint32()
	if err != nil {
		return Chunk{}, err
	}
	payload, err := d.take(int(length))
	if err != nil {
		return Chunk{}, fmt.Errorf("chunk %d payload: %w", tag, err)
	}
	return Chunk{Tag: Tag(tag), Offset: offset, Payload: payload}, nil
}

// ReadChunks splits data into a flat sequence of chunks. It fails if data
// does not end exactly on a chunk boundary.
func ReadChunks(data []byte) ([]Chunk, error) {
	d := NewDecoder(data)
	var chunks []Chunk
	for d.Remaining() > 0 {
		c, err := d.ReadChunk()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}
