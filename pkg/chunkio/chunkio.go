// Package chunkio implements the chunked, length-prefixed binary container
// used by exported asset files.
//
// A file is a fixed header followed by a body. The body is a sequence of
// chunks, each framed as [uint32 tag][uint32 length][payload]; a payload may
// itself contain chunks. All integers are little-endian.
//
// When compression is enabled the body is stored as
// [uint32 uncompressed_size][zlib stream] so readers can pre-allocate.
package chunkio

import (
	"errors"
	"fmt"
)

// Magic identifies a container file.
const Magic = "RDXF"

// Version is the container layout version written by Writer.
const Version uint32 = 1

// HeaderSize is the size of the file header in bytes: magic, version and
// compression mode.
const HeaderSize = 12

// chunkHeaderSize is the size of a chunk's tag and length fields.
const chunkHeaderSize = 8

// Container errors.
var (
	ErrInvalidMagic       = errors.New("invalid container magic: expected 'RDXF'")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrUnknownCompression = errors.New("unknown compression mode")
	ErrTruncated          = errors.New("truncated container data")
	ErrSizeMismatch       = errors.New("decompressed body exceeds declared size")
	ErrFinalized          = errors.New("chunk writer already finalized")
	ErrNotFinalized       = errors.New("chunk writer not finalized")
	ErrUnclosedChunk      = errors.New("unclosed chunk")
	ErrTooLarge           = errors.New("container data exceeds 4 GiB")
)

// Compression selects how the body is stored.
type Compression uint32

const (
	CompressionNone Compression = 0 // Body stored as-is
	CompressionZlib Compression = 1 // Whole body deflated with zlib
)

// String returns a human-readable compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(c))
	}
}

// ParseCompression converts a config name into a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "zlib", "deflate":
		return CompressionZlib, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// Tag identifies the type of a chunk. The values are defined by the format
// built on top of this package.
type Tag uint32
