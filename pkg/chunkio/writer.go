package chunkio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer accumulates a container in memory.
//
// Chunks nest as a stack: CloseChunk always closes the most recently opened
// chunk and back-patches its length field. A Writer is owned by a single
// export run and is not safe for concurrent use.
type Writer struct {
	compression Compression
	body        []byte
	open        []openChunk
	out         []byte
	finalized   bool
}

type openChunk struct {
	tag       Tag
	lengthPos int
}

// NewWriter creates a writer that compresses the body on Finalize when c is
// not CompressionNone.
func NewWriter(c Compression) *Writer {
	return &Writer{
		compression: c,
		body:        make([]byte, 0, 64*1024),
	}
}

// Compression returns the mode the writer was created with.
func (w *Writer) Compression() Compression {
	return w.compression
}

// Depth returns the number of currently open chunks.
func (w *Writer) Depth() int {
	return len(w.open)
}

// Len returns the number of body bytes written so far.
func (w *Writer) Len() int {
	return len(w.body)
}

// OpenChunk starts a chunk with the given tag and reserves its length field.
func (w *Writer) OpenChunk(tag Tag) error {
	if err := w.reserve(chunkHeaderSize); err != nil {
		return err
	}
	w.body = binary.LittleEndian.AppendUint32(w.body, uint32(tag))
	w.open = append(w.open, openChunk{tag: tag, lengthPos: len(w.body)})
	w.body = binary.LittleEndian.AppendUint32(w.body, 0)
	return nil
}

// CloseChunk closes the most recently opened chunk, writing the byte count of
// everything emitted since it was opened into its length field.
//
// Closing with no open chunk is a programming error and panics.
func (w *Writer) CloseChunk() error {
	if len(w.open) == 0 {
		panic("chunkio: CloseChunk without matching OpenChunk")
	}
	top := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]

	length := len(w.body) - (top.lengthPos + 4)
	if uint64(length) > math.MaxUint32 {
		return fmt.Errorf("%w: chunk %d is %d bytes", ErrTooLarge, top.tag, length)
	}
	binary.LittleEndian.PutUint32(w.body[top.lengthPos:], uint32(length))
	return nil
}

// Chunk writes a complete chunk: it opens tag, runs fn and closes the chunk
// again, also when fn fails.
func (w *Writer) Chunk(tag Tag, fn func() error) (err error) {
	if err := w.OpenChunk(tag); err != nil {
		return err
	}
	defer func() {
		if cerr := w.CloseChunk(); err == nil {
			err = cerr
		}
	}()
	return fn()
}

// Write appends raw bytes. It implements io.Writer so the writer can be used
// with binary.Write.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.reserve(len(p)); err != nil {
		return 0, err
	}
	w.body = append(w.body, p...)
	return len(p), nil
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	_, err := w.Write(p)
	return err
}

// WriteValue appends a fixed-size value (or struct/array of fixed-size values)
// in little-endian order.
func (w *Writer) WriteValue(v any) error {
	if err := w.reserve(binary.Size(v)); err != nil {
		return err
	}
	out, err := binary.Append(w.body, binary.LittleEndian, v)
	if err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	w.body = out
	return nil
}

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	if err := w.reserve(4); err != nil {
		return err
	}
	w.body = binary.LittleEndian.AppendUint32(w.body, v)
	return nil
}

// WriteInt32 appends a little-endian int32.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteFloat32 appends a little-endian IEEE-754 float.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteString writes a 4-byte length followed by the raw string bytes.
// No terminator is written and no encoding conversion takes place.
func (w *Writer) WriteString(s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return fmt.Errorf("%w: string of %d bytes", ErrTooLarge, len(s))
	}
	if err := w.reserve(4 + len(s)); err != nil {
		return err
	}
	w.body = binary.LittleEndian.AppendUint32(w.body, uint32(len(s)))
	w.body = append(w.body, s...)
	return nil
}

// Finalize ends the data: it checks every chunk was closed, prepends the
// header and compresses the body if requested. No writes are accepted
// afterwards.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	if len(w.open) != 0 {
		return fmt.Errorf("%w: %d chunk(s) still open, innermost tag %d",
			ErrUnclosedChunk, len(w.open), w.open[len(w.open)-1].tag)
	}

	out := make([]byte, 0, HeaderSize+len(w.body))
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, Version)
	out = binary.LittleEndian.AppendUint32(out, uint32(w.compression))

	switch w.compression {
	case CompressionNone:
		out = append(out, w.body...)
	case CompressionZlib:
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(w.body); err != nil {
			return fmt.Errorf("compressing body: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing body: %w", err)
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(len(w.body)))
		out = append(out, compressed.Bytes()...)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCompression, uint32(w.compression))
	}

	w.out = out
	w.body = nil
	w.finalized = true
	return nil
}

// Bytes returns the final container bytes. It is only valid after Finalize.
func (w *Writer) Bytes() ([]byte, error) {
	if !w.finalized {
		return nil, ErrNotFinalized
	}
	return w.out, nil
}

// WriteTo streams the final container to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	if !w.finalized {
		return 0, ErrNotFinalized
	}
	n, err := dst.Write(w.out)
	return int64(n), err
}

// reserve checks that n more bytes can be appended.
func (w *Writer) reserve(n int) error {
	if w.finalized {
		return ErrFinalized
	}
	if n < 0 {
		return fmt.Errorf("chunkio: value has no fixed size")
	}
	if uint64(len(w.body))+uint64(n) > math.MaxUint32 {
		return ErrTooLarge
	}
	return nil
}
