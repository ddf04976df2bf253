package chunkio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParse_Validation(t *testing.T) {
	valid := func() []byte {
		w := NewWriter(CompressionNone)
		w.Finalize()
		data, _ := w.Bytes()
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid", valid(), nil},
		{"empty data", []byte{}, ErrTruncated},
		{"truncated header", []byte("RDX"), ErrTruncated},
		{"invalid magic", append([]byte("XXXX"), make([]byte, 8)...), ErrInvalidMagic},
		{"bad version", append([]byte("RDXF"), 9, 0, 0, 0, 0, 0, 0, 0), ErrUnsupportedVersion},
		{"bad compression", append([]byte("RDXF"), 1, 0, 0, 0, 7, 0, 0, 0), ErrUnknownCompression},
		{"zlib missing size", append([]byte("RDXF"), 1, 0, 0, 0, 1, 0, 0, 0), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// zlibContainer builds a zlib container around body with an arbitrary
// declared size.
func zlibContainer(t *testing.T, body []byte, size uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(Magic)
	binary.Write(&buf, binary.LittleEndian, uint32(Version))
	binary.Write(&buf, binary.LittleEndian, uint32(CompressionZlib))
	binary.Write(&buf, binary.LittleEndian, size)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParse_ZlibDeclaredSize(t *testing.T) {
	body := []byte("0123456789")

	tests := []struct {
		name    string
		size    uint32
		wantErr error
	}{
		{"exact", 10, nil},
		{"huge declared size", 0xFFFFFFFF, ErrTruncated},
		{"short declared size", 4, ErrSizeMismatch},
		{"zero declared size", 0, ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(zlibContainer(t, body, tt.size))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !bytes.Equal(f.Body, body) {
					t.Errorf("body: got %q", f.Body)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecoder_Primitives(t *testing.T) {
	w := NewWriter(CompressionNone)
	w.WriteUint32(42)
	w.WriteInt32(-7)
	w.WriteFloat32(1.5)
	w.WriteString("root")
	w.WriteBytes([]byte{9, 8})
	w.Finalize()
	data, _ := w.Bytes()

	d := NewDecoder(data[HeaderSize:])
	if v, _ := d.ReadUint32(); v != 42 {
		t.Errorf("uint32: got %d", v)
	}
	if v, _ := d.ReadInt32(); v != -7 {
		t.Errorf("int32: got %d", v)
	}
	if v, _ := d.ReadFloat32(); v != 1.5 {
		t.Errorf("float32: got %v", v)
	}
	if v, _ := d.ReadString(); v != "root" {
		t.Errorf("string: got %q", v)
	}
	if v, _ := d.ReadBytes(2); v[0] != 9 || v[1] != 8 {
		t.Errorf("bytes: got %v", v)
	}
	if _, err := d.ReadUint32(); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated past end, got %v", err)
	}
}

func TestReadChunks_TruncatedPayload(t *testing.T) {
	// tag 1, declared length 10, only 2 payload bytes
	data := []byte{1, 0, 0, 0, 10, 0, 0, 0, 0xAA, 0xBB}
	if _, err := ReadChunks(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestParse_RawStringBytes(t *testing.T) {
	// Strings are passed through without any encoding conversion.
	raw := string([]byte{0xC7, 0xD1, 0x00, 0xFF})
	w := NewWriter(CompressionZlib)
	w.WriteString(raw)
	w.Finalize()
	data, _ := w.Bytes()

	f, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewDecoder(f.Body).ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != raw {
		t.Errorf("got %q, want %q", got, raw)
	}
}
