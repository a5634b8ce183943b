// Package compress holds the codecs a batch frame payload can be compressed with.
//
// Every Codec returned by this package is stateless apart from internal pools and is safe for
// concurrent use.
package compress

import (
	"errors"
	"fmt"
)

// MaxDecodedSize is the most any codec will decompress into a single buffer.
const MaxDecodedSize = 1 << 30

// ErrSize is returned by DecompressSize when the payload does not decode to exactly the
// requested number of bytes. It is returned before any buffer is allocated when the codec
// records its decoded length.
var ErrSize = errors.New("decompressed size mismatch")

// Type identifies a compression codec. It is stored in 3 bits of a frame header, so there can
// be at most 8 of them.
type Type uint8

const (
	None   Type = 0 // payload is stored as is
	Zstd   Type = 1 // github.com/klauspost/compress/zstd
	S2     Type = 2 // github.com/klauspost/compress/s2
	LZ4    Type = 3 // github.com/pierrec/lz4/v4 block format
	Snappy Type = 4 // github.com/golang/snappy block format
)

// MaxType is the largest value a Type can have on the wire.
const MaxType Type = 7

// Types lists every supported Type.
var Types = []Type{None, Zstd, S2, LZ4, Snappy}

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Zstd:
		return "Zstd"
	case S2:
		return "S2"
	case LZ4:
		return "LZ4"
	case Snappy:
		return "Snappy"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Compressor compresses a payload. The returned slice is owned by the caller and data is not
// modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor. The returned slice is owned by the caller.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor decompresses a payload whose decoded length is known in advance. It never
// allocates more than size bytes for the output and fails with ErrSize when the payload
// decodes to any other length.
type SizedDecompressor interface {
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec is a Compressor, a Decompressor and a SizedDecompressor.
type Codec interface {
	Compressor
	Decompressor
	SizedDecompressor
}

func checkSize(size int) error {
	if size < 0 || size > MaxDecodedSize {
		return fmt.Errorf("%w: size %d outside [0, %d]", ErrSize, size, MaxDecodedSize)
	}
	return nil
}

func sizeErr(got, want int) error {
	return fmt.Errorf("%w: got %d bytes, want %d", ErrSize, got, want)
}

var builtin = map[Type]Codec{
	None:   NoOp{},
	Zstd:   ZstdCodec{},
	S2:     S2Codec{},
	LZ4:    LZ4Codec{},
	Snappy: SnappyCodec{},
}

// GetCodec returns the Codec for t.
func GetCodec(t Type) (Codec, error) {
	if c, ok := builtin[t]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported compression type: %s", t)
}

// NoOp passes data through.
type NoOp struct{}

var _ Codec = NoOp{}

// Compress returns data.
func (NoOp) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data.
func (NoOp) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns data if it is exactly size bytes long.
func (NoOp) DecompressSize(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, sizeErr(len(data), size)
	}
	return data, nil
}
