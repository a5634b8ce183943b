package compress

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

// S2Codec compresses with S2, the snappy extension from klauspost/compress.
type S2Codec struct{}

var _ Codec = S2Codec{}

// Compress implements Compressor.
func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Encode(nil, data), nil
}

// Decompress implements Decompressor.
func (S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Decode(nil, data)
}

// DecompressSize implements SizedDecompressor. The length prefix of the block is checked
// against size before the output is allocated.
func (S2Codec) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeErr(0, size)
		}
		return nil, nil
	}
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, sizeErr(n, size)
	}
	return s2.Decode(make([]byte, size), data)
}

// SnappyCodec compresses with the snappy block format.
type SnappyCodec struct{}

var _ Codec = SnappyCodec{}

// Compress implements Compressor.
func (SnappyCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return snappy.Encode(nil, data), nil
}

// Decompress implements Decompressor.
func (SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return snappy.Decode(nil, data)
}

// DecompressSize implements SizedDecompressor.
func (SnappyCodec) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeErr(0, size)
		}
		return nil, nil
	}
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, sizeErr(n, size)
	}
	return snappy.Decode(make([]byte, size), data)
}
