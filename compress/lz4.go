package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxSize bounds how far Decompress grows its buffer before deciding the input is corrupt.
const lz4MaxSize = 128 << 20

// LZ4Codec compresses with the LZ4 block format. The block format does not record the
// uncompressed size, so Decompress grows its output buffer until the block fits.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// Compress implements Compressor.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Decompress implements Decompressor.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	return lz4Decompress(data, len(data)*4)
}

// DecompressSize implements SizedDecompressor. The output buffer is exactly size bytes and
// is never grown.
func (LZ4Codec) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeErr(0, size)
		}
		return nil, nil
	}
	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("%w: block is corrupt or decodes to more than %d bytes", ErrSize, size)
		}
		return nil, err
	}
	if n != size {
		return nil, sizeErr(n, size)
	}
	return buf, nil
}

func lz4Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	size = max(size, 64)
	for size <= lz4MaxSize {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && size < lz4MaxSize {
				size *= 2
				continue
			}
			return nil, err
		}
		return buf[:n], nil
	}
	return nil, lz4.ErrInvalidSourceShortBuffer
}
