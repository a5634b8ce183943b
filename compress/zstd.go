package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdDecoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return d
	},
}

// zstdSizedDecoderPool decoders never write past the capacity of the DecodeAll destination.
var zstdSizedDecoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
			zstd.WithDecodeAllCapLimit(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return d
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		e, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return e
	},
}

// ZstdCodec compresses with Zstandard using pooled encoders and decoders.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// Compress implements Compressor.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	e := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(e)

	return e.EncodeAll(data, nil), nil
}

// Decompress implements Decompressor.
func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	d := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(d)

	out, err := d.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return out, nil
}

// DecompressSize implements SizedDecompressor. A frame that declares a content size other than
// size is rejected before decoding. Otherwise output is limited to a buffer of capacity size.
func (ZstdCodec) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if size != 0 {
			return nil, sizeErr(0, size)
		}
		return nil, nil
	}
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd header: %w", err)
	}
	if h.HasFCS && h.FrameContentSize != uint64(size) {
		return nil, sizeErr(int(min(h.FrameContentSize, MaxDecodedSize+1)), size)
	}

	d := zstdSizedDecoderPool.Get().(*zstd.Decoder)
	defer zstdSizedDecoderPool.Put(d)

	out, err := d.DecodeAll(data, make([]byte, 0, size))
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return nil, fmt.Errorf("%w: frame decodes to more than %d bytes", ErrSize, size)
	}
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out) != size {
		return nil, sizeErr(len(out), size)
	}
	return out, nil
}
