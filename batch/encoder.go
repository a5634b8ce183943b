package batch

import (
	"fmt"
	"io"
	"math"

	"github.com/bearlytools/bitfield/compress"
	"github.com/bearlytools/bitfield/endian"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/options"
	"github.com/bearlytools/bitfield/mapping"
	"github.com/bearlytools/bitfield/structs"
	"github.com/gostdlib/base/context"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxPayload is the largest uncompressed payload Decode accepts.
const MaxPayload = compress.MaxDecodedSize

// Encoder turns Records into frames. An Encoder is safe for concurrent use.
type Encoder struct {
	compression compress.Type
	codec       compress.Codec
	bigEndian   bool
	logger      *zap.Logger
}

// Option is an optional argument to NewEncoder.
type Option = options.Option[*Encoder]

// WithCompression compresses frame payloads with t. The default is compress.None.
func WithCompression(t compress.Type) Option {
	return options.New(func(e *Encoder) error {
		c, err := compress.GetCodec(t)
		if err != nil {
			return err
		}
		e.compression = t
		e.codec = c
		return nil
	})
}

// WithBigEndian writes header words most significant byte first.
func WithBigEndian() Option {
	return options.NoError(func(e *Encoder) {
		e.bigEndian = true
	})
}

// WithLittleEndian writes header words least significant byte first. This is the default.
func WithLittleEndian() Option {
	return options.NoError(func(e *Encoder) {
		e.bigEndian = false
	})
}

// WithNativeEndian writes header words in the host's byte order.
func WithNativeEndian() Option {
	return options.NoError(func(e *Encoder) {
		e.bigEndian = endian.IsBig(endian.Native())
	})
}

// WithLogger sets the logger. It defaults to Logger().
func WithLogger(l *zap.Logger) Option {
	return options.NoError(func(e *Encoder) {
		e.logger = l
	})
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...Option) (*Encoder, error) {
	e := &Encoder{codec: compress.NoOp{}}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = Logger()
	}
	return e, nil
}

// Encode returns r as a frame.
func (e *Encoder) Encode(ctx context.Context, r *Records) ([]byte, error) {
	return e.AppendEncode(ctx, nil, r)
}

// AppendEncode appends the frame for r to dst.
func (e *Encoder) AppendEncode(ctx context.Context, dst []byte, r *Records) ([]byte, error) {
	h, payload, err := e.prepare(r)
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, make([]byte, HeaderSize)...)
	h.put(dst[start:])
	dst = append(dst, payload...)

	e.logger.Debug(
		"encoded frame",
		zap.String("schema", r.m.Name),
		zap.String("fingerprint", fmt.Sprintf("%016x", h.fingerprint)),
		zap.Int("records", r.n),
		zap.Stringer("compression", e.compression),
		zap.Int("bytes", len(dst)-start),
	)
	return dst, nil
}

// EncodeTo writes the frame for r to w with a single Write call. The frame is assembled in a
// pooled buffer.
func (e *Encoder) EncodeTo(ctx context.Context, w io.Writer, r *Records) (int, error) {
	buf := framePools.Get(ctx, HeaderSize+len(r.data))
	buf, err := e.AppendEncode(ctx, buf, r)
	defer framePools.Put(ctx, buf)
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

func (e *Encoder) prepare(r *Records) (header, []byte, error) {
	if uint64(r.m.TotalBytes) > math.MaxUint32 || uint64(r.n) > math.MaxUint32 {
		return header{}, nil, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(r.m.Name).
			Detail("%d records of %d bytes do not fit in a frame header", r.n, r.m.TotalBytes).
			Build()
	}
	payload, err := e.codec.Compress(r.data)
	if err != nil {
		return header{}, nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(r.m.Name).
			Cause(err).
			Detail("%s compression failed", e.compression).
			Build()
	}
	h := header{
		bigEndian:   e.bigEndian,
		compression: e.compression,
		fingerprint: r.m.Fingerprint(),
		recordSize:  uint32(r.m.TotalBytes),
		count:       uint32(r.n),
	}
	return h, payload, nil
}

// Decode reads a frame of m records. The frame must have been written for a Map with the same
// fingerprint. Every enum field of every record is checked.
func Decode(m *mapping.Map, frame []byte) (*Records, error) {
	h, err := readHeader(frame)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reading frame header")
	}
	if h.fingerprint != m.Fingerprint() {
		return nil, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
			Path(m.Name).
			Value(h.fingerprint).
			Detail("frame fingerprint %016x, schema fingerprint %016x", h.fingerprint, m.Fingerprint()).
			Build()
	}
	if int(h.recordSize) != m.TotalBytes {
		return nil, errors.New(errors.PhaseDecode, errors.KindSchemaMismatch).
			Path(m.Name).
			Value(h.recordSize).
			Detail("frame records are %d bytes, schema records are %d", h.recordSize, m.TotalBytes).
			Build()
	}
	want := uint64(h.recordSize) * uint64(h.count)
	if want > MaxPayload {
		return nil, errors.New(errors.PhaseDecode, errors.KindBufferSize).
			Path(m.Name).
			Value(want).
			Detail("payload of %d bytes is larger than %d", want, MaxPayload).
			Build()
	}

	c, err := compress.GetCodec(h.compression)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(m.Name).
			Cause(err).
			Build()
	}
	payload, err := c.DecompressSize(frame[HeaderSize:], int(want))
	if err != nil {
		kind := errors.KindInvalidData
		if errors.Is(err, compress.ErrSize) {
			kind = errors.KindBufferSize
		}
		return nil, errors.New(errors.PhaseDecode, kind).
			Path(m.Name).
			Cause(err).
			Detail("%s decompression failed", h.compression).
			Build()
	}
	if uint64(len(payload)) != want {
		return nil, errors.BufferSize(errors.PhaseDecode, []string{m.Name}, len(payload), int(want))
	}

	r := &Records{m: m, n: int(h.count)}
	if h.compression == compress.None {
		r.data = append([]byte(nil), payload...)
	} else {
		r.data = payload
	}
	if want == 0 {
		// Records of an empty struct carry no bytes to check.
		r.data = []byte{}
		return r, nil
	}
	for i := range r.n {
		if err := structs.ValidateBytes(m, r.record(i)); err != nil {
			return nil, pkgerrors.Wrapf(err, "record %d", i)
		}
	}

	Logger().Debug(
		"decoded frame",
		zap.String("schema", m.Name),
		zap.Uint32("records", h.count),
		zap.Stringer("compression", h.compression),
	)
	return r, nil
}
