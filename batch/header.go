package batch

import (
	"github.com/bearlytools/bitfield/codec"
	"github.com/bearlytools/bitfield/compress"
	"github.com/bearlytools/bitfield/endian"
	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/mapping"
)

// Magic starts every frame.
const Magic uint16 = 0xB17F

// headerMap is the layout of a frame header. The single bit flags are read and written
// with the codec. The whole byte words are written with the frame's endian.Engine.
var headerMap = mapping.NewBuilder("FrameHeader").
	Uint("magic", 16).
	Bool("big_endian").
	Uint("compression", 3).
	Reserved("flags_reserved", 4).
	Reserved("reserved", 8).
	Uint("fingerprint", 64).
	Uint("record_size", 32).
	Uint("count", 32).
	MustBuild()

// HeaderSize is the size of a frame header in bytes.
var HeaderSize = headerMap.TotalBytes

var (
	hMagic       = headerMap.MustByName("magic")
	hBigEndian   = headerMap.MustByName("big_endian")
	hCompression = headerMap.MustByName("compression")
	hFlagsRsv    = headerMap.MustByName("flags_reserved")
	hReserved    = headerMap.MustByName("reserved")
	hFingerprint = headerMap.MustByName("fingerprint")
	hRecordSize  = headerMap.MustByName("record_size")
	hCount       = headerMap.MustByName("count")
)

type header struct {
	bigEndian   bool
	compression compress.Type
	fingerprint uint64
	recordSize  uint32
	count       uint32
}

func (h header) engine() endian.Engine {
	return endian.FromFlag(h.bigEndian)
}

// put writes h into b, which must be at least HeaderSize long.
func (h header) put(b []byte) {
	clear(b[:HeaderSize])
	e := h.engine()

	e.PutUint16(b[hMagic.Offset/8:], Magic)
	codec.SetBool(b, hBigEndian.Offset, h.bigEndian)
	codec.Set(b, hCompression.Offset, hCompression.Bits, uint64(h.compression))
	e.PutUint64(b[hFingerprint.Offset/8:], h.fingerprint)
	e.PutUint32(b[hRecordSize.Offset/8:], h.recordSize)
	e.PutUint32(b[hCount.Offset/8:], h.count)
}

// readHeader parses the header at the front of frame.
func readHeader(frame []byte) (header, error) {
	if len(frame) < HeaderSize {
		return header{}, errors.BufferSize(errors.PhaseDecode, []string{headerMap.Name}, len(frame), HeaderSize)
	}
	h := header{
		bigEndian:   codec.GetBool(frame, hBigEndian.Offset),
		compression: compress.Type(codec.Get(frame, hCompression.Offset, hCompression.Bits)),
	}
	e := h.engine()

	if m := e.Uint16(frame[hMagic.Offset/8:]); m != Magic {
		return header{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(headerMap.Name, hMagic.Name).
			Value(m).
			Detail("not a frame, magic is %#04x", m).
			Build()
	}
	for _, f := range []*mapping.FieldDescr{hFlagsRsv, hReserved} {
		if v := codec.Get(frame, f.Offset, f.Bits); v != 0 {
			return header{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(headerMap.Name, f.Name).
				Value(v).
				Detail("reserved header bits are set").
				Build()
		}
	}
	h.fingerprint = e.Uint64(frame[hFingerprint.Offset/8:])
	h.recordSize = e.Uint32(frame[hRecordSize.Offset/8:])
	h.count = e.Uint32(frame[hCount.Offset/8:])
	return h, nil
}
