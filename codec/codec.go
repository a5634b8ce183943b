// Package codec reads and writes fields of 1 to 64 bits at arbitrary bit offsets inside a byte
// buffer.
//
// A field is split into ceil(width/8) chunks. Chunk i holds value bits [8i, 8i+8), so the
// least significant byte of the value is the first chunk written at the field's offset and
// the last chunk holds whatever is left over. Each chunk is moved with the bits package
// primitives, which never touch bits outside of the chunk's span.
//
// Nothing in this package validates offsets or widths. Offsets are expected to come from a
// layout.Plan, which guarantees every field fits in the buffer.
package codec

import (
	"github.com/bearlytools/bitfield/field"
	"github.com/bearlytools/bitfield/internal/bits"
	"golang.org/x/exp/constraints"
)

// Get returns the width bit value stored at offset. Bits above width are always 0.
func Get(buf []byte, offset uint64, width uint8) uint64 {
	var v uint64

	left := width
	at := offset
	for shift := uint8(0); left > 0; shift += 8 {
		n := min(left, 8)
		v |= uint64(bits.ReadBits(buf, at, n)) << shift
		left -= n
		at += uint64(n)
	}
	return v
}

// Set stores the low width bits of v at offset. Bits of v above width are dropped. Callers
// that need to know about dropped bits must check v against field.MaxValue(width) first.
func Set(buf []byte, offset uint64, width uint8, v uint64) {
	left := width
	at := offset
	for left > 0 {
		n := min(left, 8)
		bits.WriteBits(buf, at, n, uint8(v))
		v >>= 8
		left -= n
		at += uint64(n)
	}
}

// GetBool returns the single bit at offset as a bool.
func GetBool(buf []byte, offset uint64) bool {
	return bits.GetBit(buf[offset/8], uint8(offset%8))
}

// SetBool stores b as a single bit at offset.
func SetBool(buf []byte, offset uint64, b bool) {
	i := offset / 8
	buf[i] = bits.SetBit(buf[i], uint8(offset%8), b)
}

// GetAs is Get returning the value as U. U should be at least field.ContainerBits(width) wide,
// otherwise the high bits of the value are lost in the conversion.
func GetAs[U constraints.Unsigned](buf []byte, offset uint64, width uint8) U {
	return U(Get(buf, offset, width))
}

// SetAs is Set for a value of type U.
func SetAs[U constraints.Unsigned](buf []byte, offset uint64, width uint8, v U) {
	Set(buf, offset, width, uint64(v))
}

// GetBytes writes the field at offset into dst as field.Chunks(width) bytes, least significant
// byte first. dst must be at least that long. Bytes of dst past the chunk count are not
// modified.
func GetBytes(buf []byte, offset uint64, width uint8, dst []byte) {
	left := width
	at := offset
	for i := 0; left > 0; i++ {
		n := min(left, 8)
		dst[i] = bits.ReadBits(buf, at, n)
		left -= n
		at += uint64(n)
	}
}

// SetBytes is the inverse of GetBytes. src holds the value least significant byte first and
// must be at least field.Chunks(width) long.
func SetBytes(buf []byte, offset uint64, width uint8, src []byte) {
	left := width
	at := offset
	for i := 0; left > 0; i++ {
		n := min(left, 8)
		bits.WriteBits(buf, at, n, src[i])
		left -= n
		at += uint64(n)
	}
}

// Fits reports if v can be stored in width bits without truncation.
func Fits(v uint64, width uint8) bool {
	return v <= field.MaxValue(width)
}
