// Package endian picks the byte order of the multi byte integers in a batch frame header.
//
// Packed fields themselves are always least significant byte first and never consult this
// package. Only the fixed width header words of a frame can be written either way, so a
// frame produced on a big-endian host can be kept in that host's order.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Engine is both a binary.ByteOrder and a binary.AppendByteOrder. binary.LittleEndian and
// binary.BigEndian satisfy it.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Little returns the little-endian engine.
func Little() Engine {
	return binary.LittleEndian
}

// Big returns the big-endian engine.
func Big() Engine {
	return binary.BigEndian
}

// Native returns the engine matching the host's byte order.
func Native() Engine {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsBig reports if e writes the most significant byte first.
func IsBig(e Engine) bool {
	return e.Uint16([]byte{0x01, 0x00}) == 0x0100
}

// IsNative reports if e is the host's byte order.
func IsNative(e Engine) bool {
	return IsBig(e) == IsBig(Native())
}

// FromFlag is the engine for a frame's endianness flag bit: false is little, true is big.
func FromFlag(big bool) Engine {
	if big {
		return Big()
	}
	return Little()
}
