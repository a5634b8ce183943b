// Package bits provides bit manipulation utilities. This is not a replacement for math/bits.
//
// ReadBits and WriteBits are the primitives every packed field is built on: they move a
// 1 to 8 bit quantity in or out of a byte buffer at an absolute bit index. Bit 0 of a buffer
// is the least significant bit of buf[0], bit 8 is the least significant bit of buf[1], etc.
package bits

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// ReadBits returns the n bit value (1 <= n <= 8) whose least significant bit sits at
// bitIdx in buf. The value may span two bytes. bitIdx+n must not exceed len(buf)*8.
func ReadBits(buf []byte, bitIdx uint64, n uint8) uint8 {
	assertSpan(buf, bitIdx, n)

	i := bitIdx / 8
	k := uint8(bitIdx % 8)
	p := 8 - k // bits remaining in buf[i]

	if n <= p {
		if n == 8 {
			// k must be 0, the whole byte is the value.
			return buf[i]
		}
		return (buf[i] >> k) & LowMask(n)
	}

	lo := buf[i] >> k
	hi := buf[i+1] & LowMask(n-p)
	return lo | hi<<p
}

// WriteBits writes the low n bits (1 <= n <= 8) of v into buf starting at bitIdx. Every bit
// outside of [bitIdx, bitIdx+n) is left untouched, including the bits of any other field that
// shares a boundary byte. bitIdx+n must not exceed len(buf)*8.
func WriteBits(buf []byte, bitIdx uint64, n uint8, v uint8) {
	assertSpan(buf, bitIdx, n)

	i := bitIdx / 8
	k := uint8(bitIdx % 8)
	p := 8 - k

	v &= LowMask(n)

	if n <= p {
		head := buf[i]
		low := head & LowMask(k)
		mid := v << k
		high := head & HighMask(k+n)
		buf[i] = low | mid | high
		return
	}

	// The low p bits of v go to the top of buf[i], the rest to the bottom of buf[i+1].
	buf[i] = buf[i]&LowMask(k) | v<<k
	rest := n - p
	buf[i+1] = buf[i+1]&HighMask(rest) | v>>p
}

// LowMask returns a byte with the n lowest bits set. n >= 8 returns 0xFF.
func LowMask(n uint8) uint8 {
	if n >= 8 {
		return 0xFF
	}
	return uint8(1)<<n - 1
}

// HighMask returns a byte with every bit at or above position n set. n >= 8 returns 0,
// so a write ending exactly on a byte boundary keeps nothing above it.
func HighMask(n uint8) uint8 {
	return ^LowMask(n)
}

// Mask creates a mask for setting, getting and clearing a set of bits.
// start is the bit location you wish to start at and end is the bit you wish to end at (exclusive).
// Index starts at 0. So Mask(1, 4) will create a mask that includes bits at location 1 to 3.
// If start >= end or end is larger than the bit size of U, this will panic.
func Mask[U constraints.Unsigned](start, end uint64) U {
	size := sizeOf[U]()
	if start >= end {
		panic("start cannot be >= end")
	}
	if end > size {
		panic(fmt.Sprintf("end cannot be %d, as that is the largest amount of bits in an %d bit number", end, size))
	}

	var all U = ^U(0)
	m := all >> (size - (end - start))
	return m << start
}

// GetBit gets a single bit value from "store" in position "pos". true if set, false if not.
func GetBit[U constraints.Unsigned](store U, pos uint8) bool {
	if uint64(pos) >= sizeOf[U]() {
		panic(fmt.Sprintf("can't GetBit() a %d bit number at position %d", sizeOf[U](), pos))
	}
	return store&(1<<pos) != 0
}

// SetBit sets a single bit in "store" at position "pos" to value "val". If val is true,
// the bit is set to 1, if false, it is set to 0.
func SetBit[U constraints.Unsigned](store U, pos uint8, val bool) U {
	if uint64(pos) >= sizeOf[U]() {
		panic(fmt.Sprintf("can't SetBit() a %d bit number at position %d", sizeOf[U](), pos))
	}
	if val {
		return store | (1 << pos)
	}

	return store &^ (1 << pos)
}

// BytesInBinary renders bs as space separated binary octets, byte 0 first.
func BytesInBinary(bs []byte) string {
	buff := strings.Builder{}
	for i, n := range bs {
		if i > 0 {
			buff.WriteByte(' ')
		}
		buff.WriteString(fmt.Sprintf("%08b", n))
	}
	return buff.String()
}

func sizeOf[U constraints.Unsigned]() uint64 {
	var u U
	switch any(u).(type) {
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	case uint64:
		return 64
	}
	// uint and uintptr.
	u = ^U(0)
	var n uint64
	for u != 0 {
		u >>= 1
		n++
	}
	return n
}
