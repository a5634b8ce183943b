package codec

import (
	"testing"

	"github.com/bearlytools/bitfield/field"
)

// FuzzSetGet fuzzes the Set/Get round-trip for any width at any offset in a 10 byte buffer.
func FuzzSetGet(f *testing.F) {
	// (val, offset, width, background)
	f.Add(uint64(0), uint8(0), uint8(64), uint8(0xFF))
	f.Add(uint64(0xFFFFFFFFFFFFFFFF), uint8(7), uint8(64), uint8(0))
	f.Add(uint64(31), uint8(6), uint8(5), uint8(0xAA))
	f.Add(uint64(1), uint8(15), uint8(1), uint8(0))

	f.Fuzz(func(t *testing.T, val uint64, offset, width, bg uint8) {
		width = width%field.MaxBits + 1
		offset %= 16
		val &= field.MaxValue(width)

		buf := make([]byte, 10)
		for i := range buf {
			buf[i] = bg
		}
		Set(buf, uint64(offset), width, val)

		if got := Get(buf, uint64(offset), width); got != val {
			t.Fatalf("FuzzSetGet: got %d, want %d (offset=%d, width=%d)", got, val, offset, width)
		}
		if offset > 0 {
			want := (uint64(bg) | uint64(bg)<<8) & field.MaxValue(offset)
			if got := Get(buf, 0, offset); got != want {
				t.Fatalf("FuzzSetGet: bits before the field changed (offset=%d, width=%d)", offset, width)
			}
		}
	})
}
