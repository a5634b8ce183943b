package bits

import (
	"testing"
)

// FuzzWriteReadBits fuzzes the WriteBits/ReadBits round-trip and checks that no bit outside of
// the written span changes.
func FuzzWriteReadBits(f *testing.F) {
	// (b0, b1, start, n, val)
	f.Add(uint8(0), uint8(0), uint8(0), uint8(8), uint8(255))
	f.Add(uint8(0xFF), uint8(0xFF), uint8(6), uint8(5), uint8(0))
	f.Add(uint8(0x0F), uint8(0xF0), uint8(4), uint8(4), uint8(9))
	f.Add(uint8(0xAA), uint8(0x55), uint8(7), uint8(1), uint8(1))
	f.Add(uint8(0x12), uint8(0x34), uint8(8), uint8(8), uint8(0x77))

	f.Fuzz(func(t *testing.T, b0, b1, start, n, val uint8) {
		start %= 16
		n = n%8 + 1
		if uint64(start)+uint64(n) > 16 {
			return
		}

		buf := []byte{b0, b1}
		orig := []byte{b0, b1}
		WriteBits(buf, uint64(start), n, val)

		want := val & LowMask(n)
		if got := ReadBits(buf, uint64(start), n); got != want {
			t.Fatalf("FuzzWriteReadBits: round-trip failed: got %d, want %d (start=%d, n=%d)", got, want, start, n)
		}

		for bit := uint8(0); bit < 16; bit++ {
			if bit >= start && bit < start+n {
				continue
			}
			if GetBit(buf[bit/8], bit%8) != GetBit(orig[bit/8], bit%8) {
				t.Fatalf("FuzzWriteReadBits: bit %d changed (start=%d, n=%d): before %s, after %s",
					bit, start, n, BytesInBinary(orig), BytesInBinary(buf))
			}
		}
	})
}

// FuzzSetGetBit fuzzes the SetBit/GetBit functions.
func FuzzSetGetBit(f *testing.F) {
	f.Add(uint8(0), uint8(0), true)
	f.Add(uint8(0), uint8(7), true)
	f.Add(uint8(255), uint8(0), false)
	f.Add(uint8(255), uint8(7), false)
	f.Add(uint8(128), uint8(7), false)

	f.Fuzz(func(t *testing.T, store, pos uint8, val bool) {
		if pos > 7 {
			return
		}

		newStore := SetBit(store, pos, val)
		if GetBit(newStore, pos) != val {
			t.Errorf("FuzzSetGetBit: got %v, want %v (store=%d, pos=%d)", !val, val, store, pos)
		}

		for i := uint8(0); i < 8; i++ {
			if i != pos && GetBit(newStore, i) != GetBit(store, i) {
				t.Errorf("FuzzSetGetBit: bit %d changed when setting %d", i, pos)
			}
		}
	})
}
