package bits

import "fmt"

// assertSpan panics if n is not in [1, 8] or [bitIdx, bitIdx+n) does not fit in buf. It only
// does work when built with the bitfielddebug tag. Offsets come from the layout planner, so a
// bad span is a programming error in the caller and is not checked in normal builds.
func assertSpan(buf []byte, bitIdx uint64, n uint8) {
	if !debug {
		return
	}
	if n == 0 || n > 8 {
		panic(fmt.Sprintf("bits: length %d is outside [1, 8]", n))
	}
	if bitIdx+uint64(n) > uint64(len(buf))*8 {
		panic(fmt.Sprintf("bits: span [%d, %d) exceeds a %d bit buffer", bitIdx, bitIdx+uint64(n), len(buf)*8))
	}
}
