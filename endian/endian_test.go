package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngines(t *testing.T) {
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, Little().AppendUint32(nil, 0x01020304))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, Big().AppendUint32(nil, 0x01020304))

	require.False(t, IsBig(Little()))
	require.True(t, IsBig(Big()))
	require.True(t, IsBig(FromFlag(true)))
	require.False(t, IsBig(FromFlag(false)))
}

func TestNative(t *testing.T) {
	n := Native()
	require.True(t, IsNative(n))
	require.True(t, n == binary.LittleEndian || n == binary.BigEndian)

	other := Big()
	if IsBig(n) {
		other = Little()
	}
	require.False(t, IsNative(other))
}
