package compress

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func payloads() map[string][]byte {
	rng := rand.New(rand.NewPCG(1, 2))
	random := make([]byte, 64*1024)
	for i := range random {
		random[i] = byte(rng.Uint32())
	}
	return map[string][]byte{
		"single":     {0b00011011},
		"repetitive": bytes.Repeat([]byte{0x1B, 0x00, 0xEF}, 10000),
		"random":     random,
	}
}

func TestRoundTrip(t *testing.T) {
	for _, typ := range Types {
		c, err := GetCodec(typ)
		require.NoError(t, err)

		for name, data := range payloads() {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				compressed, err := c.Compress(data)
				require.NoError(t, err)

				got, err := c.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, got)
			})
		}
	}
}

func TestCompresses(t *testing.T) {
	data := payloads()["repetitive"]
	for _, typ := range Types {
		if typ == None {
			continue
		}
		c, err := GetCodec(typ)
		require.NoError(t, err)
		out, err := c.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(out), len(data)/4, typ.String())
	}
}

func TestEmpty(t *testing.T) {
	for _, typ := range Types {
		c, err := GetCodec(typ)
		require.NoError(t, err)

		out, err := c.Compress(nil)
		require.NoError(t, err)
		got, err := c.Decompress(out)
		require.NoError(t, err)
		require.Empty(t, got, typ.String())
	}
}

func TestDecompressSize(t *testing.T) {
	data := payloads()["repetitive"]
	for _, typ := range Types {
		c, err := GetCodec(typ)
		require.NoError(t, err)
		out, err := c.Compress(data)
		require.NoError(t, err)

		got, err := c.DecompressSize(out, len(data))
		require.NoError(t, err, typ.String())
		require.Equal(t, data, got, typ.String())

		for _, size := range []int{0, 1, len(data) - 1, len(data) + 1, -1, MaxDecodedSize + 1} {
			_, err = c.DecompressSize(out, size)
			require.ErrorIs(t, err, ErrSize, "%s: size %d", typ, size)
		}

		got, err = c.DecompressSize(nil, 0)
		require.NoError(t, err, typ.String())
		require.Empty(t, got, typ.String())
		_, err = c.DecompressSize(nil, 8)
		require.ErrorIs(t, err, ErrSize, typ.String())
	}
}

func TestDecompressSizeLengthPrefix(t *testing.T) {
	// Claims 1 GiB of output.
	prefix := []byte{0x80, 0x80, 0x80, 0x80, 0x04}
	for _, c := range []Codec{S2Codec{}, SnappyCodec{}} {
		_, err := c.DecompressSize(prefix, 2)
		require.ErrorIs(t, err, ErrSize)
	}

	// Single segment zstd frame header with an 8 byte content size of 1 GiB.
	frame := []byte{0x28, 0xB5, 0x2F, 0xFD, 0xE0, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00}
	_, err := ZstdCodec{}.DecompressSize(frame, 2)
	require.ErrorIs(t, err, ErrSize)
}

func TestCorrupt(t *testing.T) {
	for _, typ := range []Type{Zstd, S2, Snappy} {
		c, err := GetCodec(typ)
		require.NoError(t, err)
		_, err = c.Decompress([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
		require.Error(t, err, typ.String())
	}
}

func TestGetCodec(t *testing.T) {
	_, err := GetCodec(MaxType)
	require.Error(t, err)
	require.Equal(t, "Type(7)", MaxType.String())
	require.Equal(t, "Snappy", Snappy.String())
}
