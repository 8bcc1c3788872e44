package compress

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/jubako/format"
)

func allCodecs() []Codec {
	return []Codec{NoOpCodec{}, Lz4Codec{}, LzmaCodec{}, ZstdCodec{}}
}

func TestCodecRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 256)

	for _, codec := range allCodecs() {
		codec := codec
		t.Run(codec.Type().String(), func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			dec, err := codec.NewDecoder(bytes.NewReader(compressed))
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			require.Equal(t, payload, got)
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, codec := range allCodecs() {
		codec := codec
		t.Run(codec.Type().String(), func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)

			dec, err := codec.NewDecoder(bytes.NewReader(compressed))
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionLz4,
		format.CompressionLzma,
		format.CompressionZstd,
	} {
		codec, err := CreateCodec(ct)
		require.NoError(t, err)
		require.Equal(t, ct, codec.Type())
	}

	_, err := CreateCodec(format.CompressionType(0xFF))
	require.Error(t, err)
}
