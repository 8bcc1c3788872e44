package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/jubako/format"
)

// zstdEncoderPool pools zstd encoders; the library's encoders are safe to
// reuse across unrelated inputs and reuse avoids re-paying warmup cost.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			panic(err)
		}

		return enc
	},
}

// ZstdCodec compresses a cluster body with Zstandard.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func (ZstdCodec) Type() format.CompressionType { return format.CompressionZstd }

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	if _, err := enc.Write(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (ZstdCodec) NewDecoder(r io.Reader) (io.Reader, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}

	return dec.IOReadCloser(), nil
}
