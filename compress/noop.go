package compress

import (
	"io"

	"github.com/arloliu/jubako/format"
)

// NoOpCodec stores a cluster body uncompressed.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Type() format.CompressionType { return format.CompressionNone }

// Compress returns data unchanged. The returned slice shares data's backing
// array; callers must not mutate data afterwards.
func (NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoOpCodec) NewDecoder(r io.Reader) (io.Reader, error) { return r, nil }
