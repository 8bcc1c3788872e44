package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/jubako/format"
)

// Lz4Codec compresses a cluster body using the LZ4 frame format, which is
// self-delimiting and streamable, unlike the raw LZ4 block format (the
// frame carries its own end marker, so NewDecoder can hand back a plain
// io.Reader without the caller first learning the compressed length).
type Lz4Codec struct{}

var _ Codec = Lz4Codec{}

func (Lz4Codec) Type() format.CompressionType { return format.CompressionLz4 }

func (Lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (Lz4Codec) NewDecoder(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}
