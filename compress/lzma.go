package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/arloliu/jubako/format"
)

// LzmaCodec compresses a cluster body with raw LZMA (not the xz container
// format): a self-contained stream with its own properties/dictionary-size
// header, matching the original implementation's use of a standalone LZMA
// writer rather than the heavier xz framing.
type LzmaCodec struct{}

var _ Codec = LzmaCodec{}

func (LzmaCodec) Type() format.CompressionType { return format.CompressionLzma }

func (LzmaCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (LzmaCodec) NewDecoder(r io.Reader) (io.Reader, error) {
	return lzma.NewReader(r)
}
