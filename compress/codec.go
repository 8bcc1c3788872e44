package compress

import (
	"io"

	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
)

// Codec is a cluster-body compression algorithm.
type Codec interface {
	// Type returns the format.CompressionType this codec implements.
	Type() format.CompressionType

	// Compress compresses the whole of data in one shot, returning a newly
	// allocated buffer. Used by the writer when finalising a cluster.
	Compress(data []byte) ([]byte, error)

	// NewDecoder wraps r, a reader over a cluster's compressed body, with
	// a streaming decompressor. Used by the reader to back a
	// source.DecodeSource.
	NewDecoder(r io.Reader) (io.Reader, error)
}

// CreateCodec returns the Codec implementing compressionType.
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NoOpCodec{}, nil
	case format.CompressionLz4:
		return Lz4Codec{}, nil
	case format.CompressionLzma:
		return LzmaCodec{}, nil
	case format.CompressionZstd:
		return ZstdCodec{}, nil
	default:
		return nil, errs.ErrUnknownCompression
	}
}
