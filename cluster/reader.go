package cluster

import (
	"sync"

	"github.com/arloliu/jubako/compress"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// Cluster is a lazily-decoded run of concatenated blobs. It is immutable
// once opened; the only state mutation is the one-time materialisation of
// its decoded body on the first GetReader call, memoised behind a
// sync.Once so concurrent callers racing on a cache miss only decode once.
type Cluster struct {
	tail Tail
	raw  *source.Reader

	once     sync.Once
	decoded  *source.Reader
	buildErr error
}

// Open parses the cluster tail located by info (relative to r, normally a
// Content pack's body reader) and returns a Cluster ready to serve blobs.
// The decoded body is not touched until the first GetReader call.
func Open(r *source.Reader, info pack.SizedOffset) (*Cluster, error) {
	raw, tail, err := ParseTailAt(r, info.Offset, int(info.Size))
	if err != nil {
		return nil, err
	}

	return &Cluster{tail: tail, raw: raw}, nil
}

// BlobCount returns the number of blobs the cluster holds.
func (c *Cluster) BlobCount() int { return c.tail.BlobCount() }

// Compression returns the codec the cluster's body was written with.
func (c *Cluster) Compression() format.CompressionType { return c.tail.Compression }

// DataSize returns the decompressed size of the cluster's body.
func (c *Cluster) DataSize() source.Size { return c.tail.DataSize }

func (c *Cluster) build() {
	if c.tail.Compression == format.CompressionNone {
		c.decoded = c.raw

		return
	}

	codec, err := compress.CreateCodec(c.tail.Compression)
	if err != nil {
		c.buildErr = err

		return
	}

	dec, err := codec.NewDecoder(c.raw.NewStream())
	if err != nil {
		c.buildErr = errs.NewFormat(int64(c.raw.Region().Begin), "cluster: failed to open %s decoder: %v", c.tail.Compression, err)

		return
	}

	decodeSrc := source.NewDecodeSource(dec, c.tail.DataSize)
	c.decoded = source.NewReaderToEnd(decodeSrc, 0)
}

// GetReader returns a Reader spanning the decoded bytes of the blob at
// index, decoding the cluster's body on first call.
func (c *Cluster) GetReader(index format.BlobIdx) (*source.Reader, error) {
	c.once.Do(c.build)
	if c.buildErr != nil {
		return nil, c.buildErr
	}

	i := int(index)
	if i < 0 || i >= c.BlobCount() {
		return nil, errs.ErrBlobIdxOutOfRange
	}

	begin := source.Offset(c.tail.Offsets[i])
	end := source.Offset(c.tail.Offsets[i+1])

	return c.decoded.CreateSubReader(begin, &end), nil
}
