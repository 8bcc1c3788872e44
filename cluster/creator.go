package cluster

import (
	"io"

	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/pool"
	"github.com/arloliu/jubako/source"
)

// MaxBlobsPerCluster is the blob_count at which a cluster is considered
// full regardless of its accumulated byte size.
const MaxBlobsPerCluster = 4095

// MaxClusterSize is the accumulated data_size at which a non-empty cluster
// is considered full.
const MaxClusterSize = 4 * 1024 * 1024

// ClusterCreator accumulates blobs for one not-yet-written cluster. It is
// not safe for concurrent use: a single client goroutine feeds it blobs
// until it reports IsFull, then hands it off to a WriterProxy.
type ClusterCreator struct {
	idx         format.ClusterIdx
	compression format.CompressionType
	buf         *pool.ByteBuffer
	offsets     []int
}

// NewClusterCreator opens an empty cluster pre-assigned idx, the index its
// eventual SizedOffset will occupy in the content pack's cluster_ptr table.
func NewClusterCreator(idx format.ClusterIdx, compression format.CompressionType) *ClusterCreator {
	return &ClusterCreator{
		idx:         idx,
		compression: compression,
		buf:         pool.GetClusterBuffer(),
	}
}

// Index returns the cluster's pre-assigned ClusterIdx.
func (c *ClusterCreator) Index() format.ClusterIdx { return c.idx }

// Compression reports which codec the cluster will be written with; only
// meaningful once the cluster is handed to a WriterProxy, since None
// clusters skip compression entirely.
func (c *ClusterCreator) Compression() format.CompressionType { return c.compression }

// IsEmpty reports whether the cluster holds zero blobs.
func (c *ClusterCreator) IsEmpty() bool { return len(c.offsets) == 0 }

// DataSize returns the cluster's accumulated, uncompressed byte size.
func (c *ClusterCreator) DataSize() int { return c.buf.Len() }

// Data returns the cluster's accumulated, uncompressed bytes. The returned
// slice is only valid until Release is called.
func (c *ClusterCreator) Data() []byte { return c.buf.Bytes() }

// IsFull reports whether the cluster should be closed and dispatched
// before accepting a blob of the given size: either it already holds
// MaxBlobsPerCluster blobs, or it is non-empty and would exceed
// MaxClusterSize.
func (c *ClusterCreator) IsFull(nextBlobSize int) bool {
	if len(c.offsets) >= MaxBlobsPerCluster {
		return true
	}

	return len(c.offsets) > 0 && c.buf.Len()+nextBlobSize > MaxClusterSize
}

// AddBlob copies all of r into the cluster as the next blob, returning its
// BlobIdx.
func (c *ClusterCreator) AddBlob(r io.Reader) (format.BlobIdx, error) {
	if len(c.offsets) >= MaxBlobsPerCluster {
		return 0, errs.NewArg("cluster already holds the maximum %d blobs", MaxBlobsPerCluster)
	}

	idx := format.BlobIdx(len(c.offsets))
	if _, err := io.Copy(c.buf, r); err != nil {
		return 0, errs.NewIo(err, "cluster: failed to read blob content")
	}
	c.offsets = append(c.offsets, c.buf.Len())

	return idx, nil
}

// Release returns the cluster's backing buffer to the pool. Must be called
// exactly once, after the cluster's bytes have been written out.
func (c *ClusterCreator) Release() {
	pool.PutClusterBuffer(c.buf)
	c.buf = nil
}

// buildTail assembles the Tail a cluster's written body is followed by:
// rawDataSize is the on-disk size of the body actually written (equal to
// DataSize for an uncompressed cluster, the compressed length otherwise).
func (c *ClusterCreator) buildTail(rawDataSize source.Size) Tail {
	dataSize := source.Size(c.buf.Len())
	offsetSize := bytesize.NeededFor(uint64(dataSize))

	offsets := make([]source.Size, len(c.offsets)+1)
	for i, o := range c.offsets {
		offsets[i+1] = source.Size(o)
	}

	return Tail{
		Compression: c.compression,
		OffsetSize:  offsetSize,
		RawDataSize: rawDataSize,
		DataSize:    dataSize,
		Offsets:     offsets,
	}
}
