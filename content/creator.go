package content

import (
	"bytes"
	"io"
	"runtime"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/cluster"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/internal/blake3sum"
	"github.com/arloliu/jubako/internal/pool"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// headerReserveSize is how much space Creator reserves at the start of the
// output for the PackHeader block and the ContentPackHeader block, filled
// in for real only once Finalize knows where every table ended up.
const headerReserveSize = pack.HeaderBlockSize + pack.ContentHeaderBlockSize

// Creator builds a new Content pack, routing incoming blobs through a
// cluster.WriterProxy's parallel compression pipeline. It keeps two
// "open cluster" slots, one for blobs routed to compression and one for
// blobs stored raw, filling whichever slot a blob's entropy sample selects
// and handing a slot's cluster off to the proxy once it is full.
type Creator struct {
	appVendorID pack.VendorId
	packID      format.PackId
	freeData    [24]byte
	compression format.CompressionType
	compressOK  bool

	w     io.WriteSeeker
	proxy *cluster.WriterProxy

	rawOpen  *cluster.ClusterCreator
	compOpen *cluster.ClusterCreator
	nextIdx  format.ClusterIdx

	contentInfos []ContentInfo
}

// NewCreator starts a new Content pack creator. w must be empty and
// positioned at its start; NewCreator reserves headerReserveSize bytes for
// the pack's two headers before handing w to the cluster writer pipeline,
// and rewrites that reserved region with real values in Finalize.
// compression == format.CompressionNone disables compression entirely,
// routing every blob to the raw slot.
func NewCreator(w io.WriteSeeker, packID format.PackId, appVendorID pack.VendorId, freeData [24]byte, compression format.CompressionType) (*Creator, error) {
	if _, err := w.Write(make([]byte, headerReserveSize)); err != nil {
		return nil, err
	}

	nbWorkers := runtime.GOMAXPROCS(0) - 1
	if nbWorkers < 1 {
		nbWorkers = 1
	}

	return &Creator{
		appVendorID: appVendorID,
		packID:      packID,
		freeData:    freeData,
		compression: compression,
		compressOK:  compression != format.CompressionNone,
		w:           w,
		proxy:       cluster.NewWriterProxy(w, nbWorkers),
	}, nil
}

func (c *Creator) openCluster(compressed bool) *cluster.ClusterCreator {
	idx := c.nextIdx
	c.nextIdx++
	comp := format.CompressionNone
	if compressed {
		comp = c.compression
	}

	return cluster.NewClusterCreator(idx, comp)
}

// getOpenCluster returns the open cluster for the given compression slot,
// dispatching the current occupant to the writer proxy first if it cannot
// hold a blob of the given size.
func (c *Creator) getOpenCluster(compressed bool, blobSize int) *cluster.ClusterCreator {
	slot := &c.rawOpen
	if compressed {
		slot = &c.compOpen
	}

	if *slot != nil && (*slot).IsFull(blobSize) {
		c.proxy.Dispatch(*slot)
		*slot = nil
	}
	if *slot == nil {
		*slot = c.openCluster(compressed)
	}

	return *slot
}

func (c *Creator) detectCompress(sample []byte) bool {
	if !c.compressOK {
		return false
	}
	if len(sample) > cluster.SampleBytes {
		sample = sample[:cluster.SampleBytes]
	}

	return cluster.ShouldCompress(sample)
}

// AddContent reads all of content into the pack and returns the
// ContentAddress future readers will resolve it through.
func (c *Creator) AddContent(content io.Reader) (format.ContentAddress, error) {
	buf := pool.GetStoreBuffer()
	defer pool.PutStoreBuffer(buf)

	if _, err := io.Copy(buf, content); err != nil {
		return format.ContentAddress{}, err
	}

	shouldCompress := c.detectCompress(buf.Bytes())
	creator := c.getOpenCluster(shouldCompress, buf.Len())

	blobIdx, err := creator.AddBlob(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return format.ContentAddress{}, err
	}

	info := ContentInfo{ClusterIdx: creator.Index(), BlobIdx: blobIdx}
	c.contentInfos = append(c.contentInfos, info)
	contentID := format.ContentIdx(len(c.contentInfos) - 1)

	return format.ContentAddress{PackId: c.packID, ContentId: contentID}, nil
}

// Finalize flushes any still-open clusters, drains the writer proxy, appends
// the cluster_ptr table, content_ptr table, CheckInfo, and reversed-header
// footer, then rewinds and fills in the PackHeader/ContentPackHeader blocks
// reserved at the start by NewCreator. src must expose random-access reads
// over everything written to w so far, for the whole-pack BLAKE3 digest.
func (c *Creator) Finalize(src source.Source) (pack.PackHeader, error) {
	if c.rawOpen != nil {
		if !c.rawOpen.IsEmpty() {
			c.proxy.Dispatch(c.rawOpen)
		} else {
			c.rawOpen.Release()
		}
	}
	if c.compOpen != nil {
		if !c.compOpen.IsEmpty() {
			c.proxy.Dispatch(c.compOpen)
		} else {
			c.compOpen.Release()
		}
	}

	clusterAddresses, err := c.proxy.Finalize()
	if err != nil {
		return pack.PackHeader{}, err
	}

	clustersOffset, err := c.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return pack.PackHeader{}, err
	}

	var tableBuf []byte
	for _, addr := range clusterAddresses {
		// The proxy's offsets count from where w stood when it was handed
		// over, just past the reserved header region.
		addr.Offset += source.Offset(headerReserveSize)
		tableBuf = addr.AppendTo(tableBuf)
	}
	if _, err := c.w.Write(tableBuf); err != nil {
		return pack.PackHeader{}, err
	}

	contentInfosOffset := clustersOffset + int64(len(tableBuf))
	tableBuf = tableBuf[:0]
	for _, info := range c.contentInfos {
		tableBuf = info.AppendTo(tableBuf)
	}
	if _, err := c.w.Write(tableBuf); err != nil {
		return pack.PackHeader{}, err
	}

	checkInfoPos := contentInfosOffset + int64(len(tableBuf))

	id := uuid.New()
	fileSize := source.Size(checkInfoPos) + 1 + blake3sum.Size + 4 + source.Size(pack.FooterSize)
	header := pack.NewPackHeader(format.PackKindContent, c.appVendorID, id, fileSize, source.Offset(checkInfoPos))

	contentHeader := pack.ContentPackHeader{
		ContentPtrPos: source.Offset(contentInfosOffset),
		ClusterPtrPos: source.Offset(clustersOffset),
		ContentCount:  uint32(len(c.contentInfos)),
		ClusterCount:  uint32(len(clusterAddresses)),
		FreeData:      c.freeData,
	}

	if _, err := c.w.Seek(0, io.SeekStart); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(header.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}
	if _, err := c.w.Write(contentHeader.AppendBlock(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	if _, err := c.w.Seek(0, io.SeekEnd); err != nil {
		return pack.PackHeader{}, err
	}

	checkedRegion := source.NewRegion(0, header.CheckInfoPos)
	buf := make([]byte, checkedRegion.Size())
	if err := src.ReadExact(buf, 0); err != nil {
		return pack.PackHeader{}, err
	}
	digest := blake3sum.Sum(buf)
	checkInfo := pack.CheckInfo{Kind: format.CheckKindBlake3, Hash: digest}
	if _, err := c.w.Write(checkInfo.AppendTo(nil)); err != nil {
		return pack.PackHeader{}, err
	}

	footer := pack.ReverseHeaderFooter(header.AppendBlock(nil))
	if _, err := c.w.Write(footer); err != nil {
		return pack.PackHeader{}, err
	}

	return header, nil
}
