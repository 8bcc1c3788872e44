package content

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/cluster"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// ContentPack is the read-side view of a Content pack: a header plus the
// two ptr-tables (content_ptr, cluster_ptr) it declares, backed by a shared
// Reader over the whole pack and a per-pack cluster cache.
type ContentPack struct {
	header       pack.ContentPackHeader
	packID       format.PackId
	uuidV        uuid.UUID
	fileSz       source.Size
	checkInfoPos source.Offset

	r *source.Reader

	contentInfos []ContentInfo
	clusterPtrs  []pack.SizedOffset

	clusters *cluster.Cache

	checkOnce sync.Once
	checkInfo pack.CheckInfo
	checkErr  error
}

// Open parses a ContentPack's PackHeader and ContentPackHeader at the start
// of r and loads its two ptr-tables. The pack body (cluster data) is not
// touched until a content is actually requested.
func Open(r *source.Reader, packID format.PackId) (*ContentPack, error) {
	return OpenWithCacheSize(r, packID, cluster.DefaultCacheCapacity)
}

// OpenWithCacheSize is Open with an explicit cluster-cache capacity.
func OpenWithCacheSize(r *source.Reader, packID format.PackId, cacheCapacity int) (*ContentPack, error) {
	ph, err := pack.ParsePackHeaderAt(r, 0)
	if err != nil {
		return nil, err
	}
	if ph.Magic != format.PackKindContent {
		return nil, errs.NewFormat(0, "pack magic is %s, want Content", ph.Magic)
	}

	ch, err := pack.ParseContentPackHeaderAt(r, source.Offset(pack.HeaderBlockSize))
	if err != nil {
		return nil, err
	}

	contentInfos, err := readContentInfoTable(r, ch.ContentPtrPos, int(ch.ContentCount))
	if err != nil {
		return nil, err
	}
	clusterPtrs, err := pack.ReadSizedOffsetTable(r, ch.ClusterPtrPos, int(ch.ClusterCount))
	if err != nil {
		return nil, err
	}

	cp := &ContentPack{
		header:       ch,
		packID:       packID,
		uuidV:        ph.UUID,
		fileSz:       ph.FileSize,
		checkInfoPos: ph.CheckInfoPos,
		r:            r,
		contentInfos: contentInfos,
		clusterPtrs:  clusterPtrs,
	}
	cp.clusters = cluster.NewCache(cacheCapacity, cp.loadCluster)

	return cp, nil
}

func (cp *ContentPack) loadCluster(idx format.ClusterIdx) (*cluster.Cluster, error) {
	if int(idx) >= len(cp.clusterPtrs) {
		return nil, errs.ErrClusterIdxOutOfRange
	}

	return cluster.Open(cp.r, cp.clusterPtrs[idx])
}

// ContentCount reports the number of contents catalogued by this pack.
func (cp *ContentPack) ContentCount() int { return len(cp.contentInfos) }

// ClusterCount reports the number of clusters this pack's body holds.
func (cp *ContentPack) ClusterCount() int { return len(cp.clusterPtrs) }

// FreeData returns the pack's 24-byte caller-defined free-data area.
func (cp *ContentPack) FreeData() [24]byte { return cp.header.FreeData }

// GetContent resolves index through the content_ptr and cluster_ptr tables
// and returns a Reader over the decoded blob bytes.
func (cp *ContentPack) GetContent(index format.ContentIdx) (*source.Reader, error) {
	if int(index) >= len(cp.contentInfos) {
		return nil, errs.ErrContentIdxOutOfRange
	}
	info := cp.contentInfos[index]

	cl, err := cp.clusters.Get(info.ClusterIdx)
	if err != nil {
		return nil, err
	}

	return cl.GetReader(info.BlobIdx)
}

// Kind returns format.PackKindContent.
func (cp *ContentPack) Kind() format.PackKind { return format.PackKindContent }

// UUID returns the pack's unique identifier.
func (cp *ContentPack) UUID() uuid.UUID { return cp.uuidV }

// Size returns the total on-disk size of the pack.
func (cp *ContentPack) Size() source.Size { return cp.fileSz }

// PackID returns the PackId this ContentPack was opened under, as
// catalogued by the Manifest pack that referenced it.
func (cp *ContentPack) PackID() format.PackId { return cp.packID }

// Check verifies the pack's whole-body BLAKE3 digest.
func (cp *ContentPack) Check(src source.Source) (bool, error) {
	cp.checkOnce.Do(func() {
		cp.checkInfo, _, cp.checkErr = pack.ParseCheckInfoAt(cp.r, cp.checkInfoPos)
	})
	if cp.checkErr != nil {
		return false, cp.checkErr
	}

	region := source.NewRegion(0, cp.checkInfoPos)

	return cp.checkInfo.Verify(src, region, nil)
}
