package content

import (
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

// ContentInfoSize is the on-disk width of one ContentInfo entry: a single
// packed u32.
const ContentInfoSize = 4

// ContentInfo locates a content's blob within a ContentPack's clusters: the
// cluster it lives in and its blob index within that cluster. On the wire
// the pair is packed into one u32 as (cluster_index << 12) | blob_index,
// capping a pack at 2^20 clusters of up to 4096 blobs each.
type ContentInfo struct {
	ClusterIdx format.ClusterIdx
	BlobIdx    format.BlobIdx
}

func parseContentInfo(v uint32) ContentInfo {
	return ContentInfo{
		ClusterIdx: format.ClusterIdx(v >> 12),
		BlobIdx:    format.BlobIdx(v & 0xFFF),
	}
}

func (c ContentInfo) pack() uint32 {
	return (uint32(c.ClusterIdx) << 12) | (uint32(c.BlobIdx) & 0xFFF)
}

// AppendTo appends the 4-byte little-endian packed form of c to dst.
func (c ContentInfo) AppendTo(dst []byte) []byte {
	return bytesize.AppendUint(dst, uint64(c.pack()), bytesize.U4)
}

// readContentInfoTable decodes count consecutive ContentInfo entries
// starting at offset within r.
func readContentInfoTable(r *source.Reader, offset source.Offset, count int) ([]ContentInfo, error) {
	out := make([]ContentInfo, count)
	buf := make([]byte, ContentInfoSize*count)
	st := r.NewStreamAt(offset)
	if err := st.ReadExact(buf); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		v := uint32(bytesize.ReadUint(buf[i*ContentInfoSize:i*ContentInfoSize+ContentInfoSize], bytesize.U4))
		out[i] = parseContentInfo(v)
	}

	return out, nil
}
