package format

import (
	"fmt"

	"github.com/arloliu/jubako/bytesize"
)

// ContentAddressSize is the on-disk width of a ContentAddress: a 1-byte
// pack_id followed by a 3-byte little-endian content_id.
const ContentAddressSize = 4

// ContentAddress identifies a content's home pack and its index within that
// pack's content_ptr table. Resolving one to bytes is
// container → manifest → PackId → ContentPack → content_info[ContentId] →
// cluster → blob.
type ContentAddress struct {
	PackId    PackId
	ContentId ContentIdx
}

func (a ContentAddress) String() string {
	return fmt.Sprintf("ContentAddress{pack_id: %d, content_id: %d}", a.PackId, a.ContentId)
}

// IsZero reports whether a is the zero ContentAddress, used as a sentinel
// for "no default" in property schemas.
func (a ContentAddress) IsZero() bool { return a.PackId == 0 && a.ContentId == 0 }

// ParseContentAddress decodes a 4-byte ContentAddress: pack_id as a single
// byte, content_id as a 3-byte little-endian integer.
func ParseContentAddress(data []byte) ContentAddress {
	return ContentAddress{
		PackId:    PackId(data[0]),
		ContentId: ContentIdx(bytesize.ReadUint(data[1:4], bytesize.U3)),
	}
}

// AppendTo appends the 4-byte wire form of a to dst.
func (a ContentAddress) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(a.PackId))

	return bytesize.AppendUint(dst, uint64(a.ContentId), bytesize.U3)
}
