package pack

import (
	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/source"
)

// ContentHeaderFieldsSize is the width of a ContentPackHeader's fixed
// fields, not counting its CRC-32C trailer.
const ContentHeaderFieldsSize = 64

// ContentHeaderBlockSize is the total on-disk width of a ContentPackHeader
// block, including its CRC-32C trailer.
const ContentHeaderBlockSize = ContentHeaderFieldsSize + 4

// ContentPackHeader is the kind-specific header that follows a Content
// pack's PackHeader block.
type ContentPackHeader struct {
	ContentPtrPos  source.Offset
	ClusterPtrPos  source.Offset
	ContentCount   uint32
	ClusterCount   uint32
	FreeData       [24]byte
}

func parseContentPackHeader(data []byte) (ContentPackHeader, error) {
	if len(data) != ContentHeaderFieldsSize {
		return ContentPackHeader{}, errs.ErrInvalidHeaderSize
	}
	h := ContentPackHeader{
		ContentPtrPos: source.Offset(bytesize.ReadUint(data[0:8], bytesize.U8)),
		ClusterPtrPos: source.Offset(bytesize.ReadUint(data[8:16], bytesize.U8)),
		ContentCount:  uint32(bytesize.ReadUint(data[16:20], bytesize.U4)),
		ClusterCount:  uint32(bytesize.ReadUint(data[20:24], bytesize.U4)),
		// data[24:36] is 12 zero bytes.
	}
	copy(h.FreeData[:], data[36:60])
	// data[60:64] is 4 zero bytes.

	return h, nil
}

// ParseContentPackHeaderAt reads and CRC-verifies a ContentPackHeader at
// offset (relative to r, normally immediately after the PackHeader block).
func ParseContentPackHeaderAt(r *source.Reader, offset source.Offset) (ContentPackHeader, error) {
	return blockparser.ParseSizedBlock(r, offset, ContentHeaderFieldsSize, blockparser.CheckCrc32, parseContentPackHeader)
}

// Bytes serialises h's field block (without its CRC trailer).
func (h ContentPackHeader) Bytes() []byte {
	buf := make([]byte, ContentHeaderFieldsSize)
	bytesize.WriteUint(buf[0:8], uint64(h.ContentPtrPos), bytesize.U8)
	bytesize.WriteUint(buf[8:16], uint64(h.ClusterPtrPos), bytesize.U8)
	bytesize.WriteUint(buf[16:20], uint64(h.ContentCount), bytesize.U4)
	bytesize.WriteUint(buf[20:24], uint64(h.ClusterCount), bytesize.U4)
	copy(buf[36:60], h.FreeData[:])

	return buf
}

// AppendBlock appends h's field block and its CRC-32C trailer to dst.
func (h ContentPackHeader) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, h.Bytes(), blockparser.CheckCrc32)
}
