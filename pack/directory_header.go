package pack

import (
	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/source"
)

// DirectoryHeaderFieldsSize is the width of a DirectoryPackHeader's fixed
// fields, not counting its CRC-32C trailer.
const DirectoryHeaderFieldsSize = 60

// DirectoryPackHeader is the kind-specific header that follows a Directory
// pack's PackHeader block.
type DirectoryPackHeader struct {
	IndexPtrPos      source.Offset
	EntryStorePtrPos source.Offset
	ValueStorePtrPos source.Offset
	IndexCount       uint32
	EntryStoreCount  uint32
	ValueStoreCount  uint8
	FreeData         [24]byte
}

func parseDirectoryPackHeader(data []byte) (DirectoryPackHeader, error) {
	if len(data) != DirectoryHeaderFieldsSize {
		return DirectoryPackHeader{}, errs.ErrInvalidHeaderSize
	}
	h := DirectoryPackHeader{
		IndexPtrPos:      source.Offset(bytesize.ReadUint(data[0:8], bytesize.U8)),
		EntryStorePtrPos: source.Offset(bytesize.ReadUint(data[8:16], bytesize.U8)),
		ValueStorePtrPos: source.Offset(bytesize.ReadUint(data[16:24], bytesize.U8)),
		IndexCount:       uint32(bytesize.ReadUint(data[24:28], bytesize.U4)),
		EntryStoreCount:  uint32(bytesize.ReadUint(data[28:32], bytesize.U4)),
		ValueStoreCount:  data[32],
		// data[33:36] is 3 bytes of padding.
	}
	copy(h.FreeData[:], data[36:60])

	return h, nil
}

// ParseDirectoryPackHeaderAt reads and CRC-verifies a DirectoryPackHeader at
// offset (relative to r).
func ParseDirectoryPackHeaderAt(r *source.Reader, offset source.Offset) (DirectoryPackHeader, error) {
	return blockparser.ParseSizedBlock(r, offset, DirectoryHeaderFieldsSize, blockparser.CheckCrc32, parseDirectoryPackHeader)
}

// Bytes serialises h's field block (without its CRC trailer).
func (h DirectoryPackHeader) Bytes() []byte {
	buf := make([]byte, DirectoryHeaderFieldsSize)
	bytesize.WriteUint(buf[0:8], uint64(h.IndexPtrPos), bytesize.U8)
	bytesize.WriteUint(buf[8:16], uint64(h.EntryStorePtrPos), bytesize.U8)
	bytesize.WriteUint(buf[16:24], uint64(h.ValueStorePtrPos), bytesize.U8)
	bytesize.WriteUint(buf[24:28], uint64(h.IndexCount), bytesize.U4)
	bytesize.WriteUint(buf[28:32], uint64(h.EntryStoreCount), bytesize.U4)
	buf[32] = h.ValueStoreCount
	copy(buf[36:60], h.FreeData[:])

	return buf
}

// AppendBlock appends h's field block and its CRC-32C trailer to dst.
func (h DirectoryPackHeader) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, h.Bytes(), blockparser.CheckCrc32)
}
