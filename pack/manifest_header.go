package pack

import (
	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/source"
)

// ManifestHeaderFieldsSize is the width of a ManifestPackHeader's fixed
// fields, not counting its CRC-32C trailer.
const ManifestHeaderFieldsSize = 60

// ManifestPackHeader is the kind-specific header that follows a Manifest
// pack's PackHeader block.
type ManifestPackHeader struct {
	PackCount         uint16
	ValueStorePosInfo SizedOffset
	FreeData          [50]byte
}

func parseManifestPackHeader(data []byte) (ManifestPackHeader, error) {
	if len(data) != ManifestHeaderFieldsSize {
		return ManifestPackHeader{}, errs.ErrInvalidHeaderSize
	}
	h := ManifestPackHeader{
		PackCount:         uint16(bytesize.ReadUint(data[0:2], bytesize.U2)),
		ValueStorePosInfo: ParseSizedOffset(data[2:10]),
	}
	copy(h.FreeData[:], data[10:60])

	return h, nil
}

// ParseManifestPackHeaderAt reads and CRC-verifies a ManifestPackHeader at
// offset (relative to r).
func ParseManifestPackHeaderAt(r *source.Reader, offset source.Offset) (ManifestPackHeader, error) {
	return blockparser.ParseSizedBlock(r, offset, ManifestHeaderFieldsSize, blockparser.CheckCrc32, parseManifestPackHeader)
}

// Bytes serialises h's field block (without its CRC trailer).
func (h ManifestPackHeader) Bytes() []byte {
	buf := make([]byte, ManifestHeaderFieldsSize)
	bytesize.WriteUint(buf[0:2], uint64(h.PackCount), bytesize.U2)
	copy(buf[2:10], h.ValueStorePosInfo.AppendTo(nil))
	copy(buf[10:60], h.FreeData[:])

	return buf
}

// AppendBlock appends h's field block and its CRC-32C trailer to dst.
func (h ManifestPackHeader) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, h.Bytes(), blockparser.CheckCrc32)
}
