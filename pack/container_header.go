package pack

import (
	"github.com/google/uuid"

	"github.com/arloliu/jubako/blockparser"
	"github.com/arloliu/jubako/bytesize"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/source"
)

// ContainerHeaderFieldsSize is the width of a ContainerPackHeader's fixed
// fields, not counting its CRC-32C trailer.
const ContainerHeaderFieldsSize = 60

// ContainerPackHeader is the kind-specific header that follows a Container
// pack's PackHeader block. A Container pack's body is the concatenation of
// the inner packs it bundles; pack_locators_pos points at an array of
// PackLocator records describing where each one starts.
type ContainerPackHeader struct {
	PackLocatorsPos source.Offset
	PackCount       uint16
	FreeData        [24]byte
}

func parseContainerPackHeader(data []byte) (ContainerPackHeader, error) {
	if len(data) != ContainerHeaderFieldsSize {
		return ContainerPackHeader{}, errs.ErrInvalidHeaderSize
	}
	h := ContainerPackHeader{
		PackLocatorsPos: source.Offset(bytesize.ReadUint(data[0:8], bytesize.U8)),
		PackCount:       uint16(bytesize.ReadUint(data[8:10], bytesize.U2)),
		// data[10:36] is 26 bytes of padding.
	}
	copy(h.FreeData[:], data[36:60])

	return h, nil
}

// ParseContainerPackHeaderAt reads and CRC-verifies a ContainerPackHeader at
// offset (relative to r).
func ParseContainerPackHeaderAt(r *source.Reader, offset source.Offset) (ContainerPackHeader, error) {
	return blockparser.ParseSizedBlock(r, offset, ContainerHeaderFieldsSize, blockparser.CheckCrc32, parseContainerPackHeader)
}

// Bytes serialises h's field block (without its CRC trailer).
func (h ContainerPackHeader) Bytes() []byte {
	buf := make([]byte, ContainerHeaderFieldsSize)
	bytesize.WriteUint(buf[0:8], uint64(h.PackLocatorsPos), bytesize.U8)
	bytesize.WriteUint(buf[8:10], uint64(h.PackCount), bytesize.U2)
	copy(buf[36:60], h.FreeData[:])

	return buf
}

// AppendBlock appends h's field block and its CRC-32C trailer to dst.
func (h ContainerPackHeader) AppendBlock(dst []byte) []byte {
	return blockparser.AppendSizedBlock(dst, h.Bytes(), blockparser.CheckCrc32)
}

// PackLocatorFieldsSize is the on-disk width of a PackLocator record. Unlike
// most fixed records in the format, PackLocator carries no CRC-32C trailer
// of its own.
const PackLocatorFieldsSize = 32

// PackLocator describes one inner pack bundled inside a Container pack: its
// identity and the byte offset/size of its region within the container's
// body.
type PackLocator struct {
	UUID     uuid.UUID
	PackSize source.Size
	PackPos  source.Offset
}

// ParsePackLocator decodes a 32-byte PackLocator record.
func ParsePackLocator(data []byte) (PackLocator, error) {
	if len(data) != PackLocatorFieldsSize {
		return PackLocator{}, errs.ErrInvalidHeaderSize
	}
	id, err := uuid.FromBytes(data[0:16])
	if err != nil {
		return PackLocator{}, errs.NewFormat(-1, "invalid pack_locator uuid: %v", err)
	}

	return PackLocator{
		UUID:     id,
		PackSize: source.Size(bytesize.ReadUint(data[16:24], bytesize.U8)),
		PackPos:  source.Offset(bytesize.ReadUint(data[24:32], bytesize.U8)),
	}, nil
}

// Bytes serialises loc as a 32-byte record.
func (loc PackLocator) Bytes() []byte {
	buf := make([]byte, PackLocatorFieldsSize)
	copy(buf[0:16], loc.UUID[:])
	bytesize.WriteUint(buf[16:24], uint64(loc.PackSize), bytesize.U8)
	bytesize.WriteUint(buf[24:32], uint64(loc.PackPos), bytesize.U8)

	return buf
}

// ReadPackLocatorTable decodes count consecutive PackLocator entries
// starting at offset within r.
func ReadPackLocatorTable(r *source.Reader, offset source.Offset, count int) ([]PackLocator, error) {
	out := make([]PackLocator, count)
	buf := make([]byte, PackLocatorFieldsSize*count)
	st := r.NewStreamAt(offset)
	if err := st.ReadExact(buf); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		loc, err := ParsePackLocator(buf[i*PackLocatorFieldsSize : (i+1)*PackLocatorFieldsSize])
		if err != nil {
			return nil, err
		}
		out[i] = loc
	}

	return out, nil
}
